package cmd

import (
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage your OpenPGP identity keys",
	Long: `Create, list and register the keys that identify you to the server.

Your keys live in the key vault under the envcli config directory
(ENVCLI_CONFIG_DIR, or ~/.config/envcli). The primary key signs your requests
and is preferred whenever more than one of your keys can read a value.`,
}

func init() {
	keyCmd.AddCommand(keyNewCmd)
	keyCmd.AddCommand(keyListCmd)
	keyCmd.AddCommand(keyPrimaryCmd)
	keyCmd.AddCommand(keyUploadCmd)
}
