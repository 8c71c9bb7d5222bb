package cmd

import (
	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

var keyPrimaryCmd = &cobra.Command{
	Use:   "primary <fingerprint>",
	Short: "Makes a key your primary key",
	Long: `Makes the first key in your keyring whose fingerprint contains the given
text (ignoring case) your primary key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key primary command")
		spinner, cleanup := startSpinner("Updating keyring...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		entry, err := svc.SetPrimaryKey(args[0])
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Primary key is now " + ui.Fingerprint.Sprint(ui.GroupFingerprint(entry.Fingerprint))
		return nil
	},
}
