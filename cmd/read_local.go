package cmd

import (
	"fmt"

	"github.com/env-store/envcli/internal/ui"
	"github.com/env-store/envcli/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	readLocalFile   string
	readLocalFormat string
)

func init() {
	readLocalCmd.Flags().StringVar(&readLocalFile, "file", workflows.LocalVaultFile, "local vault file to read")
	readLocalCmd.Flags().StringVarP(&readLocalFormat, "format", "f", formatDotenv, "output format: dotenv, json or yaml")
}

var readLocalCmd = &cobra.Command{
	Use:   "read-local",
	Short: "Decrypts the values in a local vault file",
	Long: `Decrypts a JSON array of encrypted values kept next to your code. Each
value picks its own key from your keyring, so one file can hold values
encrypted to different groups of people.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting read-local command")
		if !validFormat(readLocalFormat) {
			return fmt.Errorf("unknown format %q (use dotenv, json or yaml)", readLocalFormat)
		}

		spinner, cleanup := startSpinner("Decrypting " + readLocalFile + "...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		pairs, err := svc.ReadLocal(readLocalFile)
		if err != nil {
			return fail(spinner, err)
		}
		if len(pairs) == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " " + ui.Path.Sprint(readLocalFile) + " holds no values"
			return nil
		}

		out, err := formatVariables(pairs, readLocalFormat)
		if err != nil {
			return fail(spinner, err)
		}

		cleanup()
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
