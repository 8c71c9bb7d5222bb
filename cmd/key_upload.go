package cmd

import (
	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

var keyUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Registers your public key with the server",
	Long: `Registers the public half of a key (the primary key, or the one chosen with
--key) with the server and records the user id it was registered under.
Signed requests need that user id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key upload command")
		spinner, cleanup := startSpinner("Uploading public key...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := svc.UploadKey(cmd.Context(), keyFragment)
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Uploaded " + ui.Fingerprint.Sprint(ui.GroupFingerprint(result.Fingerprint)) + "\n" +
			"    user id: " + ui.Highlight.Sprint(result.UserID) + "\n" +
			ui.Info.Sprint("→") + " Check it with " + ui.Code.Sprint("envcli auth")
		return nil
	},
}
