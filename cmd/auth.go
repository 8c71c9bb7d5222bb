package cmd

import (
	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Checks that the server accepts your signed requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting auth command")
		spinner, cleanup := startSpinner("Testing authentication...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := svc.TestAuth(cmd.Context())
		if err != nil {
			return fail(spinner, err)
		}
		Logger.Debugf("Server replied: %s", result.Reply)

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Authenticated as " + ui.Highlight.Sprint(result.UserID) +
			" with key " + ui.Fingerprint.Sprint(ui.GroupFingerprint(result.Fingerprint))
		return nil
	},
}
