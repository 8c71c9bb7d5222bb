package cmd

import (
	"strings"

	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the keys in your keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key list command")
		spinner, cleanup := startSpinner("Reading keyring...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		keys := svc.ListKeys()
		if len(keys) == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Your keyring is empty\n" +
				ui.Info.Sprint("→") + " Create a key with " + ui.Code.Sprint("envcli key new")
			return nil
		}

		var b strings.Builder
		b.WriteString(ui.Success.Sprint("✓") + " Keys in your keyring:\n")
		for _, k := range keys {
			b.WriteString("    " + ui.Fingerprint.Sprint(ui.GroupFingerprint(k.Fingerprint)))
			var notes []string
			if k.Primary {
				notes = append(notes, "primary")
			}
			if k.UUID != "" {
				notes = append(notes, "user "+k.UUID)
			} else {
				notes = append(notes, "not uploaded")
			}
			if !k.HasPrivateKey {
				notes = append(notes, "private key missing")
			}
			b.WriteString(" " + ui.Muted.Sprint(strings.Join(notes, ", ")) + "\n")
		}

		spinner.FinalMSG = b.String()
		return nil
	},
}
