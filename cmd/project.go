package cmd

import (
	"fmt"
	"strings"

	"github.com/env-store/envcli/internal/secrets"
	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

func init() {
	addProjectFlag(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:   "project [id]",
	Short: "Shows a project's members",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project command")
		spinner, cleanup := startSpinner("Fetching project...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		projectID := projectFlag
		if len(args) == 1 {
			projectID = args[0]
		}

		info, err := svc.GetProjectInfo(cmd.Context(), projectID)
		if err != nil {
			return fail(spinner, err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s Project %s has %d member(s):\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(info.ProjectID), len(info.Users))
		for _, user := range info.Users {
			name := user.Username
			if name == "" {
				name = user.ID
			}
			b.WriteString("    " + name)
			if pub, err := secrets.ParseArmoredKey(user.PublicKey); err == nil {
				b.WriteString(" " + ui.Fingerprint.Sprint(ui.GroupFingerprint(secrets.Fingerprint(pub))))
			} else {
				Logger.Warnf("Member %s has an unreadable public key: %v", name, err)
				b.WriteString(" " + ui.Muted.Sprint("unreadable key"))
			}
			b.WriteString("\n")
		}

		spinner.FinalMSG = b.String()
		return nil
	},
}
