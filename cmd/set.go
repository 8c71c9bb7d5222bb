package cmd

import (
	"fmt"

	kerrors "github.com/env-store/envcli/internal/errors"
	"github.com/env-store/envcli/internal/secrets"
	"github.com/env-store/envcli/internal/ui"
	"github.com/env-store/envcli/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	addProjectFlag(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Encrypts a variable to every project member and stores it",
	Long: `Encrypts KEY=VALUE to the public key of every member of the project and
stores it on the server. When VALUE is omitted it is read from standard input,
which keeps it out of your shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting set command")

		pair := secrets.KVPair{Key: args[0]}
		if !utils.IsValidVariableName(pair.Key) {
			fmt.Println(ui.Error.Sprint("✗") + " " + ui.Highlight.Sprint(pair.Key) + " is not a valid variable name")
			return reportedError{fmt.Errorf("%w: invalid name %q", kerrors.ErrInvalidKVPair, pair.Key)}
		}

		if len(args) == 2 {
			pair.Value = args[1]
		} else {
			Logger.Debugf("Reading value from standard input")
			value, err := utils.ReadStdin()
			if err != nil {
				return err
			}
			pair.Value = value
		}

		spinner, cleanup := startSpinner("Encrypting " + pair.Key + "...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := svc.SetEnv(cmd.Context(), projectFlag, pair)
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Stored " + ui.Highlight.Sprint(pair.Key) +
			" in project " + ui.Highlight.Sprint(result.ProjectID) +
			fmt.Sprintf(" for %d member(s)", result.Recipients)
		return nil
	},
}
