package cmd

import (
	"fmt"

	"github.com/env-store/envcli/internal/ui"

	"github.com/spf13/cobra"
)

var variablesFormat string

func init() {
	addProjectFlag(variablesCmd)
	variablesCmd.Flags().StringVarP(&variablesFormat, "format", "f", formatDotenv, "output format: dotenv, json or yaml")
}

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Fetches and decrypts every variable in a project",
	Long: `Fetches every variable stored for the project, decrypts them with your key
and prints them. Nothing is printed unless every value decrypts.

Load them into your shell with:
  eval "$(envcli variables)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting variables command")
		if !validFormat(variablesFormat) {
			return fmt.Errorf("unknown format %q (use dotenv, json or yaml)", variablesFormat)
		}

		spinner, cleanup := startSpinner("Fetching variables...")
		defer cleanup()

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		pairs, err := svc.GetVariables(cmd.Context(), projectFlag)
		if err != nil {
			return fail(spinner, err)
		}

		out, err := formatVariables(pairs, variablesFormat)
		if err != nil {
			return fail(spinner, err)
		}

		if len(pairs) == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " No variables stored for this project"
			return nil
		}

		// Stop the spinner before writing so the output can be piped or eval'd.
		cleanup()
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
