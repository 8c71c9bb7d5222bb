package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/env-store/envcli/internal/ui"
	"github.com/env-store/envcli/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	addProjectFlag(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [patterns...]",
	Short: "Encrypts the variables in .env files and stores them",
	Long: `Reads .env files and stores every variable in them for the project.

Patterns may name files, directories (searched recursively for .env files) or
globs such as "config/**/.env.*". With no pattern the current directory is
searched. When a variable appears in several files the last one wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")
		spinner, cleanup := startSpinner("Importing variables...")
		defer cleanup()

		baseDir, err := os.Getwd()
		if err != nil {
			return fail(spinner, err)
		}
		patterns := args
		if len(patterns) == 0 {
			patterns = []string{"."}
		}
		Logger.Debugf("Import patterns: %v (base %s)", patterns, baseDir)

		svc, err := newService(spinner)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := svc.Import(cmd.Context(), projectFlag, patterns, baseDir)
		if err != nil {
			return fail(spinner, err)
		}

		files := make([]string, len(result.Files))
		for i, file := range result.Files {
			if rel, err := filepath.Rel(baseDir, file); err == nil {
				file = rel
			}
			files[i] = file
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") +
			fmt.Sprintf(" Stored %d variable(s) in project %s for %d member(s) from:", len(result.Pairs), ui.Highlight.Sprint(result.ProjectID), result.Recipients) +
			utils.FormatPaths(files)
		return nil
	},
}
