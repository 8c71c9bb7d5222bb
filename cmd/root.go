package cmd

import (
	logger "github.com/env-store/envcli/internal/logging"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PassphraseEnv supplies the key passphrase non-interactively.
const PassphraseEnv = "ENVCLI_PASSPHRASE"

var (
	verbose        bool
	debug          bool
	keyFragment    string
	passphraseFlag string
	projectFlag    string
	Logger         logger.Logger

	RootCmd = &cobra.Command{
		Use:   "envcli",
		Short: "Share environment variables with your team, sealed to every member's key",
		Long: `envcli stores a project's environment variables on a shared server.

Every value is encrypted to the OpenPGP key of each project member before it
leaves your machine, and requests are authenticated by signing a challenge
with your private key instead of sending a password.

Getting started:
  envcli key new            Create your key
  envcli key upload         Register it with the server
  envcli set KEY VALUE      Store a variable
  envcli variables          Fetch and decrypt every variable`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			banner := figure.NewColorFigure("envcli", "small", "green", true)
			banner.Print()
			return cmd.Help()
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVarP(&keyFragment, "key", "k", "", "fingerprint (or part of one) of the key to sign with; defaults to the primary key")
	RootCmd.PersistentFlags().StringVar(&passphraseFlag, "passphrase", "", "key passphrase (prefer "+PassphraseEnv+" or the prompt)")

	RootCmd.AddCommand(keyCmd)
	RootCmd.AddCommand(authCmd)
	RootCmd.AddCommand(projectCmd)
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(variablesCmd)
	RootCmd.AddCommand(readLocalCmd)
}

// addProjectFlag registers --project on commands that work on a project.
func addProjectFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project id (defaults to project_id in .envcli.toml)")
}

// Helper functions for testing

// ResetGlobalState resets every flag of every command to its default value
// for testing.
func ResetGlobalState() {
	resetFlags(RootCmd)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			Logger.Debugf("Failed to reset flag --%s: %v", f.Name, err)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
