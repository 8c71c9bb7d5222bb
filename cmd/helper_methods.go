package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	kerrors "github.com/env-store/envcli/internal/errors"
	"github.com/env-store/envcli/internal/ui"
	"github.com/env-store/envcli/internal/utils"
	"github.com/env-store/envcli/internal/workflows"

	"github.com/briandowns/spinner"
)

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var reported reportedError
	return errors.As(err, &reported)
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that stops it and prints spinner.FinalMSG. The function
// may be called early, before printing command output, and again by a defer.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	err := s.Color("cyan")
	if err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if quiet {
				log.SetOutput(os.Stderr)
			}

			// Ensure final message ends with a newline.
			finalMsg := ""
			if s.FinalMSG != "" {
				finalMsg = ui.EnsureNewline(s.FinalMSG)
				// Clear FinalMSG so s.Stop() doesn't print it.
				s.FinalMSG = ""
			}

			if quiet {
				s.Stop()
			}

			if finalMsg != "" {
				fmt.Print(finalMsg)
			}
		})
	}

	return s, cleanup
}

// passphraseSource resolves the key passphrase from --passphrase, then
// ENVCLI_PASSPHRASE, then a prompt. The spinner is paused while prompting.
func passphraseSource(s *spinner.Spinner) workflows.PassphraseSource {
	return func() ([]byte, error) {
		if passphraseFlag != "" {
			Logger.Debugf("Using passphrase from --passphrase")
			return []byte(passphraseFlag), nil
		}
		if env, ok := os.LookupEnv(PassphraseEnv); ok {
			Logger.Debugf("Using passphrase from %s", PassphraseEnv)
			return []byte(env), nil
		}

		if s != nil && s.Active() {
			s.Stop()
			defer s.Restart()
		}
		return utils.ReadPassphrase("Key passphrase: ")
	}
}

// newService builds the SecretService for the current flags.
func newService(s *spinner.Spinner) (*workflows.SecretService, error) {
	return workflows.NewSecretService(workflows.Options{
		Key:        keyFragment,
		Passphrase: passphraseSource(s),
		Log:        Logger,
	})
}

// fail shows err as the command's final message and returns it marked as
// reported, so the process exits non-zero without printing it twice.
func fail(s *spinner.Spinner, err error) error {
	Logger.Debugf("Command failed: %v", err)
	s.FinalMSG = errorMessage(err)
	return reportedError{err}
}

// errorMessage renders err for the user: a headline chosen by error kind,
// the error itself, and a hint when there is an obvious next step.
func errorMessage(err error) string {
	headline, hint := describeError(err)
	msg := ui.Error.Sprint("✗") + " " + headline + "\n" +
		ui.Error.Sprint("Error: ") + err.Error()
	if hint != "" {
		msg += "\n" + ui.Info.Sprint("→") + " " + hint
	}
	return msg
}

func describeError(err error) (headline, hint string) {
	switch {
	case errors.Is(err, kerrors.ErrNoUsableKey):
		return "None of your keys can read these variables",
			"Ask a project member to add your key, or check " + ui.Code.Sprint("envcli key list")
	case errors.Is(err, kerrors.ErrWrongKey):
		return "A value was sealed to a different set of members than your key can open", ""
	case errors.Is(err, kerrors.ErrBadPassphrase):
		return "Incorrect passphrase for your private key",
			"Set it with " + ui.Flag.Sprint("--passphrase") + " or " + ui.Code.Sprint(PassphraseEnv)
	case errors.Is(err, kerrors.ErrCorruptMessage), errors.Is(err, kerrors.ErrEmptyMessage):
		return "A stored value could not be read", ""
	case errors.Is(err, kerrors.ErrNoPrimaryKey):
		return "You have no primary key", "Create one with " + ui.Code.Sprint("envcli key new")
	case errors.Is(err, kerrors.ErrKeyNotFound):
		return "No key in your keyring matches", "See your keys with " + ui.Code.Sprint("envcli key list")
	case errors.Is(err, kerrors.ErrMissingIdentity):
		return "Your key has not been registered with the server",
			"Register it with " + ui.Code.Sprint("envcli key upload")
	case errors.Is(err, kerrors.ErrSigning):
		return "Failed to sign the request", ""
	case errors.Is(err, kerrors.ErrNoPrivateKey):
		return "Only the public half of this key is available",
			"Use a key you created on this machine, see " + ui.Code.Sprint("envcli key list")
	case errors.Is(err, kerrors.ErrKeyFileNotFound):
		return "Key file is missing from your key vault", ""
	case errors.Is(err, kerrors.ErrSealing):
		return "Failed to encrypt to the project members", ""
	case errors.Is(err, kerrors.ErrInvalidIdentity):
		return "Invalid name or email for the new key", ""
	case errors.Is(err, kerrors.ErrInvalidKVPair):
		return "Invalid variable", ""
	case errors.Is(err, kerrors.ErrNoProject):
		return "No project selected",
			"Pass " + ui.Flag.Sprint("--project") + " or set project_id in " + ui.Path.Sprint(".envcli.toml")
	case errors.Is(err, kerrors.ErrRequestFailed):
		return "The server rejected the request", ""
	default:
		return "Command failed", ""
	}
}
