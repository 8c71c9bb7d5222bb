package cmd

import (
	"fmt"
	"os"

	"github.com/env-store/envcli/internal/secrets"
	"github.com/env-store/envcli/internal/ui"
	"github.com/env-store/envcli/internal/utils"
	"github.com/env-store/envcli/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keyName        string
	keyEmail       string
	keyComment     string
	keyRealID      bool
	keyMakePrimary bool
	keyBits        int
)

func init() {
	keyNewCmd.Flags().StringVarP(&keyName, "name", "n", "", "name bound into the key (defaults to your system user name)")
	keyNewCmd.Flags().StringVarP(&keyEmail, "email", "e", "", "email bound into the key")
	keyNewCmd.Flags().StringVar(&keyComment, "comment", "", "comment bound into the key (with --real-id)")
	keyNewCmd.Flags().BoolVar(&keyRealID, "real-id", false, "store your name and email in the key instead of a salted hash")
	keyNewCmd.Flags().BoolVar(&keyMakePrimary, "primary", false, "make the new key primary")
	keyNewCmd.Flags().IntVar(&keyBits, "bits", secrets.DefaultKeyBits, "RSA key size")
}

var keyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Creates a new key pair and adds it to your keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key new command")

		if keyName == "" {
			keyName = utils.DefaultKeyName()
			Logger.Debugf("Using default key name: %s", keyName)
		}
		if !utils.IsValidEmail(keyEmail) {
			fmt.Println(ui.Error.Sprint("✗") + " A valid email is required\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envcli key new --email you@example.com"))
			return reportedError{fmt.Errorf("invalid email %q", keyEmail)}
		}

		// Ask before the spinner starts so the prompt is not drawn over.
		passphrase, err := newKeyPassphrase()
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Generating key pair...")
		defer cleanup()

		svc, err := workflows.NewSecretService(workflows.Options{
			Passphrase: func() ([]byte, error) { return passphrase, nil },
			Log:        Logger,
		})
		if err != nil {
			return fail(spinner, err)
		}

		result, err := svc.CreateKey(cmd.Context(), workflows.CreateKeyOptions{
			Name:        keyName,
			Email:       keyEmail,
			Comment:     keyComment,
			RealUserID:  keyRealID,
			MakePrimary: keyMakePrimary,
			Bits:        keyBits,
		})
		if err != nil {
			return fail(spinner, err)
		}
		Logger.Infof("Key %s created", result.Fingerprint)

		primary := ""
		if result.Primary {
			primary = " " + ui.Muted.Sprint("primary")
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Created key " + ui.Fingerprint.Sprint(ui.GroupFingerprint(result.Fingerprint)) + primary + "\n" +
			"    stored in: " + ui.Path.Sprint(result.KeyDir) + "\n" +
			ui.Info.Sprint("→") + " Register it with the server: " + ui.Code.Sprint("envcli key upload --key "+result.Fingerprint)
		return nil
	},
}

// newKeyPassphrase takes the passphrase from the flag or environment, else
// asks for it twice.
func newKeyPassphrase() ([]byte, error) {
	if passphraseFlag != "" {
		return []byte(passphraseFlag), nil
	}
	if env, ok := os.LookupEnv(PassphraseEnv); ok {
		return []byte(env), nil
	}
	return utils.ReadNewPassphrase()
}
