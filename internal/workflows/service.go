package workflows

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/env-store/envcli/internal/api"
	"github.com/env-store/envcli/internal/audit"
	"github.com/env-store/envcli/internal/auth"
	"github.com/env-store/envcli/internal/configs"
	kerrors "github.com/env-store/envcli/internal/errors"
	logger "github.com/env-store/envcli/internal/logging"
	"github.com/env-store/envcli/internal/secrets"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Server is the subset of the remote API the workflows use. *api.Client
// satisfies it.
type Server interface {
	NewUser(ctx context.Context, user api.NewUserRequest) error
	GetProjectInfo(ctx context.Context, projectID string) (*api.ProjectInfo, error)
	SetVariable(ctx context.Context, projectID, sealed string) (string, error)
	SetMany(ctx context.Context, projectID string, sealed []string) ([]string, error)
	GetVariables(ctx context.Context, projectID string) ([]string, error)
	TestAuth(ctx context.Context) (string, error)
}

// PassphraseSource supplies the passphrase protecting the user's private
// keys. It is called at most once per SecretService.
type PassphraseSource func() ([]byte, error)

// Options configures a SecretService.
type Options struct {
	// Settings locates the identity config, the key vault and the audit log.
	Settings *configs.Settings

	// Key is a fingerprint fragment selecting the key used to sign requests.
	// Empty selects the primary key.
	Key string

	// Passphrase is asked for lazily, only by workflows that unlock a key.
	Passphrase PassphraseSource

	// Server overrides the API client built from the identity config.
	Server Server

	// Policy defaults to secrets.SubstringPolicy.
	Policy secrets.MatchPolicy

	// Workers bounds concurrent decryption in GetVariables.
	Workers int

	Log logger.Logger
}

// SecretService runs the envcli workflows for one user.
type SecretService struct {
	settings *configs.Settings
	config   *configs.IdentityConfig
	vault    secrets.Vault
	audit    audit.Log
	server   Server
	key      string
	policy   secrets.MatchPolicy
	workers  int
	log      logger.Logger

	passphraseOnce sync.Once
	passphraseFn   PassphraseSource
	passphrase     []byte
	passphraseErr  error
}

// NewSecretService loads the identity config, creating its salt on first use,
// and wires the API client to sign every request with the selected key.
func NewSecretService(opts Options) (*SecretService, error) {
	settings := opts.Settings
	if settings == nil {
		var err error
		settings, err = configs.DefaultSettings()
		if err != nil {
			return nil, err
		}
	}

	config, err := configs.EnsureIdentityConfig(settings.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading identity config: %w", err)
	}

	s := &SecretService{
		settings:     settings,
		config:       config,
		vault:        secrets.Vault{Dir: settings.KeysDir},
		audit:        audit.Log{Path: settings.AuditPath()},
		key:          opts.Key,
		policy:       opts.Policy,
		workers:      opts.Workers,
		log:          opts.Log,
		passphraseFn: opts.Passphrase,
	}

	s.server = opts.Server
	if s.server == nil {
		s.server = api.NewClient(config.APIURLOrDefault(), s.bearer, opts.Log)
	}

	return s, nil
}

// Config returns the identity config the service works with.
func (s *SecretService) Config() *configs.IdentityConfig {
	return s.config
}

// Vault returns the key vault.
func (s *SecretService) Vault() secrets.Vault {
	return s.vault
}

// keyring takes a snapshot of the configured keys. Workflows that change the
// config take a new one afterwards.
func (s *SecretService) keyring() secrets.Keyring {
	return secrets.NewKeyring(s.config)
}

func (s *SecretService) getPassphrase() ([]byte, error) {
	s.passphraseOnce.Do(func() {
		if s.passphraseFn == nil {
			return
		}
		s.passphrase, s.passphraseErr = s.passphraseFn()
	})
	return s.passphrase, s.passphraseErr
}

func (s *SecretService) issuer() (auth.Issuer, error) {
	passphrase, err := s.getPassphrase()
	if err != nil {
		return auth.Issuer{}, err
	}
	return auth.Issuer{
		Keyring:    s.keyring(),
		Keys:       s.vault,
		Passphrase: passphrase,
		Policy:     s.policy,
	}, nil
}

// bearer issues a fresh token for one request.
func (s *SecretService) bearer() (string, error) {
	issuer, err := s.issuer()
	if err != nil {
		return "", err
	}
	token, err := issuer.Issue(s.key, "")
	if err != nil {
		return "", err
	}
	s.log.Debugf("Signed request with key %s as %s", token.Fingerprint, token.UserID)
	return token.String(), nil
}

// signer returns the keyring entry requests are signed with.
func (s *SecretService) signer() configs.KeyEntry {
	resolver := secrets.Resolver{Keyring: s.keyring(), Policy: s.policy}
	entry, err := resolver.Lookup(s.key)
	if err != nil {
		return configs.KeyEntry{}
	}
	return entry
}

func (s *SecretService) record(entry audit.Entry) {
	signer := s.signer()
	if entry.Key == "" {
		entry.Key = signer.Fingerprint
	}
	if entry.UserUUID == "" {
		entry.UserUUID = signer.UUID
	}
	s.audit.Append(entry)
}

func (s *SecretService) decryptOptions() (secrets.DecryptOptions, error) {
	passphrase, err := s.getPassphrase()
	if err != nil {
		return secrets.DecryptOptions{}, err
	}
	return secrets.DecryptOptions{
		Vault:      s.vault,
		Passphrase: passphrase,
		Policy:     s.policy,
		Notifier:   s.log,
	}, nil
}

// ProjectID picks the project to work on: the explicit id, else the
// project_id from .envcli.toml in the working directory.
func ProjectID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	project, err := configs.LoadProjectConfig(wd)
	if err != nil {
		return "", err
	}
	if project.ProjectID == "" {
		return "", kerrors.ErrNoProject
	}
	return project.ProjectID, nil
}

// memberKeys parses the public key of every project member.
func memberKeys(info *api.ProjectInfo) ([]*openpgp.Entity, error) {
	keys := make([]*openpgp.Entity, 0, len(info.Users))
	for _, user := range info.Users {
		key, err := secrets.ParseArmoredKey(user.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: public key of member %s: %w", kerrors.ErrSealing, user.ID, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
