package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/env-store/envcli/internal/api"
	"github.com/env-store/envcli/internal/audit"
	"github.com/env-store/envcli/internal/configs"
	"github.com/env-store/envcli/internal/secrets"

	"github.com/google/uuid"
)

// CreateKeyOptions configures the create key workflow.
type CreateKeyOptions struct {
	Name    string
	Email   string
	Comment string

	// RealUserID binds "Name (Comment) <Email>" into the key instead of the
	// salted hash.
	RealUserID bool

	// MakePrimary makes the new key primary even when one is already set.
	MakePrimary bool

	// Bits defaults to secrets.DefaultKeyBits.
	Bits int
}

// CreateKeyResult contains the outcome of a create key operation.
type CreateKeyResult struct {
	Fingerprint string

	// KeyDir is the vault directory the key pair was written to.
	KeyDir string

	// Primary reports whether the key is now the primary key.
	Primary bool
}

// CreateKey generates a key pair protected by the service passphrase, writes
// it to the vault and appends it to the keyring.
//
// Returns ErrInvalidIdentity if the name or email is unusable.
func (s *SecretService) CreateKey(ctx context.Context, opts CreateKeyOptions) (*CreateKeyResult, error) {
	passphrase, err := s.getPassphrase()
	if err != nil {
		return nil, err
	}

	s.log.Debugf("Generating key pair for %s", opts.Email)
	kp, err := secrets.GenerateKeyPair(secrets.GenerationOptions{
		Name:       opts.Name,
		Email:      opts.Email,
		Comment:    opts.Comment,
		RealUserID: opts.RealUserID,
		Salt:       s.config.Salt,
		Passphrase: passphrase,
		Bits:       opts.Bits,
	})
	if err != nil {
		return nil, err
	}

	if err := s.vault.Save(kp); err != nil {
		return nil, fmt.Errorf("saving key pair: %w", err)
	}
	s.log.Infof("Key pair written to %s", s.vault.KeyDir(kp.Fingerprint))

	s.config.AddKey(configs.KeyEntry{Fingerprint: kp.Fingerprint})
	if opts.MakePrimary {
		s.config.PrimaryKey = kp.Fingerprint
	}
	if err := configs.SaveIdentityConfig(s.settings.ConfigPath(), s.config); err != nil {
		return nil, err
	}

	s.audit.Append(audit.Entry{Key: kp.Fingerprint, Operation: "key_new"})

	return &CreateKeyResult{
		Fingerprint: kp.Fingerprint,
		KeyDir:      s.vault.KeyDir(kp.Fingerprint),
		Primary:     strings.EqualFold(s.config.PrimaryKey, kp.Fingerprint),
	}, nil
}

// KeyInfo describes one keyring entry.
type KeyInfo struct {
	Fingerprint string
	UUID        string
	Primary     bool
	// HasPrivateKey reports whether the vault holds the private half.
	HasPrivateKey bool
}

// ListKeys returns the keyring in order.
func (s *SecretService) ListKeys() []KeyInfo {
	keys := make([]KeyInfo, 0, len(s.config.Keys))
	for _, k := range s.config.Keys {
		_, err := s.vault.LoadPrivateKey(k.Fingerprint)
		keys = append(keys, KeyInfo{
			Fingerprint:   k.Fingerprint,
			UUID:          k.UUID,
			Primary:       strings.EqualFold(k.Fingerprint, s.config.PrimaryKey),
			HasPrivateKey: err == nil,
		})
	}
	return keys
}

// SetPrimaryKey makes the first keyring entry matching fragment the primary
// key.
//
// Returns ErrKeyNotFound if no entry matches.
func (s *SecretService) SetPrimaryKey(fragment string) (configs.KeyEntry, error) {
	if fragment == "" {
		return configs.KeyEntry{}, fmt.Errorf("a key fingerprint is required")
	}

	resolver := secrets.Resolver{Keyring: s.keyring(), Policy: s.policy}
	entry, err := resolver.Lookup(fragment)
	if err != nil {
		return configs.KeyEntry{}, err
	}

	s.config.PrimaryKey = entry.Fingerprint
	if err := configs.SaveIdentityConfig(s.settings.ConfigPath(), s.config); err != nil {
		return configs.KeyEntry{}, err
	}

	s.audit.Append(audit.Entry{Key: entry.Fingerprint, UserUUID: entry.UUID, Operation: "key_primary"})
	return entry, nil
}

// UploadKeyResult contains the outcome of an upload.
type UploadKeyResult struct {
	Fingerprint string
	UserID      string
}

// UploadKey registers the selected key's public half with the server and
// records the user id it was registered under. A key uploaded before keeps
// its user id.
//
// Returns ErrKeyNotFound if the fragment matches no key.
func (s *SecretService) UploadKey(ctx context.Context, fragment string) (*UploadKeyResult, error) {
	resolver := secrets.Resolver{Keyring: s.keyring(), Policy: s.policy}
	entry, err := resolver.Lookup(fragment)
	if err != nil {
		return nil, err
	}

	pub, err := s.vault.ReadPublicKey(entry.Fingerprint)
	if err != nil {
		return nil, err
	}

	userID := entry.UUID
	if userID == "" {
		userID = uuid.NewString()
	}

	s.log.Debugf("Uploading key %s as %s", entry.Fingerprint, userID)
	err = s.server.NewUser(ctx, api.NewUserRequest{
		Fingerprint: entry.Fingerprint,
		UserID:      userID,
		PubKey:      pub,
		PubKeyHash:  secrets.PublicKeyHash(pub),
	})
	if err != nil {
		return nil, err
	}

	if !s.config.SetUUID(entry.Fingerprint, userID) {
		s.config.AddKey(configs.KeyEntry{Fingerprint: entry.Fingerprint, UUID: userID})
	}
	if err := configs.SaveIdentityConfig(s.settings.ConfigPath(), s.config); err != nil {
		return nil, err
	}

	s.audit.Append(audit.Entry{Key: entry.Fingerprint, UserUUID: userID, Operation: "key_upload"})

	return &UploadKeyResult{Fingerprint: entry.Fingerprint, UserID: userID}, nil
}
