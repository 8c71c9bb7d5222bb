package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/env-store/envcli/internal/api"
	"github.com/env-store/envcli/internal/audit"
	kerrors "github.com/env-store/envcli/internal/errors"
	"github.com/env-store/envcli/internal/secrets"
)

// LocalVaultFile is the per-directory file read by ReadLocal: a JSON array of
// sealed values.
const LocalVaultFile = ".envcli.vault"

// GetVariables fetches every value stored for the project and decrypts them
// with the one key resolved from the first. Any failure fails the whole call
// and no plaintext is returned.
//
// Returns ErrNoUsableKey if no local key can read the project,
// ErrBadPassphrase if the key cannot be unlocked, and ErrWrongKey if a value
// was sealed to a different set of members than the first one.
func (s *SecretService) GetVariables(ctx context.Context, projectID string) ([]secrets.KVPair, error) {
	projectID, err := ProjectID(projectID)
	if err != nil {
		return nil, err
	}

	blobs, err := s.server.GetVariables(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Fetched %d sealed variables", len(blobs))

	if len(blobs) == 0 {
		s.record(audit.Entry{Operation: "variables", ProjectID: projectID})
		return []secrets.KVPair{}, nil
	}

	opts, err := s.decryptOptions()
	if err != nil {
		return nil, err
	}

	plaintexts, err := secrets.DecryptMany(blobs, s.keyring(), secrets.BatchOptions{
		DecryptOptions: opts,
		Workers:        s.workers,
	})
	if err != nil {
		return nil, err
	}

	pairs, err := parsePairs(plaintexts)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Operation: "variables", ProjectID: projectID, VariablesCount: len(pairs)})
	return pairs, nil
}

// ReadLocal decrypts the values in a local vault file one at a time. Each
// value is resolved against the keyring on its own, so values sealed to
// different members can live in one file.
func (s *SecretService) ReadLocal(path string) ([]secrets.KVPair, error) {
	if path == "" {
		path = LocalVaultFile
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found: %w", path, err)
		}
		return nil, err
	}

	var blobs []string
	if err := json.Unmarshal(data, &blobs); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON array of sealed values: %w", kerrors.ErrCorruptMessage, path, err)
	}

	opts, err := s.decryptOptions()
	if err != nil {
		return nil, err
	}

	plaintexts := make([][]byte, 0, len(blobs))
	for i, blob := range blobs {
		plaintext, err := secrets.DecryptFull(blob, s.keyring(), opts)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		plaintexts = append(plaintexts, plaintext)
	}

	pairs, err := parsePairs(plaintexts)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Operation: "read_local", VariablesCount: len(pairs), Files: []string{path}})
	return pairs, nil
}

// GetProjectInfo returns the members of a project.
func (s *SecretService) GetProjectInfo(ctx context.Context, projectID string) (*api.ProjectInfo, error) {
	projectID, err := ProjectID(projectID)
	if err != nil {
		return nil, err
	}

	info, err := s.server.GetProjectInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Operation: "project", ProjectID: projectID})
	return info, nil
}

// TestAuthResult contains the outcome of an auth check.
type TestAuthResult struct {
	Fingerprint string
	UserID      string
	Reply       string
}

// TestAuth signs a token with the selected key and asks the server to check
// it.
//
// Returns ErrMissingIdentity if the key was never uploaded.
func (s *SecretService) TestAuth(ctx context.Context) (*TestAuthResult, error) {
	issuer, err := s.issuer()
	if err != nil {
		return nil, err
	}
	// Fail before the request when no token can be issued.
	token, err := issuer.Issue(s.key, "")
	if err != nil {
		return nil, err
	}

	reply, err := s.server.TestAuth(ctx)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Key: token.Fingerprint, UserUUID: token.UserID, Operation: "auth"})
	return &TestAuthResult{Fingerprint: token.Fingerprint, UserID: token.UserID, Reply: reply}, nil
}

func parsePairs(plaintexts [][]byte) ([]secrets.KVPair, error) {
	pairs := make([]secrets.KVPair, 0, len(plaintexts))
	for i, plaintext := range plaintexts {
		pair, err := secrets.ParseKVPair(plaintext)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}
