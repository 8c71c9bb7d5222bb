package workflows

import (
	"context"
	"fmt"

	"github.com/env-store/envcli/internal/audit"
	kerrors "github.com/env-store/envcli/internal/errors"
	"github.com/env-store/envcli/internal/secrets"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// SetResult contains the outcome of storing one or more values.
type SetResult struct {
	ProjectID   string
	VariableIDs []string

	// Recipients is the number of project members the values were sealed to.
	Recipients int
}

// SetEnv seals one key/value pair to every member of the project and stores
// it.
//
// Returns ErrNoProject if no project is selected, ErrInvalidKVPair for an
// empty key and ErrSealing if a member key cannot encrypt.
func (s *SecretService) SetEnv(ctx context.Context, projectID string, pair secrets.KVPair) (*SetResult, error) {
	projectID, err := ProjectID(projectID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.recipients(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sealed, err := seal(pair, recipients)
	if err != nil {
		return nil, err
	}

	id, err := s.server.SetVariable(ctx, projectID, sealed)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Stored %s as %s", pair.Key, id)

	s.record(audit.Entry{Operation: "set", ProjectID: projectID, VariableIDs: []string{id}})

	return &SetResult{ProjectID: projectID, VariableIDs: []string{id}, Recipients: len(recipients)}, nil
}

// SetMany seals every pair to the project members and stores them in one
// request. Nothing is sent if any pair fails to seal.
func (s *SecretService) SetMany(ctx context.Context, projectID string, pairs []secrets.KVPair) (*SetResult, error) {
	result, err := s.storeMany(ctx, projectID, pairs)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Operation: "set_many", ProjectID: result.ProjectID, VariableIDs: result.VariableIDs, VariablesCount: len(pairs)})
	return result, nil
}

func (s *SecretService) storeMany(ctx context.Context, projectID string, pairs []secrets.KVPair) (*SetResult, error) {
	projectID, err := ProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: nothing to store", kerrors.ErrInvalidKVPair)
	}

	recipients, err := s.recipients(ctx, projectID)
	if err != nil {
		return nil, err
	}

	blobs := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		sealed, err := seal(pair, recipients)
		if err != nil {
			return nil, fmt.Errorf("sealing %s: %w", pair.Key, err)
		}
		blobs = append(blobs, sealed)
	}

	ids, err := s.server.SetMany(ctx, projectID, blobs)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Stored %d variables in project %s", len(ids), projectID)

	return &SetResult{ProjectID: projectID, VariableIDs: ids, Recipients: len(recipients)}, nil
}

// ImportResult contains the outcome of an import.
type ImportResult struct {
	SetResult

	Files []string
	Pairs []secrets.KVPair
}

// Import reads the .env files matched by patterns, relative to baseDir, and
// stores every variable in them in one request. A key defined in several files
// keeps the value from the last one.
func (s *SecretService) Import(ctx context.Context, projectID string, patterns []string, baseDir string) (*ImportResult, error) {
	files, err := secrets.ResolveEnvFiles(patterns, baseDir)
	if err != nil {
		return nil, err
	}

	var pairs []secrets.KVPair
	index := make(map[string]int)
	for _, file := range files {
		s.log.Debugf("Reading %s", file)
		filePairs, err := secrets.ReadEnvFile(file)
		if err != nil {
			return nil, err
		}
		for _, pair := range filePairs {
			if i, ok := index[pair.Key]; ok {
				pairs[i] = pair
				continue
			}
			index[pair.Key] = len(pairs)
			pairs = append(pairs, pair)
		}
	}

	result, err := s.storeMany(ctx, projectID, pairs)
	if err != nil {
		return nil, err
	}

	s.record(audit.Entry{Operation: "import", ProjectID: result.ProjectID, VariableIDs: result.VariableIDs, VariablesCount: len(pairs), Files: files})

	return &ImportResult{SetResult: *result, Files: files, Pairs: pairs}, nil
}

// recipients fetches the public key of every project member.
func (s *SecretService) recipients(ctx context.Context, projectID string) ([]*openpgp.Entity, error) {
	info, err := s.server.GetProjectInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(info.Users) == 0 {
		return nil, fmt.Errorf("%w: project %s has no members: %w", kerrors.ErrSealing, projectID, kerrors.ErrNoRecipients)
	}
	s.log.Debugf("Project %s has %d members", projectID, len(info.Users))
	return memberKeys(info)
}

func seal(pair secrets.KVPair, recipients []*openpgp.Entity) (string, error) {
	payload, err := pair.Marshal()
	if err != nil {
		return "", err
	}
	return secrets.EncryptMulti(payload, recipients)
}
