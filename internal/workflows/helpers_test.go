package workflows

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/env-store/envcli/internal/api"
	"github.com/env-store/envcli/internal/configs"
	logger "github.com/env-store/envcli/internal/logging"
	"github.com/env-store/envcli/internal/secrets"
)

var (
	testKeysOnce sync.Once
	testKeys     []*secrets.KeyPair
	testKeysErr  error
)

var testPassphrase = []byte("workflow passphrase")

// testKeyPairs returns three passphrase protected keys shared by the tests.
func testKeyPairs(t *testing.T) []*secrets.KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		for i := 0; i < 3; i++ {
			kp, err := secrets.GenerateKeyPair(secrets.GenerationOptions{
				Name:       fmt.Sprintf("Member %d", i),
				Email:      fmt.Sprintf("member%d@example.com", i),
				Salt:       "salt",
				Passphrase: testPassphrase,
				Bits:       2048,
			})
			if err != nil {
				testKeysErr = err
				return
			}
			testKeys = append(testKeys, kp)
		}
	})
	if testKeysErr != nil {
		t.Fatalf("Failed to generate test keys: %v", testKeysErr)
	}
	return testKeys
}

func staticPassphrase(p []byte) PassphraseSource {
	return func() ([]byte, error) { return p, nil }
}

func quietLogger() logger.Logger {
	return logger.Logger{Out: io.Discard, Err: io.Discard}
}

// newService builds a service whose vault and keyring hold kps, in order.
// The first key is primary.
func newService(t *testing.T, server Server, kps ...*secrets.KeyPair) *SecretService {
	t.Helper()
	settings := configs.NewSettings(t.TempDir())
	vault := secrets.Vault{Dir: settings.KeysDir}

	config := &configs.IdentityConfig{Salt: "salt"}
	for i, kp := range kps {
		if err := vault.Save(kp); err != nil {
			t.Fatalf("Failed to save key: %v", err)
		}
		config.AddKey(configs.KeyEntry{Fingerprint: kp.Fingerprint, UUID: fmt.Sprintf("user-%d", i)})
	}
	if err := configs.SaveIdentityConfig(settings.ConfigPath(), config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	svc, err := NewSecretService(Options{
		Settings:   settings,
		Passphrase: staticPassphrase(testPassphrase),
		Server:     server,
		Workers:    2,
		Log:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return svc
}

// fakeServer keeps projects in memory.
type fakeServer struct {
	mu        sync.Mutex
	members   map[string][]api.ProjectUser
	variables map[string][]string
	users     []api.NewUserRequest
	nextID    int
	authCalls int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		members:   make(map[string][]api.ProjectUser),
		variables: make(map[string][]string),
	}
}

// addMember adds a key's public half to a project.
func (f *fakeServer) addMember(t *testing.T, projectID string, kp *secrets.KeyPair) {
	t.Helper()
	pub, err := kp.ArmoredPublicKey()
	if err != nil {
		t.Fatalf("Failed to armor public key: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[projectID] = append(f.members[projectID], api.ProjectUser{
		ID:        kp.Fingerprint[:8],
		Username:  kp.Fingerprint[:8],
		PublicKey: pub,
	})
}

func (f *fakeServer) NewUser(ctx context.Context, user api.NewUserRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, user)
	return nil
}

func (f *fakeServer) GetProjectInfo(ctx context.Context, projectID string) (*api.ProjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.ProjectInfo{ProjectID: projectID, Users: f.members[projectID]}, nil
}

func (f *fakeServer) SetVariable(ctx context.Context, projectID, sealed string) (string, error) {
	ids, err := f.SetMany(ctx, projectID, []string{sealed})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (f *fakeServer) SetMany(ctx context.Context, projectID string, sealed []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(sealed))
	for _, blob := range sealed {
		f.nextID++
		ids = append(ids, fmt.Sprintf("var-%d", f.nextID))
		f.variables[projectID] = append(f.variables[projectID], blob)
	}
	return ids, nil
}

func (f *fakeServer) GetVariables(ctx context.Context, projectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.variables[projectID]...), nil
}

func (f *fakeServer) TestAuth(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return "ok", nil
}
