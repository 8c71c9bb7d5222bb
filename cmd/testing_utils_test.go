package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/env-store/envcli/internal/api"
	"github.com/env-store/envcli/internal/configs"
)

const testPassphrase = "correct horse battery staple"

// setupTestEnvironment points envcli at a fresh config directory, changes into
// a fresh working directory and resets command state. The identity config
// talks to apiURL when it is not empty.
func setupTestEnvironment(t *testing.T, apiURL string) *configs.Settings {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	workDir := t.TempDir()
	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		ResetGlobalState()
	})

	configDir := t.TempDir()
	t.Setenv(configs.ConfigDirEnv, configDir)
	t.Setenv(PassphraseEnv, testPassphrase)
	t.Setenv("NO_COLOR", "1")
	ResetGlobalState()

	settings := configs.NewSettings(configDir)
	if apiURL != "" {
		config := &configs.IdentityConfig{Salt: "test-salt", APIURL: apiURL}
		if err := configs.SaveIdentityConfig(settings.ConfigPath(), config); err != nil {
			t.Fatalf("Failed to save identity config: %v", err)
		}
	}
	return settings
}

// runCommand executes the root command with args and returns everything it
// printed.
func runCommand(args ...string) (string, error) {
	return captureOutput(func() error {
		RootCmd.SetArgs(args)
		return RootCmd.Execute()
	})
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// memoryServer is an in-memory envcli server. Every registered key is a
// member of every project.
type memoryServer struct {
	mu        sync.Mutex
	users     []api.NewUserRequest
	variables map[string][]string
}

func newMemoryServer(t *testing.T) (*memoryServer, *httptest.Server) {
	t.Helper()
	ms := &memoryServer{variables: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/new", func(w http.ResponseWriter, r *http.Request) {
		var req api.NewUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.mu.Lock()
		ms.users = append(ms.users, req)
		ms.mu.Unlock()
	})
	mux.HandleFunc("GET /project/{id}", ms.signed(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		info := api.ProjectInfo{ProjectID: r.PathValue("id")}
		for _, user := range ms.users {
			info.Users = append(info.Users, api.ProjectUser{ID: user.UserID, Username: user.UserID, PublicKey: user.PubKey})
		}
		json.NewEncoder(w).Encode(info)
	}))
	mux.HandleFunc("POST /variable/new", ms.signed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ProjectID string `json:"project_id"`
			Value     string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.mu.Lock()
		ms.variables[body.ProjectID] = append(ms.variables[body.ProjectID], body.Value)
		ms.mu.Unlock()
		w.Write([]byte(`{"id":"var"}`))
	}))
	mux.HandleFunc("POST /variables/set-many", ms.signed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ProjectID string   `json:"project_id"`
			Variables []string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.mu.Lock()
		ms.variables[body.ProjectID] = append(ms.variables[body.ProjectID], body.Variables...)
		ms.mu.Unlock()
		ids := make([]map[string]string, len(body.Variables))
		for i := range ids {
			ids[i] = map[string]string{"id": "var"}
		}
		json.NewEncoder(w).Encode(ids)
	}))
	mux.HandleFunc("GET /project/{id}/variables", ms.signed(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		values := ms.variables[r.PathValue("id")]
		if values == nil {
			values = []string{}
		}
		json.NewEncoder(w).Encode(values)
	}))
	mux.HandleFunc("POST /test-auth", ms.signed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return ms, server
}

func (ms *memoryServer) signed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
