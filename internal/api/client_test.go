package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	kerrors "github.com/env-store/envcli/internal/errors"
	logger "github.com/env-store/envcli/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler, token TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(server.URL+"/", token, logger.Logger{Out: io.Discard, Err: io.Discard})
	c.HTTP.RetryWaitMin = time.Millisecond
	c.HTTP.RetryWaitMax = time.Millisecond
	return c
}

func staticToken(value string) TokenSource {
	return func() (string, error) { return value, nil }
}

func TestGetProjectInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /project/{id}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode(ProjectInfo{
			ProjectID: r.PathValue("id"),
			Users:     []ProjectUser{{ID: "u1", Username: "ada", PublicKey: "KEY"}},
		})
	})

	c := newTestClient(t, mux, staticToken("tok"))
	info, err := c.GetProjectInfo(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if info.ProjectID != "proj-1" || len(info.Users) != 1 || info.Users[0].PublicKey != "KEY" {
		t.Errorf("Unexpected project info: %+v", info)
	}
}

func TestSetVariable_SendsBlobUnchanged(t *testing.T) {
	blob := "-----BEGIN PGP MESSAGE-----\n\nwcBMA+x/y==\n-----END PGP MESSAGE-----\n"

	mux := http.NewServeMux()
	mux.HandleFunc("POST /variable/new", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
			return
		}
		if body["project_id"] != "p" || body["value"] != blob {
			t.Errorf("Unexpected body: %v", body)
		}
		w.Write([]byte(`{"id":"var-1"}`))
	})

	c := newTestClient(t, mux, staticToken("tok"))
	id, err := c.SetVariable(context.Background(), "p", blob)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id != "var-1" {
		t.Errorf("Expected var-1, got %q", id)
	}
}

func TestSetManyAndGetVariables(t *testing.T) {
	var stored []string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /variables/set-many", func(w http.ResponseWriter, r *http.Request) {
		var body setManyRequest
		json.NewDecoder(r.Body).Decode(&body)
		stored = append(stored, body.Variables...)
		ids := make([]variableID, len(body.Variables))
		for i := range ids {
			ids[i].ID = body.Variables[i] + "-id"
		}
		json.NewEncoder(w).Encode(ids)
	})
	mux.HandleFunc("GET /project/{id}/variables", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(stored)
	})

	c := newTestClient(t, mux, staticToken("tok"))
	ids, err := c.SetMany(context.Background(), "p", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Join(ids, ",") != "a-id,b-id" {
		t.Errorf("Unexpected ids: %v", ids)
	}

	got, err := c.GetVariables(context.Background(), "p")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("Unexpected variables: %v", got)
	}
}

func TestNewUser_IsUnauthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/new", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("Expected no Authorization header on registration")
		}
		var body NewUserRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Fingerprint != "FPR" || body.PubKeyHash != "HASH" {
			t.Errorf("Unexpected body: %+v", body)
		}
	})

	called := false
	c := newTestClient(t, mux, func() (string, error) {
		called = true
		return "tok", nil
	})
	err := c.NewUser(context.Background(), NewUserRequest{Fingerprint: "FPR", UserID: "u", PubKey: "K", PubKeyHash: "HASH"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if called {
		t.Error("Expected no token to be issued for registration")
	}
}

func TestTestAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-auth", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("hello u1"))
	})

	reply, err := newTestClient(t, mux, staticToken("tok")).TestAuth(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if reply != "hello u1" {
		t.Errorf("Unexpected reply: %q", reply)
	}

	_, err = newTestClient(t, mux, staticToken("bad")).TestAuth(context.Background())
	if !errors.Is(err, kerrors.ErrRequestFailed) {
		t.Errorf("Expected ErrRequestFailed, got: %v", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`["x"]`))
	})

	got, err := newTestClient(t, handler, staticToken("tok")).GetVariables(context.Background(), "p")
	if err != nil {
		t.Fatalf("Expected request to succeed after retries, got: %v", err)
	}
	if len(got) != 1 || attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts and one variable, got %d attempts and %v", attempts.Load(), got)
	}
}

func TestPersistentServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	})

	_, err := newTestClient(t, handler, staticToken("tok")).GetVariables(context.Background(), "p")
	if !errors.Is(err, kerrors.ErrRequestFailed) {
		t.Fatalf("Expected ErrRequestFailed, got: %v", err)
	}
	if !strings.Contains(err.Error(), "database down") {
		t.Errorf("Expected server message in error, got: %v", err)
	}
}

func TestTokenError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request when the token cannot be issued")
	})
	wantErr := errors.New("no key")

	_, err := newTestClient(t, handler, func() (string, error) { return "", wantErr }).GetVariables(context.Background(), "p")
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected token error, got: %v", err)
	}
}
