package secrets

import (
	"errors"
	"testing"

	kerrors "github.com/env-store/envcli/internal/errors"
)

func TestKVPair_Marshal(t *testing.T) {
	data, err := KVPair{Key: "DB_URL", Value: `postgres://u:"p"@h`}.Marshal()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := `{"key":"DB_URL","value":"postgres://u:\"p\"@h"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	if _, err := (KVPair{Value: "x"}).Marshal(); !errors.Is(err, kerrors.ErrInvalidKVPair) {
		t.Errorf("Expected ErrInvalidKVPair for an empty key, got: %v", err)
	}
}

func TestKVPair_MarshalRejectsInvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		pair KVPair
	}{
		{"latin-1 value", KVPair{Key: "K", Value: "a\xffb"}},
		{"truncated sequence", KVPair{Key: "K", Value: "caf\xc3"}},
		{"invalid key", KVPair{Key: "K\xfe", Value: "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.pair.Marshal()
			if !errors.Is(err, kerrors.ErrInvalidKVPair) {
				t.Errorf("Expected ErrInvalidKVPair, got: %v (data %q)", err, data)
			}
		})
	}

	// Valid multi-byte text survives unchanged.
	pair := KVPair{Key: "GREETING", Value: "héllo wörld ✓"}
	data, err := pair.Marshal()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got, err := ParseKVPair(data)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != pair {
		t.Errorf("Expected %+v, got %+v", pair, got)
	}
}

func TestParseKVPair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    KVPair
		wantErr bool
	}{
		{"canonical", `{"key":"A","value":"1"}`, KVPair{"A", "1"}, false},
		{"empty value", `{"key":"A","value":""}`, KVPair{"A", ""}, false},
		{"not json", `A=1`, KVPair{}, true},
		{"missing key", `{"value":"1"}`, KVPair{}, true},
		{"unknown field", `{"key":"A","value":"1","extra":true}`, KVPair{}, true},
		{"trailing text", `{"key":"a","value":"b"} trailing`, KVPair{}, true},
		{"second object", `{"key":"a","value":"b"}{"key":"c","value":"d"}`, KVPair{}, true},
		{"trailing whitespace", "{\"key\":\"A\",\"value\":\"1\"}\n", KVPair{"A", "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKVPair([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, kerrors.ErrInvalidKVPair) {
					t.Errorf("Expected ErrInvalidKVPair, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
