package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultAPIURL is used when the identity config does not name a server.
const DefaultAPIURL = "http://localhost:3000"

// KeyEntry references a private key stored in the vault.
type KeyEntry struct {
	Fingerprint string `toml:"fingerprint"`
	// UUID is the server-side user identifier assigned when the key was uploaded.
	UUID string `toml:"uuid,omitempty"`
}

// IdentityConfig is the user's local identity: which keys they hold and which
// one they prefer. Keys keeps insertion order; the resolver relies on it for
// its tie-break.
type IdentityConfig struct {
	PrimaryKey string     `toml:"primary_key"`
	Salt       string     `toml:"salt"`
	APIURL     string     `toml:"api_url,omitempty"`
	Keys       []KeyEntry `toml:"keys"`
}

// ProjectConfig is the optional per-directory project selection.
type ProjectConfig struct {
	ProjectID string `toml:"project_id"`
}

// LoadIdentityConfig reads the identity config at path. A missing file yields
// an empty config.
func LoadIdentityConfig(path string) (*IdentityConfig, error) {
	config := &IdentityConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load identity config: %w", err)
	}

	return config, nil
}

// SaveIdentityConfig writes the identity config to path.
func SaveIdentityConfig(path string, config *IdentityConfig) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save identity config: %w", err)
	}
	return nil
}

// GenerateSalt generates the salt mixed into hashed key user ids.
func GenerateSalt() string {
	return uuid.New().String()
}

// EnsureIdentityConfig loads the identity config and persists a salt if it
// has none yet.
func EnsureIdentityConfig(path string) (*IdentityConfig, error) {
	config, err := LoadIdentityConfig(path)
	if err != nil {
		return nil, err
	}

	if config.Salt == "" {
		config.Salt = GenerateSalt()
		if err := SaveIdentityConfig(path, config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// APIURLOrDefault returns the configured server, falling back to DefaultAPIURL.
func (c *IdentityConfig) APIURLOrDefault() string {
	if c.APIURL == "" {
		return DefaultAPIURL
	}
	return strings.TrimRight(c.APIURL, "/")
}

// Entry returns the keyring entry whose fingerprint equals fingerprint,
// ignoring case.
func (c *IdentityConfig) Entry(fingerprint string) (KeyEntry, bool) {
	for _, k := range c.Keys {
		if strings.EqualFold(k.Fingerprint, fingerprint) {
			return k, true
		}
	}
	return KeyEntry{}, false
}

// AddKey appends a key to the keyring unless it is already present. The first
// key added becomes the primary key.
func (c *IdentityConfig) AddKey(entry KeyEntry) {
	if _, ok := c.Entry(entry.Fingerprint); !ok {
		c.Keys = append(c.Keys, entry)
	}
	if c.PrimaryKey == "" {
		c.PrimaryKey = entry.Fingerprint
	}
}

// SetUUID records the server-side user id for a key.
func (c *IdentityConfig) SetUUID(fingerprint, id string) bool {
	for i := range c.Keys {
		if strings.EqualFold(c.Keys[i].Fingerprint, fingerprint) {
			c.Keys[i].UUID = id
			return true
		}
	}
	return false
}

// LoadProjectConfig reads the project selection from dir. A missing file
// yields an empty config.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, ProjectConfigFile)
	config := &ProjectConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	return config, nil
}

// SaveProjectConfig writes the project selection into dir.
func SaveProjectConfig(dir string, config *ProjectConfig) error {
	if err := SaveTOML(filepath.Join(dir, ProjectConfigFile), config); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}
	return nil
}
