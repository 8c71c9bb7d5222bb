package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the directory holding config.toml, the key vault and
// the audit log.
const ConfigDirEnv = "ENVCLI_CONFIG_DIR"

// ProjectConfigFile is the per-directory file naming the project to use.
const ProjectConfigFile = ".envcli.toml"

// Settings holds the on-disk locations envcli works with. It is built once by
// the CLI and passed down; nothing in internal/ reads it from a global.
type Settings struct {
	ConfigDir string
	KeysDir   string
}

// DefaultSettings resolves locations from ENVCLI_CONFIG_DIR or the user
// config directory (~/.config/envcli on Linux).
func DefaultSettings() (*Settings, error) {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("error getting config directory: %w", err)
		}
		dir = filepath.Join(configDir, "envcli")
	}
	return NewSettings(dir), nil
}

// NewSettings lays out the standard files under dir.
func NewSettings(dir string) *Settings {
	return &Settings{
		ConfigDir: dir,
		KeysDir:   filepath.Join(dir, "keys"),
	}
}

// ConfigPath is the identity config file.
func (s *Settings) ConfigPath() string {
	return filepath.Join(s.ConfigDir, "config.toml")
}

// AuditPath is the append-only operation log.
func (s *Settings) AuditPath() string {
	return filepath.Join(s.ConfigDir, "audit.jsonl")
}
