package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`             // RFC3339 with microseconds.
	Key       string `json:"key,omitempty"`  // Fingerprint of the key used.
	UserUUID  string `json:"uuid,omitempty"` // Server-side id of that key.
	Operation string `json:"op"`             // Operation name.

	// Optional fields depending on operation.
	ProjectID      string   `json:"project_id,omitempty"`      // For set/import/variables/project.
	VariableIDs    []string `json:"variable_ids,omitempty"`    // For set/import.
	VariablesCount int      `json:"variables_count,omitempty"` // For import/variables/read-local.
	Files          []string `json:"files,omitempty"`           // For import/read-local.
}

// Log is an append-only JSON Lines file.
type Log struct {
	Path string
}

// Append writes an entry to the log. Failures are ignored: an operation must
// never fail because its audit record could not be written.
func (l Log) Append(entry Entry) {
	if l.Path == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the log.
// Returns an empty slice if the log doesn't exist.
func (l Log) ReadEntries() ([]Entry, error) {
	data, err := os.ReadFile(l.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip partial writes.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
