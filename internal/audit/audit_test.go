package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppend_CreatesFileAndDirectory(t *testing.T) {
	log := Log{Path: filepath.Join(t.TempDir(), "nested", "audit.jsonl")}

	log.Append(Entry{Key: "AAAA1111", Operation: "key_new"})

	if _, err := os.Stat(log.Path); os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
}

func TestAppend_AppendsEntries(t *testing.T) {
	log := Log{Path: filepath.Join(t.TempDir(), "audit.jsonl")}

	log.Append(Entry{Key: "AAAA1111", Operation: "set", ProjectID: "p1", VariableIDs: []string{"v1"}})
	log.Append(Entry{Key: "AAAA1111", Operation: "variables", ProjectID: "p1", VariablesCount: 3})
	log.Append(Entry{Key: "BBBB2222", Operation: "key_upload", UserUUID: "u2"})

	entries, err := log.ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	expectedOps := []string{"set", "variables", "key_upload"}
	for i, op := range expectedOps {
		if entries[i].Operation != op {
			t.Errorf("Entry %d: expected op %s, got %s", i, op, entries[i].Operation)
		}
	}
	if entries[1].VariablesCount != 3 {
		t.Errorf("Expected variables_count 3, got %d", entries[1].VariablesCount)
	}
}

func TestAppend_TimestampFormat(t *testing.T) {
	log := Log{Path: filepath.Join(t.TempDir(), "audit.jsonl")}
	log.Append(Entry{Operation: "auth"})

	data, err := os.ReadFile(log.Path)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	// Check timestamp format: 2006-01-02T15:04:05.000000Z.
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestAppend_OmitsEmptyFields(t *testing.T) {
	log := Log{Path: filepath.Join(t.TempDir(), "audit.jsonl")}
	log.Append(Entry{Key: "AAAA1111", Operation: "auth"})

	data, err := os.ReadFile(log.Path)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	line := strings.TrimSpace(string(data))

	for _, field := range []string{`"files"`, `"project_id"`, `"variable_ids"`, `"uuid"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted: %s", field, line)
		}
	}
}

func TestAppend_NoPath(t *testing.T) {
	// Should silently do nothing.
	Log{}.Append(Entry{Operation: "set"})
}

func TestAppend_UnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	// The parent is a regular file, so the log cannot be created.
	Log{Path: filepath.Join(blocker, "audit.jsonl")}.Append(Entry{Operation: "set"})
}

func TestReadEntries_MissingFile(t *testing.T) {
	entries, err := Log{Path: filepath.Join(t.TempDir(), "missing.jsonl")}.ReadEntries()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","key":"AAAA1111","op":"set"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","key":"BBBB2222","op":"variables"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
	if entries[1].Key != "BBBB2222" {
		t.Errorf("Expected second key BBBB2222, got %s", entries[1].Key)
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}
