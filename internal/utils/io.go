package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadStdin reads a value piped on stdin, dropping one trailing newline.
// Returns an error if stdin is a terminal (no piped data) or cannot be read.
func ReadStdin() (string, error) {
	if IsTerminal() {
		return "", fmt.Errorf("no value provided (hint: pass it as an argument or pipe it on stdin)")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}

	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}
