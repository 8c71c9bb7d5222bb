package utils

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ReadPassphrase prompts for a passphrase without echoing input. When stdin
// is not a terminal, for example because a value is piped in, the prompt is
// read from /dev/tty (or CON on Windows) instead.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return readHidden(fd, prompt)
	}

	ttyPath := "/dev/tty"
	if runtime.GOOS == "windows" {
		ttyPath = "CON"
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal and %s is unavailable: %w", ttyPath, err)
	}
	defer tty.Close()

	ttyFd := int(tty.Fd())
	if !term.IsTerminal(ttyFd) {
		return nil, fmt.Errorf("cannot read passphrase: %s is not a terminal", ttyPath)
	}
	return readHidden(ttyFd, prompt)
}

// ReadNewPassphrase asks for a passphrase twice and fails if the entries
// differ.
func ReadNewPassphrase() ([]byte, error) {
	first, err := ReadPassphrase("New passphrase: ")
	if err != nil {
		return nil, err
	}
	second, err := ReadPassphrase("Repeat passphrase: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	return first, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func readHidden(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}
