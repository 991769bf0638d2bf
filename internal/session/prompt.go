package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptLine reads one line from r after printing prompt to stderr.
func PromptLine(r *bufio.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)

	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptForPassword prompts the user for a password without echoing. When
// stdin is not a terminal the password is read as a plain line from r.
func PromptForPassword(r *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return PromptLine(r, prompt)
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)

	bytePassword, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(bytePassword), nil
}
