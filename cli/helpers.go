package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fahmaliyi/fortress/vault"
	"golang.org/x/term"
)

// ReadPassword prompts on stderr and reads a password from the terminal
// without echo.
func ReadPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.WithHint(
			errors.New("cannot prompt for the master password: stdin is not a terminal"),
			"pass --stdin to read it from a pipe")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, errors.Wrap(err, "read password")
	}
	return pw, nil
}

// readPasswordLine reads the first line of r. A final line without a newline
// is accepted.
func readPasswordLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, errors.Wrap(err, "read password from stdin")
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// PrintError writes err and its hints the way the command line reports
// failures. A password that could not be copied is printed so it is not lost.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "Hint: %s\n", h)
	}
	var clipErr *vault.ClipboardError
	if errors.As(err, &clipErr) && clipErr.Password != "" {
		fmt.Fprintf(w, "Your password is: %s\n", clipErr.Password)
	}
}
