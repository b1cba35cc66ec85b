package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitMissingFile = 2
)

// ExitError carries a process exit code. Quiet errors were already reported
// on stdout by the command.
type ExitError struct {
	Code  int
	Err   error
	Quiet bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Report prints err and returns the exit code for it.
func Report(stdout, stderr io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprint(stdout, "\nOk, quitting\n")
		return ExitFailure
	}

	code := ExitFailure
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Quiet {
			return code
		}
	}

	_, _ = fmt.Fprintln(stderr, pretty(err))
	return code
}

func pretty(err error) string {
	var missing *domain.FieldMissingError
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("Unexpected response: %s\n\nHint: the administrator answered without %s; check the server version.", err, missing.Field)
	case errors.Is(err, domain.ErrSSOCookieMissing), errors.Is(err, domain.ErrNoSession):
		return fmt.Sprintf("Login failed: %s\n\nHint: check [admin] url, user and password in amxctrl.toml.", err)
	case errors.Is(err, domain.ErrTransport):
		return fmt.Sprintf("Connection error: %s\n\nHint: check that the administrator is reachable from this host.", err)
	case errors.Is(err, domain.ErrUnexpectedStatus), errors.Is(err, domain.ErrHTMLResponse):
		return fmt.Sprintf("Server refused the call: %s\n\nHint: the session may have expired or the user lacks permission.", err)
	case errors.Is(err, domain.ErrEnvironmentNotFound):
		return fmt.Sprintf("Not found: %s\n\nHint: check [bpm] environment_prefix.", err)
	case errors.Is(err, domain.ErrSecretNotFound):
		return fmt.Sprintf("Not found: %s\n\nHint: store it with amxctl config secret set.", err)
	default:
		return fmt.Sprintf("Error: %s", err)
	}
}
