package scm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UnknownBackendError is a configuration error: the project names a backend that isn't
// supported.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown SCM type %q (supported: hg, git)", e.Name)
}

func (e *UnknownBackendError) ExitCode() int { return 1 }

// ToolMissingError is returned when the backend's executable could not be started.
type ToolMissingError struct {
	Kind Kind
	Err  error
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("error calling %q, is %s installed?: %v", string(e.Kind), e.Kind, e.Err)
}

func (e *ToolMissingError) Unwrap() error { return e.Err }

func (e *ToolMissingError) ExitCode() int { return 1 }

// CommandError is returned when a backend command exits non-zero.  The command's exit code
// becomes the exit code of the program.
type CommandError struct {
	Args   []string
	Code   int
	Stderr []byte
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%q completed with %d return code", strings.Join(e.Args, " "), e.Code)
	if stderr := strings.TrimRight(string(e.Stderr), "\n"); stderr != "" {
		msg += ":\n > " + strings.Join(strings.Split(stderr, "\n"), "\n > ")
	}
	return msg
}

func (e *CommandError) ExitCode() int { return e.Code }

// NotCheckoutError is returned by Backend.IsCheckout.
type NotCheckoutError struct {
	Kind Kind
	Dir  string
	Err  error
}

func (e *NotCheckoutError) Error() string {
	dir, err := filepath.Abs(e.Dir)
	if err != nil {
		dir = e.Dir
	}
	return fmt.Sprintf("dir %s is not a %s clone", dir, e.Kind)
}

func (e *NotCheckoutError) Unwrap() error { return e.Err }

func (e *NotCheckoutError) ExitCode() int { return 1 }
