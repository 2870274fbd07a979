package project

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"
)

// HookError is returned when a project hook fails.
type HookError struct {
	Name string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook: %v", e.Name, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

func (e *HookError) ExitCode() int {
	var exitErr *dexec.ExitError
	if errors.As(e.Err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// RunHook runs the project's hook for a command, if it has one.  The hook is told about the
// command's --dry-run and --force settings through $SCMDIST_DRY_RUN and $SCMDIST_FORCE (as "0" or
// "1"); a hook is expected to honor dry-run itself.
func (p *Project) RunHook(ctx context.Context, name string, dryRun, force bool) error {
	argv := p.Hooks[name]
	if len(argv) == 0 {
		return nil
	}
	dlog.Infof(ctx, "running %s hook", name)
	cmd := dexec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.Dir
	cmd.Env = append(os.Environ(),
		"SCMDIST_DRY_RUN="+boolEnv(dryRun),
		"SCMDIST_FORCE="+boolEnv(force))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &HookError{Name: name, Err: err}
	}
	return nil
}

func boolEnv(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
