// Package doctest runs Python's doctest over a project's code and documentation.
package doctest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/project"
)

var (
	reTests   = regexp.MustCompile(`(?m)^(\d+) tests? in \d+ items?\.$`)
	reResults = regexp.MustCompile(`(?m)^(\d+) passed(?:(?: and|,) (\d+) failed)?\.$`)
)

// Result is the outcome of running the doctests in one or more files.
type Result struct {
	Tests    int
	Failures int
}

func (r Result) String() string {
	return fmt.Sprintf("%d tests run, %d failed", r.Tests, r.Failures)
}

// FailureError is returned by an ExitOnFail Runner when a file has failing tests.
type FailureError struct {
	File   string
	Result Result
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %d of %d tests failed", e.File, e.Result.Failures, e.Result.Tests)
}

func (*FailureError) ExitCode() int { return 1 }

type Runner struct {
	// Python is the interpreter to run; see project.Python.
	Python string
	// Dir is the directory that files are relative to.
	Dir        string
	ExitOnFail bool
	// Output receives doctest's report for any file that has failures.  Defaults to
	// os.Stderr.
	Output io.Writer
}

// parseSummary reads the totals that `python -m doctest -v` prints at the end of its report.
func parseSummary(output []byte) (Result, error) {
	tests := reTests.FindSubmatch(output)
	results := reResults.FindSubmatch(output)
	if tests == nil || results == nil {
		return Result{}, errors.New("no doctest summary in output")
	}
	var ret Result
	ret.Tests, _ = strconv.Atoi(string(tests[1]))
	if len(results[2]) > 0 {
		ret.Failures, _ = strconv.Atoi(string(results[2]))
	}
	return ret, nil
}

// RunFile runs the doctests in a single file.  A file whose tests fail is not an error; the
// failures are in the Result.
func (r *Runner) RunFile(ctx context.Context, file string) (Result, error) {
	cmd := dexec.CommandContext(ctx, r.Python,
		"-m", "doctest", "-v",
		"-o", "NORMALIZE_WHITESPACE",
		"-o", "REPORT_UDIFF",
		file)
	dlog.Debugf(ctx, "running %s", strings.Join(cmd.Args, " "))
	cmd.Dir = r.Dir
	cmd.DisableLogging = true
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()

	result, err := parseSummary(output.Bytes())
	if err != nil {
		// No summary means doctest never got to run the tests (an import error, say).
		if runErr != nil {
			err = runErr
		}
		return Result{}, fmt.Errorf("%s: %w:\n > %s", file, err,
			bytes.ReplaceAll(bytes.TrimSpace(output.Bytes()), []byte("\n"), []byte("\n > ")))
	}
	if result.Failures > 0 {
		out := r.Output
		if out == nil {
			out = os.Stderr
		}
		_, _ = out.Write(output.Bytes())
	} else {
		dlog.Debugf(ctx, "%s", output.Bytes())
	}
	return result, nil
}

// Run runs the doctests in each of files, sorted, and returns the totals.  Failing tests only
// stop the run if ExitOnFail is set.
func (r *Runner) Run(ctx context.Context, files []string) (Result, error) {
	files = append([]string(nil), files...)
	sort.Strings(files)
	var total Result
	for _, file := range files {
		dlog.Infof(ctx, "testing %s", file)
		result, err := r.RunFile(ctx, file)
		if err != nil {
			return total, err
		}
		dlog.Infof(ctx, "    %v", result)
		if r.ExitOnFail && result.Failures > 0 {
			return total, &FailureError{File: file, Result: result}
		}
		total.Tests += result.Tests
		total.Failures += result.Failures
	}
	dlog.Infof(ctx, "total of %v", total)
	if total.Failures > 0 {
		dlog.Warnf(ctx, "%d doctests failed", total.Failures)
	}
	return total, nil
}

func glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(dir, match)
		if err != nil {
			return nil, err
		}
		ret = append(ret, filepath.ToSlash(rel))
	}
	return ret, nil
}

// CodeFiles returns the Python sources covered by test_code: the module's *.py files and each
// script.
func CodeFiles(p *project.Project) ([]string, error) {
	ret, err := glob(p.Dir, p.Module+"/*.py")
	if err != nil {
		return nil, err
	}
	for _, script := range p.Scripts {
		ret = append(ret, script+".py")
	}
	sort.Strings(ret)
	return ret, nil
}

// DocFiles returns the documents covered by test_doc: README.rst and doc/*.rst.
func DocFiles(p *project.Project) ([]string, error) {
	ret, err := glob(p.Dir, "doc/*.rst")
	if err != nil {
		return nil, err
	}
	ret = append(ret, "README.rst")
	sort.Strings(ret)
	return ret, nil
}
