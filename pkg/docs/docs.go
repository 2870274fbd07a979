// Package docs renders a project's reStructuredText documentation to HTML.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/changelog"
	"github.com/datawire/scmdist/pkg/project"
	"github.com/datawire/scmdist/pkg/scm"
)

const (
	// Stylesheet is linked from every rendered page.
	Stylesheet = "doc/docutils.css"
	// SphinxSource is the root of the optional Sphinx tree.
	SphinxSource = "doc/source"
	// SphinxOutput is where the Sphinx tree is rendered to.
	SphinxOutput = "doc/html"
	sphinxCache  = "doc/source/.doctrees"
)

type Builder struct {
	Project      *project.Project
	Backend      scm.Backend
	Capabilities project.Capabilities
	DryRun       bool
	// Style is the chroma style used for code blocks; see Highlight.
	Style string
}

// Sources returns the reStructuredText files to render, relative to the project and sorted:
// NEWS.rst and README.rst (if they exist) and doc/*.rst.
func (b *Builder) Sources() ([]string, error) {
	var ret []string
	for _, name := range []string{"NEWS.rst", "README.rst"} {
		if _, err := os.Stat(b.Project.Path(name)); err == nil {
			ret = append(ret, name)
		}
	}
	matches, err := filepath.Glob(b.Project.Path("doc/*.rst"))
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		ret = append(ret, "doc/"+filepath.Base(match))
	}
	sort.Strings(ret)
	return ret, nil
}

// Newer returns whether src has been modified more recently than dest, or dest doesn't exist.
func Newer(src, dest string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return srcInfo.ModTime().After(destInfo.ModTime()), nil
}

// HTMLName returns the name of the page rendered from an .rst source.
func HTMLName(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".html"
}

// Build renders every source that is out of date (or all of them if force is set), then the
// Sphinx tree if there is one, and then brings the ChangeLog up to date.
func (b *Builder) Build(ctx context.Context, force bool) error {
	if err := b.Capabilities.Require(project.Docutils); err != nil {
		return fmt.Errorf("can't generate documentation: %w", err)
	}
	sources, err := b.Sources()
	if err != nil {
		return err
	}
	for _, src := range sources {
		dest := HTMLName(src)
		if !force {
			newer, err := Newer(b.Project.Path(src), b.Project.Path(dest))
			if err != nil {
				return err
			}
			if !newer {
				dlog.Debugf(ctx, "%s is up to date", dest)
				continue
			}
		}
		dlog.Infof(ctx, "building file %s", dest)
		if b.DryRun {
			continue
		}
		if err := b.render(ctx, src, dest); err != nil {
			return err
		}
		if err := Highlight(b.Project.Path(dest), b.Style); err != nil {
			return fmt.Errorf("%s: %w", dest, err)
		}
	}

	if info, err := os.Stat(b.Project.Path(SphinxSource)); err == nil && info.IsDir() {
		if err := b.Capabilities.Require(project.Sphinx); err != nil {
			return fmt.Errorf("can't build %s: %w", SphinxSource, err)
		}
		dlog.Infof(ctx, "building sphinx tree")
		if !b.DryRun {
			if err := os.MkdirAll(b.Project.Path(SphinxOutput), 0o755); err != nil {
				return err
			}
			if err := b.run(ctx, b.Capabilities.Executable(project.Sphinx),
				"-b", "html", "-d", sphinxCache, SphinxSource, SphinxOutput); err != nil {
				return fmt.Errorf("sphinx-build: %w", err)
			}
		}
	}

	_, err = changelog.Builder{
		Backend:  b.Backend,
		Filename: b.Project.Path(changelog.Filename),
		DryRun:   b.DryRun,
	}.Build(ctx, force)
	return err
}

func (b *Builder) render(ctx context.Context, src, dest string) error {
	err := b.run(ctx, b.Capabilities.Executable(project.Docutils),
		"--source-link",
		"--strict",
		"--generator",
		"--stylesheet-path="+Stylesheet,
		"--link-stylesheet",
		"--syntax-highlight=none",
		src, dest)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", src, err)
	}
	return nil
}

func (b *Builder) run(ctx context.Context, exe string, args ...string) error {
	cmd := dexec.CommandContext(ctx, exe, args...)
	cmd.Dir = b.Project.Dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
