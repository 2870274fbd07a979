// Package project loads the packaging metadata of a Python project from its pkgdata.yml file.
package project

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/datawire/scmdist/pkg/fsutil"
	"github.com/datawire/scmdist/pkg/python/pep345"
	"github.com/datawire/scmdist/pkg/python/pep440"
	"github.com/datawire/scmdist/pkg/scm"
)

// DefaultFilename is where the project configuration is read from unless told otherwise.
const DefaultFilename = "pkgdata.yml"

// Project is the content of pkgdata.yml.
type Project struct {
	Name            string              `json:"name"                      yaml:"name"`
	Version         string              `json:"version"                   yaml:"version"`
	Author          string              `json:"author,omitempty"          yaml:"author,omitempty"`
	Description     string              `json:"description,omitempty"     yaml:"description,omitempty"`
	LongDescription string              `json:"longDescription,omitempty" yaml:"longDescription,omitempty"`
	License         string              `json:"license,omitempty"         yaml:"license,omitempty"`
	Homepage        string              `json:"homepage,omitempty"        yaml:"homepage,omitempty"`
	DownloadURL     string              `json:"downloadURL,omitempty"     yaml:"downloadURL,omitempty"`
	Keywords        []string            `json:"keywords,omitempty"        yaml:"keywords,omitempty"`
	Classifiers     []string            `json:"classifiers,omitempty"     yaml:"classifiers,omitempty"`
	InstallRequires []string            `json:"installRequires,omitempty" yaml:"installRequires,omitempty"`
	SCM             string              `json:"scm"                       yaml:"scm"`
	Module          string              `json:"module,omitempty"          yaml:"module,omitempty"`
	Scripts         []string            `json:"scripts,omitempty"         yaml:"scripts,omitempty"`
	Formats         []string            `json:"formats,omitempty"         yaml:"formats,omitempty"`
	Hooks           map[string][]string `json:"hooks,omitempty"           yaml:"hooks,omitempty"`

	// Dir is the directory that holds the configuration file; every other path is relative
	// to it.
	Dir string `json:"-" yaml:"-"`
}

// Hook names, one per command that runs a hook when it finishes.
const (
	HookBuildDoc = "build_doc"
	HookClean    = "clean"
	HookTestCode = "test_code"
	HookTestDoc  = "test_doc"
)

var knownHooks = map[string]struct{}{
	HookBuildDoc: {},
	HookClean:    {},
	HookTestCode: {},
	HookTestDoc:  {},
}

// ConfigError is a problem with the content of the configuration file.
type ConfigError struct {
	Filename string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) ExitCode() int { return 1 }

// Load reads and validates a project configuration file.  Nothing on disk is touched other than
// reading filename.
func Load(filename string) (*Project, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var proj Project
	if err := yaml.Unmarshal(bs, &proj, yaml.DisallowUnknownFields); err != nil {
		return nil, &ConfigError{Filename: filename, Err: err}
	}
	proj.Dir = filepath.Dir(filename)
	if err := proj.validate(); err != nil {
		return nil, &ConfigError{Filename: filename, Err: err}
	}
	return &proj, nil
}

func (p *Project) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name: must not be empty")
	}
	if _, err := pep440.ParseVersion(p.Version); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if _, err := scm.ParseKind(p.SCM); err != nil {
		return fmt.Errorf("scm: %w", err)
	}
	if p.Module == "" {
		p.Module = p.Name
	}
	if len(p.Formats) == 0 {
		p.Formats = []string{string(fsutil.FormatGzTar)}
	}
	if _, err := fsutil.ParseFormats(strings.Join(p.Formats, ",")); err != nil {
		return fmt.Errorf("formats: %w", err)
	}
	hookNames := make([]string, 0, len(p.Hooks))
	for name := range p.Hooks {
		hookNames = append(hookNames, name)
	}
	sort.Strings(hookNames)
	for _, name := range hookNames {
		if _, ok := knownHooks[name]; !ok {
			return fmt.Errorf("hooks: unknown hook %q", name)
		}
		if len(p.Hooks[name]) == 0 {
			return fmt.Errorf("hooks: %s: empty command", name)
		}
	}
	return nil
}

// Kind returns the version-control backend.  It must only be called on a Project returned by
// Load.
func (p *Project) Kind() scm.Kind {
	kind, err := scm.ParseKind(p.SCM)
	if err != nil {
		panic(err)
	}
	return kind
}

// Backend opens the project's checkout.
func (p *Project) Backend() (scm.Backend, error) {
	return scm.Open(p.SCM, p.Dir)
}

// Path resolves a slash-separated path relative to the project directory.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// ArchiveFormats returns the formats that `sdist` builds unless told otherwise.
func (p *Project) ArchiveFormats() []fsutil.Format {
	formats, _ := fsutil.ParseFormats(strings.Join(p.Formats, ","))
	return formats
}

// DistName is the basename (and top-level directory) of a release archive.
func (p *Project) DistName() string {
	return p.Name + "-" + p.Version
}

// AuthorAddress splits the "Name <email>" author string.  A string that isn't an RFC 5322
// address is taken to be just a name.
func (p *Project) AuthorAddress() (name, email string) {
	addr, err := mail.ParseAddress(p.Author)
	if err != nil {
		return p.Author, ""
	}
	return addr.Name, addr.Address
}

// Metadata returns the PKG-INFO content for a source distribution.
func (p *Project) Metadata() pep345.Metadata {
	author, email := p.AuthorAddress()
	return pep345.Metadata{
		Name:         p.Name,
		Version:      p.Version,
		Summary:      p.Description,
		HomePage:     p.Homepage,
		DownloadURL:  p.DownloadURL,
		Author:       author,
		AuthorEmail:  email,
		License:      p.License,
		Description:  p.LongDescription,
		Keywords:     p.Keywords,
		Classifiers:  p.Classifiers,
		RequiresDist: p.InstallRequires,
	}
}
