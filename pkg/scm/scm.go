// Package scm runs the version-control tool (Mercurial or Git) that a project is kept in, and
// turns its output in to the data that the packaging commands need.
package scm

import (
	"context"
	"io"
	"time"
)

// Kind names a version-control backend.
type Kind string

const (
	Mercurial Kind = "hg"
	Git       Kind = "git"
)

// Kinds lists the supported backends.
var Kinds = []Kind{Mercurial, Git}

// ParseKind validates a backend name from the project configuration.
func ParseKind(str string) (Kind, error) {
	for _, kind := range Kinds {
		if str == string(kind) {
			return kind, nil
		}
	}
	return "", &UnknownBackendError{Name: str}
}

func (k Kind) String() string { return string(k) }

// VersionFile is the name of the file that records the revision a distribution was built from.
func (k Kind) VersionFile() string {
	return "." + string(k) + "_version"
}

// Backend is everything the packaging commands need from the version-control tool.  Every method
// that takes a context runs exactly one process.
type Backend interface {
	Kind() Kind
	// Dir is the top of the checkout; it is the working directory of every command.
	Dir() string

	// IsCheckout returns a *NotCheckoutError if Dir is not a checkout of this Kind.  It runs no
	// commands.
	IsCheckout() error

	// TrackedFiles lists every file tracked at the current revision, relative to Dir.
	TrackedFiles(ctx context.Context) ([]string, error)
	// LatestCommitTime returns the time of the newest commit.
	LatestCommitTime(ctx context.Context) (time.Time, error)
	// ShortRevision returns an abbreviated identifier of the current revision.
	ShortRevision(ctx context.Context) (string, error)
	// Status lists uncommitted changes to tracked files; an empty list means the checkout is
	// clean.
	Status(ctx context.Context) ([]string, error)
	// WriteChangeLog writes the project history to w.
	WriteChangeLog(ctx context.Context, w io.Writer) error
	// Export writes a clean copy of the current revision in to the directory dest.
	Export(ctx context.Context, dest string) error
}

// New returns the Backend of the given kind for the checkout at dir.
func New(kind Kind, dir string) (Backend, error) {
	switch kind {
	case Mercurial:
		return &hgBackend{tool{kind: kind, dir: dir}}, nil
	case Git:
		return &gitBackend{tool{kind: kind, dir: dir}}, nil
	default:
		return nil, &UnknownBackendError{Name: string(kind)}
	}
}

// Open is ParseKind followed by New.
func Open(name, dir string) (Backend, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, dir)
}
