package fsutil_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/scmdist/pkg/fsutil"
)

type member struct {
	Name    string
	Uname   string
	ModTime time.Time
	Content string
}

func listArchive(t *testing.T, archive interface {
	Uncompressed() (io.ReadCloser, error)
}) []member {
	t.Helper()
	reader, err := archive.Uncompressed()
	require.NoError(t, err)
	defer reader.Close()
	var ret []member
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tarReader)
		require.NoError(t, err)
		ret = append(ret, member{
			Name:    header.Name,
			Uname:   header.Uname,
			ModTime: header.ModTime.UTC(),
			Content: string(content),
		})
	}
	return ret
}

func TestArchiveFromFileReferences(t *testing.T) {
	t.Parallel()
	clamp := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	archive, err := fsutil.ArchiveFromFileReferences([]fsutil.FileReference{
		fsutil.NewInMemFile("pkg-1.0/b/x", []byte("x"), 0o644, old),
		fsutil.NewInMemFile("pkg-1.0/a-b", []byte("ab"), 0o644, future),
		fsutil.NewInMemFile("pkg-1.0/a/y", []byte("y"), 0o644, old),
		fsutil.NewInMemFile("pkg-1.0/a/y", []byte("dup"), 0o644, old),
	}, clamp, fsutil.Root)
	require.NoError(t, err)

	assert.Equal(t, []member{
		{Name: "pkg-1.0/", Uname: "root", ModTime: clamp},
		{Name: "pkg-1.0/a/", Uname: "root", ModTime: clamp},
		{Name: "pkg-1.0/a/y", Uname: "root", ModTime: old, Content: "y"},
		{Name: "pkg-1.0/a-b", Uname: "root", ModTime: clamp, Content: "ab"},
		{Name: "pkg-1.0/b/", Uname: "root", ModTime: clamp},
		{Name: "pkg-1.0/b/x", Uname: "root", ModTime: old, Content: "x"},
	}, listArchive(t, archive))
}

func TestWriteArchiveRoundTrip(t *testing.T) {
	t.Parallel()
	clamp := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	build := func(modTime time.Time) []fsutil.FileReference {
		return []fsutil.FileReference{
			fsutil.NewInMemFile("foo-1.0/README.rst", []byte("hello\n"), 0o644, modTime),
			fsutil.NewInMemFile("foo-1.0/foo/__init__.py", []byte(""), 0o644, modTime),
		}
	}
	a, err := fsutil.ArchiveFromFileReferences(build(clamp.Add(-time.Hour)), clamp, fsutil.Root)
	require.NoError(t, err)
	b, err := fsutil.ArchiveFromFileReferences(build(clamp.Add(-2*time.Hour)), clamp, fsutil.Root)
	require.NoError(t, err)

	diff, err := fsutil.DiffArchives(a, b)
	require.NoError(t, err)
	assert.Empty(t, diff)

	c, err := fsutil.ArchiveFromFileReferences([]fsutil.FileReference{
		fsutil.NewInMemFile("foo-1.0/README.rst", []byte("HELLO\n"), 0o644, clamp),
		fsutil.NewInMemFile("foo-1.0/foo/__init__.py", []byte(""), 0o644, clamp),
	}, clamp, fsutil.Root)
	require.NoError(t, err)
	diff, err = fsutil.DiffArchives(a, c)
	require.NoError(t, err)
	assert.Equal(t, `member "foo-1.0/README.rst": content differs`, diff)

	dir := t.TempDir()
	for _, format := range []fsutil.Format{fsutil.FormatGzTar, fsutil.FormatTar} {
		filename := filepath.Join(dir, "dist", "foo-1.0"+format.Ext())
		require.NoError(t, fsutil.WriteArchiveFile(a, format, filename))
		reopened, err := fsutil.OpenArchive(filename)
		require.NoError(t, err)
		diff, err := fsutil.DiffArchives(a, reopened)
		require.NoError(t, err)
		assert.Empty(t, diff, format)
	}

	gz, err := os.ReadFile(filepath.Join(dir, "dist", "foo-1.0.tar.gz"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(gz, []byte{0x1f, 0x8b}))

	var again bytes.Buffer
	require.NoError(t, fsutil.WriteArchive(a, fsutil.FormatGzTar, &again))
	assert.Equal(t, gz, again.Bytes())

	assert.Error(t, fsutil.WriteArchive(a, fsutil.Format("zip"), io.Discard))
}

func TestParseFormats(t *testing.T) {
	t.Parallel()
	formats, err := fsutil.ParseFormats("gztar, tar")
	require.NoError(t, err)
	assert.Equal(t, []fsutil.Format{fsutil.FormatGzTar, fsutil.FormatTar}, formats)

	_, err = fsutil.ParseFormats("gztar,bztar")
	assert.EqualError(t, err, `unknown archive format "bztar" (supported formats: gztar, tar)`)
}

func TestExtractArchive(t *testing.T) {
	t.Parallel()
	clamp := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	archive, err := fsutil.ArchiveFromFileReferences([]fsutil.FileReference{
		fsutil.NewInMemFile("a/b/c.txt", []byte("c"), 0o644, clamp),
		fsutil.NewInMemFile("d.txt", []byte("d"), 0o600, clamp),
	}, clamp, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fsutil.WriteArchive(archive, fsutil.FormatTar, &buf))
	dest := t.TempDir()
	require.NoError(t, fsutil.ExtractArchive(&buf, dest))

	content, err := os.ReadFile(filepath.Join(dest, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "c", string(content))
	info, err := os.Stat(filepath.Join(dest, "d.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var evil bytes.Buffer
	tarWriter := tar.NewWriter(&evil)
	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Name:     "../evil",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     1,
	}))
	_, err = tarWriter.Write([]byte("!"))
	require.NoError(t, err)
	require.NoError(t, tarWriter.Close())
	assert.EqualError(t, fsutil.ExtractArchive(&evil, dest),
		`archive member "../evil" escapes the destination directory`)
}
