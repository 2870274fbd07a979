package docs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/scmdist/pkg/docs"
	"github.com/datawire/scmdist/pkg/htmlutil"
	"github.com/datawire/scmdist/pkg/project"
	"github.com/datawire/scmdist/pkg/scm/scmtest"
)

// fakeTool writes a script that appends its argv to calls.log (in the working directory) and
// then runs body.
func fakeTool(t *testing.T, name, body string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\necho \"" + name + " $*\" >> calls.log\n" + body
	require.NoError(t, os.WriteFile(filename, []byte(script), 0o755))
	return filename
}

const fakeRst2html = `for last; do :; done
printf '<html><head></head><body><pre class="code python literal-block">def f():\n    pass\n</pre></body></html>' > "$last"
`

func readCalls(t *testing.T, dir string) []string {
	t.Helper()
	bs, err := os.ReadFile(filepath.Join(dir, "calls.log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(bs)), "\n")
}

func newBuilder(t *testing.T, caps project.Capabilities, files ...string) *docs.Builder {
	t.Helper()
	dir := t.TempDir()
	past := time.Now().Add(-time.Hour)
	for _, name := range files {
		filename := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0o755))
		require.NoError(t, os.WriteFile(filename, []byte("Title\n=====\n"), 0o644))
		require.NoError(t, os.Chtimes(filename, past, past))
	}
	return &docs.Builder{
		Project:      &project.Project{Name: "pyfoo", Dir: dir},
		Backend:      &scmtest.Backend{MDir: dir, Log: "log\n"},
		Capabilities: caps,
	}
}

func TestBuildRequiresDocutils(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	err := newBuilder(t, project.Capabilities{}, "README.rst").Build(ctx, false)
	var missing *project.MissingCapabilityError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, project.Docutils, missing.Capability)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	builder := newBuilder(t, project.Capabilities{
		project.Docutils: fakeTool(t, "rst2html", fakeRst2html),
	}, "README.rst", "NEWS.rst", "doc/usage.rst", "doc/notes.txt")

	sources, err := builder.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"NEWS.rst", "README.rst", "doc/usage.rst"}, sources)

	require.NoError(t, builder.Build(ctx, false))
	assert.Equal(t, []string{
		"rst2html --source-link --strict --generator --stylesheet-path=doc/docutils.css --link-stylesheet --syntax-highlight=none NEWS.rst NEWS.html",
		"rst2html --source-link --strict --generator --stylesheet-path=doc/docutils.css --link-stylesheet --syntax-highlight=none README.rst README.html",
		"rst2html --source-link --strict --generator --stylesheet-path=doc/docutils.css --link-stylesheet --syntax-highlight=none doc/usage.rst doc/usage.html",
	}, readCalls(t, builder.Project.Dir))

	changelog, err := os.ReadFile(builder.Project.Path("ChangeLog"))
	require.NoError(t, err)
	assert.Equal(t, "log\n", string(changelog))

	// Up to date: nothing is re-rendered.
	require.NoError(t, builder.Build(ctx, false))
	assert.Len(t, readCalls(t, builder.Project.Dir), 3)

	// Forced: everything is.
	require.NoError(t, builder.Build(ctx, true))
	assert.Len(t, readCalls(t, builder.Project.Dir), 6)
}

func TestBuildDryRun(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	builder := newBuilder(t, project.Capabilities{
		project.Docutils: fakeTool(t, "rst2html", fakeRst2html),
		project.Sphinx:   fakeTool(t, "sphinx-build", ""),
	}, "README.rst", "doc/source/index.rst")
	builder.DryRun = true

	require.NoError(t, builder.Build(ctx, true))
	assert.Nil(t, readCalls(t, builder.Project.Dir))
	for _, name := range []string{"README.html", "doc/html", "ChangeLog"} {
		_, err := os.Stat(builder.Project.Path(name))
		assert.True(t, errors.Is(err, os.ErrNotExist), name)
	}
}

func TestBuildSphinx(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	rst2html := fakeTool(t, "rst2html", fakeRst2html)

	builder := newBuilder(t, project.Capabilities{project.Docutils: rst2html}, "doc/source/index.rst")
	err := builder.Build(ctx, false)
	var missing *project.MissingCapabilityError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, project.Sphinx, missing.Capability)

	builder = newBuilder(t, project.Capabilities{
		project.Docutils: rst2html,
		project.Sphinx:   fakeTool(t, "sphinx-build", ""),
	}, "doc/source/index.rst")
	require.NoError(t, builder.Build(ctx, false))
	assert.Equal(t, []string{
		"sphinx-build -b html -d doc/source/.doctrees doc/source doc/html",
	}, readCalls(t, builder.Project.Dir))
	info, err := os.Stat(builder.Project.Path("doc/html"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBuildToolFailure(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	builder := newBuilder(t, project.Capabilities{
		project.Docutils: fakeTool(t, "rst2html", "exit 3\n"),
	}, "README.rst")
	err := builder.Build(ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering README.rst")
}

func TestHighlight(t *testing.T) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "README.html")
	require.NoError(t, os.WriteFile(filename, []byte(`<?xml version="1.0" encoding="utf-8" ?>
<html><head></head><body>
<pre class="code python literal-block">def f():
    return &quot;x&quot; &lt; 1
</pre>
<pre class="literal-block">plain &amp; simple</pre>
</body></html>`), 0o644))
	require.NoError(t, docs.Highlight(filename, ""))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `<?xml version="1.0" encoding="utf-8" ?>`+"\n"))

	doc, err := html.Parse(strings.NewReader(string(content)))
	require.NoError(t, err)
	var pres []*html.Node
	spans := 0
	_ = htmlutil.VisitHTML(doc, func(node *html.Node) error {
		if node.Type == html.ElementNode && node.Data == "pre" {
			pres = append(pres, node)
		}
		if node.Type == html.ElementNode && node.Data == "span" {
			if _, ok := htmlutil.GetAttr(node, "", "class"); ok {
				spans++
			}
		}
		return nil
	}, nil)
	require.Len(t, pres, 2)
	assert.Equal(t, "def f():\n    return \"x\" < 1\n", htmlutil.TextContent(pres[0]))
	assert.Equal(t, "plain & simple", htmlutil.TextContent(pres[1]))
	assert.Greater(t, spans, 0)
}

func TestHighlightUnknownLexer(t *testing.T) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "README.html")
	original := `<html><head></head><body><pre class="code pythn literal-block">x</pre></body></html>`
	require.NoError(t, os.WriteFile(filename, []byte(original), 0o644))
	assert.EqualError(t, docs.Highlight(filename, ""), `no lexer for code-block language "pythn"`)
	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestNewer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.rst")
	dest := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	newer, err := docs.Newer(src, dest)
	require.NoError(t, err)
	assert.True(t, newer)

	require.NoError(t, os.WriteFile(dest, nil, 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))
	newer, err = docs.Newer(src, dest)
	require.NoError(t, err)
	assert.False(t, newer)

	_, err = docs.Newer(filepath.Join(dir, "missing.rst"), dest)
	assert.Error(t, err)

	assert.Equal(t, "doc/usage.html", docs.HTMLName("doc/usage.rst"))
}
