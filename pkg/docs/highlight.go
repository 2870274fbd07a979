package docs

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"

	"github.com/datawire/scmdist/pkg/htmlutil"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "friendly"

// codeLanguage returns the language of a docutils code block (`<pre class="code LANG ...">`), or
// "" if the node isn't one or names no language.
func codeLanguage(node *html.Node) string {
	if node.Type != html.ElementNode || node.Data != "pre" {
		return ""
	}
	classes := htmlutil.Classes(node)
	if len(classes) < 2 || classes[0] != "code" || classes[1] == "literal-block" {
		return ""
	}
	return classes[1]
}

// Highlight colourises the code blocks of a page rendered by docutils, in place.  A block that
// names a language chroma doesn't know is an error, rather than being left plain, so that a typo
// in a directive doesn't go unnoticed.
func Highlight(filename, styleName string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	// x/net/html would turn an XML declaration in to a comment; keep it aside.
	var prolog []byte
	if bytes.HasPrefix(content, []byte("<?xml")) {
		if nl := bytes.IndexByte(content, '\n'); nl >= 0 {
			prolog, content = content[:nl+1], content[nl+1:]
		}
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return err
	}

	var blocks []*html.Node
	_ = htmlutil.VisitHTML(doc, func(node *html.Node) error {
		if codeLanguage(node) != "" {
			blocks = append(blocks, node)
		}
		return nil
	}, nil)
	if len(blocks) == 0 {
		return nil
	}

	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))

	for _, block := range blocks {
		lang := codeLanguage(block)
		lexer := lexers.Get(lang)
		if lexer == nil {
			return fmt.Errorf("no lexer for code-block language %q", lang)
		}
		lexer = chroma.Coalesce(lexer)
		iterator, err := lexer.Tokenise(nil, htmlutil.TextContent(block))
		if err != nil {
			return fmt.Errorf("tokenising %s code-block: %w", lang, err)
		}
		var highlighted strings.Builder
		if err := formatter.Format(&highlighted, style, iterator); err != nil {
			return err
		}
		nodes, err := html.ParseFragment(strings.NewReader(highlighted.String()), block)
		if err != nil {
			return err
		}
		for block.FirstChild != nil {
			block.RemoveChild(block.FirstChild)
		}
		for _, node := range nodes {
			block.AppendChild(node)
		}
	}

	var out bytes.Buffer
	out.Write(prolog)
	if err := html.Render(&out, doc); err != nil {
		return err
	}
	return os.WriteFile(filename, out.Bytes(), 0o644)
}
