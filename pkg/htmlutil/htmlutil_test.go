package htmlutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/datawire/scmdist/pkg/htmlutil"
)

func TestPreBlocks(t *testing.T) {
	t.Parallel()
	doc, err := html.Parse(strings.NewReader(`<html><body>` +
		`<p class="first">intro</p>` +
		`<pre class="code python literal-block">x = <b>1</b>
</pre>` +
		`<pre>plain</pre>` +
		`</body></html>`))
	require.NoError(t, err)

	var blocks []string
	var classes [][]string
	err = htmlutil.VisitHTML(doc, func(node *html.Node) error {
		if node.Type == html.ElementNode && node.Data == "pre" && htmlutil.HasClass(node, "code") {
			blocks = append(blocks, htmlutil.TextContent(node))
			classes = append(classes, htmlutil.Classes(node))
		}
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x = 1\n"}, blocks)
	assert.Equal(t, [][]string{{"code", "python", "literal-block"}}, classes)
}

func TestGetAttr(t *testing.T) {
	t.Parallel()
	node := &html.Node{
		Type: html.ElementNode,
		Data: "a",
		Attr: []html.Attribute{{Key: "href", Val: "NEWS.html"}},
	}
	val, ok := htmlutil.GetAttr(node, "", "href")
	assert.True(t, ok)
	assert.Equal(t, "NEWS.html", val)
	_, ok = htmlutil.GetAttr(node, "", "class")
	assert.False(t, ok)
	_, ok = htmlutil.GetAttr(nil, "", "href")
	assert.False(t, ok)
	assert.False(t, htmlutil.HasClass(node, "code"))
}
