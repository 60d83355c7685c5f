package treefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/internal/logging"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/treefile"
	"github.com/vango-dev/tessera/pkg/vtest"
)

func testOptions() *markup.Options {
	return markup.NewOptions(markup.Options{Logger: logging.NewNop()})
}

func render(t *testing.T, doc *treefile.Document) string {
	t.Helper()
	html, err := markup.Render(doc.Node)
	require.NoError(t, err)
	return html
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestParseBasicTree(t *testing.T) {
	doc, err := treefile.Parse([]byte(`
tag: main
id: top
class: page wide
attrs:
  role: main
  hidden: false
children:
  - tag: h1
    text: Hello & welcome
  - "plain <text>"
`), "page.yaml", testOptions())
	require.NoError(t, err)

	assert.Equal(t, "page.html", doc.Path)
	assert.Equal(t,
		`<main class="page wide" id="top" role="main"><h1>Hello &amp; welcome</h1>plain &lt;text&gt;</main>`,
		render(t, doc))
}

func TestParseExplicitPath(t *testing.T) {
	doc, err := treefile.Parse([]byte("path: docs/index.html\ntag: p\ntext: x\n"), "a.yaml", testOptions())
	require.NoError(t, err)
	assert.Equal(t, "docs/index.html", doc.Path)
	assert.Equal(t, "<p>x</p>", render(t, doc))
}

func TestParseStyleDataActionsSrc(t *testing.T) {
	doc, err := treefile.Parse([]byte(`
tag: div
style: "color: red"
data: {role: hero}
actions: {click: save}
children:
  - tag: img
    src: "javascript:alert(1)"
  - tag: img
    src: /logo.png
`), "x.yaml", testOptions())
	require.NoError(t, err)

	nodes := vtest.ParseFragment(t, render(t, doc))
	div := vtest.Find(nodes, "div")
	require.NotNil(t, div)
	for key, want := range map[string]string{"style": "color: red", "data-role": "hero", "data-on-click": "save"} {
		got, ok := vtest.AttrOf(div, key)
		assert.True(t, ok, "missing %s", key)
		assert.Equal(t, want, got, key)
	}

	unsafe, safe := div.FirstChild, div.LastChild
	_, ok := vtest.AttrOf(unsafe, "src")
	assert.False(t, ok, "javascript: src should be dropped")
	src, _ := vtest.AttrOf(safe, "src")
	assert.Equal(t, "/logo.png", src)
}

func TestParseStack(t *testing.T) {
	doc, err := treefile.Parse([]byte(`
tag: nav
stack: {direction: row, spacing: "4", align: center}
children:
  - {tag: a, text: One}
  - {tag: a, text: Two}
`), "nav.yaml", testOptions())
	require.NoError(t, err)

	nav := vtest.Find(vtest.ParseFragment(t, render(t, doc)), "nav")
	require.NotNil(t, nav)
	classes := vtest.Classes(nav)
	for _, c := range []string{"flex", "flex-row", "items-center", "space-x-4"} {
		assert.Contains(t, classes, c)
	}
	assert.Equal(t, "OneTwo", vtest.Text(nav))
}

func TestParseGrid(t *testing.T) {
	doc, err := treefile.Parse([]byte(`
grid:
  columnsAt: {base: 1, md: 3}
  spacing: 2
children: [a, b, c]
`), "g.yaml", testOptions())
	require.NoError(t, err)

	n := doc.Node
	assert.Equal(t, "div", n.Tag())
	assert.True(t, n.HasClass("grid"))
	assert.True(t, n.HasClass("grid-cols-1"))
	assert.True(t, n.HasClass("md:grid-cols-3"))
	assert.True(t, n.HasClass("gap-2"))
}

func TestParseMarkdown(t *testing.T) {
	doc, err := treefile.Parse([]byte(`
tag: article
markdown: |
  # Title
  <script>alert(1)</script>
`), "post.yaml", testOptions())
	require.NoError(t, err)

	html := render(t, doc)
	assert.Contains(t, html, "<article>")
	assert.Contains(t, html, "Title</h1>")
	assert.NotContains(t, html, "<script")
}

func TestParseMarkdownOnly(t *testing.T) {
	doc, err := treefile.Parse([]byte("markdown: \"*hi*\"\n"), "m.yaml", testOptions())
	require.NoError(t, err)
	assert.Equal(t, markup.KindRaw, doc.Node.Kind())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{name: "unknown key", src: "tag: div\nbogus: 1\n", line: 2},
		{name: "children not a list", src: "tag: div\nchildren: x\n", line: 2},
		{name: "invalid tag", src: "tag: \"1bad\"\n", line: 1},
		{name: "nested error", src: "tag: ul\nchildren:\n  - tag: li\n    attrs: [x]\n", line: 4},
		{name: "text with children", src: "tag: p\ntext: a\nchildren: [b]\n", line: 2},
		{name: "stack and grid", src: "stack: {}\ngrid: {}\n", line: 2},
		{name: "bad stack option", src: "stack: {gutter: 4}\n", line: 1},
		{name: "not a mapping", src: "- a\n- b\n", line: 1},
		{name: "syntax", src: "tag: div\n\tchildren: x\n", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := treefile.Parse([]byte(tt.src), "doc.yaml", testOptions())
			require.Error(t, err)

			var e *errors.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, "E201", e.Code)
			require.NotNil(t, e.Location)
			assert.Equal(t, "doc.yaml", e.Location.File)
			assert.Equal(t, tt.line, e.Location.Line)
		})
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := treefile.Load(filepath.Join(t.TempDir(), "missing.yaml"), testOptions())
	require.Error(t, err)
	assert.Equal(t, "E200", errors.CodeOf(err))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.yaml", "tag: h1\ntext: Home\n")
	writeFile(t, dir, "blog/first.yml", "tag: article\ntext: First\n")
	writeFile(t, dir, "custom.yaml", "path: about/index.html\ntag: p\ntext: About\n")
	writeFile(t, dir, "notes.txt", "ignored")

	docs, err := treefile.LoadDir(dir, testOptions())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	paths := map[string]string{}
	for _, d := range docs {
		paths[d.Path] = render(t, d)
	}
	assert.Equal(t, map[string]string{
		"blog/first.html":  "<article>First</article>",
		"about/index.html": "<p>About</p>",
		"index.html":       "<h1>Home</h1>",
	}, paths)
}

func TestLoadDirStopsOnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "tag: p\n")
	bad := writeFile(t, dir, "b.yaml", "tag: p\nnope: 1\n")

	_, err := treefile.LoadDir(dir, testOptions())
	require.Error(t, err)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, bad, e.Location.File)
	assert.NotEmpty(t, e.Context, "expected source lines around the error")
}
