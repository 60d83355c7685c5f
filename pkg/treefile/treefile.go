// Package treefile loads node trees from YAML documents.
//
// A document is a mapping describing one node. Children may be further
// mappings or plain strings, which become text nodes:
//
//	path: index.html
//	tag: main
//	class: page
//	children:
//	  - tag: h1
//	    text: Welcome
//	  - stack: {direction: row, spacing: 4, align: center}
//	    children:
//	      - tag: a
//	        attrs: {href: /docs}
//	        text: Docs
//	      - "plain text"
//	  - markdown: |
//	      Some *emphasis*.
//
// Node keys: tag, id, text, markdown, class, attrs, style, data, actions,
// src, stack, grid, children. The top-level mapping may also set path, the
// export path of the page. Unknown keys and malformed values are E201
// errors carrying the file, line and column.
package treefile

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/layout"
	"github.com/vango-dev/tessera/pkg/markdown"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/security"
)

// Document is a loaded tree.
type Document struct {
	// Source is the file the document was read from.
	Source string

	// Path is the slash-separated export path of the page.
	Path string

	// Node is the root node.
	Node *markup.Node
}

// Load reads and builds the document at path. A missing file is E200.
func Load(path string, opts *markup.Options) (*Document, error) {
	l, err := load(path, opts)
	if err != nil {
		return nil, err
	}
	return l.Document, nil
}

func load(path string, opts *markup.Options) (*loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E200").WithDetail(path + " does not exist")
		}
		return nil, errors.New("E201").WithDetail(err.Error()).Wrap(err)
	}
	return parse(data, path, opts)
}

// LoadDir loads every .yaml and .yml file under dir, sorted by path. A
// document without an explicit path exports to its relative file path with
// an .html extension.
func LoadDir(dir string, opts *markup.Options) ([]*Document, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E200").WithDetail(dir + " does not exist")
		}
		return nil, errors.New("E201").WithDetail(err.Error()).Wrap(err)
	}
	sort.Strings(files)

	docs := make([]*Document, 0, len(files))
	for _, f := range files {
		doc, err := load(f, opts)
		if err != nil {
			return nil, err
		}
		if doc.explicitPath == "" {
			rel, err := filepath.Rel(dir, f)
			if err != nil {
				return nil, errors.New("E201").Wrap(err)
			}
			doc.Path = htmlPath(filepath.ToSlash(rel))
		}
		docs = append(docs, doc.Document)
	}
	return docs, nil
}

type loaded struct {
	*Document
	explicitPath string
}

// Parse builds a document from YAML. source names the document in errors;
// a nil opts uses markup.DefaultOptions.
func Parse(data []byte, source string, opts *markup.Options) (*Document, error) {
	l, err := parse(data, source, opts)
	if err != nil {
		return nil, err
	}
	return l.Document, nil
}

func parse(data []byte, source string, opts *markup.Options) (*loaded, error) {
	if opts == nil {
		opts = markup.DefaultOptions()
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New("E201").
			WithDetail(err.Error()).
			WithLocation(source, syntaxLine(err), 0).
			Wrap(err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("E201").WithDetail("empty document").WithLocation(source, 1, 1)
	}

	b := &builder{source: source, opts: opts}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, b.errAt(top, "document must be a mapping, got %s", kindName(top))
	}

	var explicit string
	if v := lookup(top, "path"); v != nil {
		if v.Kind != yaml.ScalarNode || v.Value == "" {
			return nil, b.errAt(v, "path must be a non-empty string")
		}
		explicit = v.Value
	}

	n, err := b.node(top, true)
	if err != nil {
		return nil, err
	}

	p := explicit
	if p == "" {
		p = htmlPath(filepath.Base(source))
	}
	return &loaded{
		Document:     &Document{Source: source, Path: p, Node: n},
		explicitPath: explicit,
	}, nil
}

var syntaxLinePattern = regexp.MustCompile(`^yaml: line (\d+):`)

// syntaxLine extracts the line number from a yaml.v3 syntax error.
func syntaxLine(err error) int {
	m := syntaxLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	line, _ := strconv.Atoi(m[1])
	return line
}

func htmlPath(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".html"
}

type builder struct {
	source string
	opts   *markup.Options
	md     *markdown.Renderer
}

func (b *builder) errAt(n *yaml.Node, format string, args ...any) *errors.Error {
	return errors.New("E201").
		WithDetailf(format, args...).
		WithLocation(b.source, n.Line, n.Column)
}

var nodeKeys = map[string]bool{
	"tag": true, "id": true, "text": true, "markdown": true, "class": true,
	"attrs": true, "style": true, "data": true, "actions": true, "src": true,
	"stack": true, "grid": true, "children": true,
}

// node builds one mapping. Keys are applied in a fixed order regardless of
// their order in the document.
func (b *builder) node(m *yaml.Node, top bool) (*markup.Node, error) {
	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if top && k.Value == "path" {
			continue
		}
		if !nodeKeys[k.Value] {
			return nil, b.errAt(k, "unknown key %q", k.Value)
		}
		if _, dup := fields[k.Value]; dup {
			return nil, b.errAt(k, "duplicate key %q", k.Value)
		}
		fields[k.Value] = v
	}

	if fields["stack"] != nil && fields["grid"] != nil {
		return nil, b.errAt(fields["grid"], "stack and grid cannot be combined")
	}

	tag, err := b.scalar(fields["tag"], "tag")
	if err != nil {
		return nil, err
	}

	children, err := b.children(fields["children"])
	if err != nil {
		return nil, err
	}

	if v := fields["markdown"]; v != nil {
		md, err := b.markdown(v)
		if err != nil {
			return nil, err
		}
		if tag == "" && fields["stack"] == nil && fields["grid"] == nil && len(fields) == 1 {
			return md, nil
		}
		children = append([]*markup.Node{md}, children...)
	}

	var n *markup.Node
	switch {
	case fields["stack"] != nil:
		n, err = b.stack(fields["stack"], tag, children)
	case fields["grid"] != nil:
		n, err = b.grid(fields["grid"], tag, children)
	default:
		if tag == "" {
			tag = "div"
		}
		if !markup.ValidTag(tag) {
			return nil, b.errAt(fields["tag"], "invalid tag %q", tag)
		}
		args := make([]any, 0, 2)
		if len(children) > 0 {
			args = append(args, children)
		}
		n = b.opts.Create(tag, args...)
	}
	if err != nil {
		return nil, err
	}

	if v := fields["text"]; v != nil {
		if len(children) > 0 {
			return nil, b.errAt(v, "text cannot be combined with children or markdown")
		}
		s, err := b.scalar(v, "text")
		if err != nil {
			return nil, err
		}
		n.SetText(s)
	}

	return n, b.apply(n, fields)
}

func (b *builder) apply(n *markup.Node, fields map[string]*yaml.Node) error {
	if v := fields["id"]; v != nil {
		s, err := b.scalar(v, "id")
		if err != nil {
			return err
		}
		n.SetID(s)
	}

	if v := fields["class"]; v != nil {
		classes, err := b.classes(v)
		if err != nil {
			return err
		}
		n.AddClass(classes...)
	}

	if v := fields["attrs"]; v != nil {
		if v.Kind != yaml.MappingNode {
			return b.errAt(v, "attrs must be a mapping, got %s", kindName(v))
		}
		for i := 0; i+1 < len(v.Content); i += 2 {
			k, val := v.Content[i], v.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return b.errAt(val, "attribute %q must be a scalar", k.Value)
			}
			var decoded any
			if err := val.Decode(&decoded); err != nil {
				return b.errAt(val, "attribute %q: %v", k.Value, err)
			}
			n.SetAttribute(k.Value, decoded)
		}
	}

	if v := fields["style"]; v != nil {
		s, err := b.scalar(v, "style")
		if err != nil {
			return err
		}
		n.SetStyle(s)
	}

	if v := fields["data"]; v != nil {
		data, err := b.stringMap(v, "data")
		if err != nil {
			return err
		}
		n.SetData(data)
	}

	if v := fields["actions"]; v != nil {
		if v.Kind != yaml.MappingNode {
			return b.errAt(v, "actions must be a mapping of event to handler id")
		}
		for i := 0; i+1 < len(v.Content); i += 2 {
			k, val := v.Content[i], v.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return b.errAt(val, "handler for %q must be a string", k.Value)
			}
			n.BindAction(k.Value, val.Value)
		}
	}

	if v := fields["src"]; v != nil {
		s, err := b.scalar(v, "src")
		if err != nil {
			return err
		}
		n.SetSrc(s, security.ImageOptions{})
	}
	return nil
}

func (b *builder) children(v *yaml.Node) ([]*markup.Node, error) {
	if v == nil {
		return nil, nil
	}
	if v.Kind != yaml.SequenceNode {
		return nil, b.errAt(v, "children must be a list, got %s", kindName(v))
	}
	out := make([]*markup.Node, 0, len(v.Content))
	for _, c := range v.Content {
		switch c.Kind {
		case yaml.ScalarNode:
			out = append(out, b.opts.Text(c.Value))
		case yaml.MappingNode:
			n, err := b.node(c, false)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		default:
			return nil, b.errAt(c, "child must be a mapping or a string, got %s", kindName(c))
		}
	}
	return out, nil
}

func (b *builder) markdown(v *yaml.Node) (*markup.Node, error) {
	src, err := b.scalar(v, "markdown")
	if err != nil {
		return nil, err
	}
	if b.md == nil {
		b.md = markdown.For(b.opts)
	}
	n, err := b.md.Node(b.opts, src)
	if err != nil {
		return nil, b.errAt(v, "%v", err)
	}
	return n, nil
}

func (b *builder) stack(v *yaml.Node, tag string, children []*markup.Node) (*markup.Node, error) {
	m, err := b.mapping(v, "stack")
	if err != nil {
		return nil, err
	}
	opts, err := layout.StackOptionsFromMap(m)
	if err != nil {
		return nil, b.errAt(v, "%v", err)
	}
	if opts.Tag == "" {
		opts.Tag = tag
	}
	opts.Builder = b.opts
	return layout.Stack("", opts, children...), nil
}

func (b *builder) grid(v *yaml.Node, tag string, children []*markup.Node) (*markup.Node, error) {
	m, err := b.mapping(v, "grid")
	if err != nil {
		return nil, err
	}
	opts, err := layout.GridOptionsFromMap(m)
	if err != nil {
		return nil, b.errAt(v, "%v", err)
	}
	if opts.Tag == "" {
		opts.Tag = tag
	}
	opts.Builder = b.opts
	return layout.Grid(opts, children...), nil
}

func (b *builder) scalar(v *yaml.Node, field string) (string, error) {
	if v == nil {
		return "", nil
	}
	if v.Kind != yaml.ScalarNode {
		return "", b.errAt(v, "%s must be a string, got %s", field, kindName(v))
	}
	return v.Value, nil
}

// classes accepts "a b" or [a, b].
func (b *builder) classes(v *yaml.Node) ([]string, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		return strings.Fields(v.Value), nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, c := range v.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, b.errAt(c, "class entries must be strings")
			}
			out = append(out, c.Value)
		}
		return out, nil
	}
	return nil, b.errAt(v, "class must be a string or a list, got %s", kindName(v))
}

func (b *builder) stringMap(v *yaml.Node, field string) (map[string]string, error) {
	if v.Kind != yaml.MappingNode {
		return nil, b.errAt(v, "%s must be a mapping, got %s", field, kindName(v))
	}
	out := make(map[string]string, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, b.errAt(val, "%s.%s must be a scalar", field, k.Value)
		}
		out[k.Value] = val.Value
	}
	return out, nil
}

func (b *builder) mapping(v *yaml.Node, field string) (map[string]any, error) {
	if v.Kind != yaml.MappingNode {
		return nil, b.errAt(v, "%s must be a mapping, got %s", field, kindName(v))
	}
	var m map[string]any
	if err := v.Decode(&m); err != nil {
		return nil, b.errAt(v, "%s: %v", field, err)
	}
	return m, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}
