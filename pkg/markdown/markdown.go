// Package markdown turns Markdown into sanitized trusted-markup nodes.
//
// Markdown is rendered with goldmark (GitHub flavoured, raw HTML omitted)
// and the result is cleaned by the security policy before it becomes a
// markup.Raw node, so authored content can never inject script.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/security"
)

// Sanitizer cleans untrusted HTML. *security.Policy implements it.
type Sanitizer interface {
	SanitizeHTML(raw string) string
}

// Renderer converts Markdown to nodes.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer Sanitizer
}

// New creates a Renderer. A nil sanitizer uses security.Default().
func New(s Sanitizer) *Renderer {
	if s == nil {
		s = security.Default()
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		sanitizer: s,
	}
}

// For returns a Renderer using the validator in opts when it can sanitize
// HTML, and the default policy otherwise.
func For(opts *markup.Options) *Renderer {
	if opts != nil {
		if s, ok := opts.Validator.(Sanitizer); ok {
			return New(s)
		}
	}
	return New(nil)
}

// HTML renders src and sanitizes the output.
func (r *Renderer) HTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", errors.New("E201").WithDetail("markdown: " + err.Error()).Wrap(err)
	}
	return r.sanitizer.SanitizeHTML(buf.String()), nil
}

// Node renders src into a trusted markup node carrying opts. A nil opts
// uses markup.DefaultOptions.
func (r *Renderer) Node(opts *markup.Options, src string) (*markup.Node, error) {
	html, err := r.HTML([]byte(src))
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = markup.DefaultOptions()
	}
	return opts.Raw(html), nil
}

var defaultRenderer = New(nil)

// Render renders src with the default policy.
func Render(src string) (*markup.Node, error) {
	return defaultRenderer.Node(nil, src)
}
