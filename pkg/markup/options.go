package markup

import (
	"log/slog"

	"github.com/vango-dev/tessera/pkg/security"
)

// DefaultMaxDepth is the block nesting limit used when Options.MaxDepth is
// not set.
const DefaultMaxDepth = 50

// Validator checks untrusted fragments before they reach a node.
// *security.Policy implements it.
type Validator interface {
	ValidateStyle(raw string) (string, error)
	SanitizeDataAttributes(attrs map[string]string) map[string]string
	ValidateImageSrc(url string, opts security.ImageOptions) (string, bool)
	ValidateCSSToken(token string) bool
	ValidAttributeName(name string) bool
	ValidateURL(raw string) (string, bool)
}

// Observer receives notifications about dropped input and depth failures.
type Observer interface {
	Rejected(code, tag string)
	DepthExceeded(tag string, depth int)
}

// Options configures node creation and rendering. An Options value is
// shared by every node and context created from it and must not be mutated
// after it is passed to NewOptions.
type Options struct {
	// MaxDepth bounds block nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// Host provides escaping, action resolution and the CSRF token to
	// blocks. Nil means DefaultHost.
	Host Host

	// Validator checks styles, URLs and attributes. Nil means
	// security.Default().
	Validator Validator

	// Logger receives rejection and failure logs. Nil means slog.Default().
	Logger *slog.Logger

	// HideActionAttrs suppresses the data-on-<event> attributes emitted for
	// action bindings.
	HideActionAttrs bool

	// Observer is notified of rejections and depth failures. Optional.
	Observer Observer
}

// NewOptions returns a normalized copy of o.
func NewOptions(o Options) *Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Validator == nil {
		o.Validator = security.Default()
	}
	p := &o
	if p.Host == nil {
		p.Host = DefaultHost{opts: p}
	}
	return p
}

var defaultOptions = NewOptions(Options{})

// DefaultOptions returns the options used by package-level factories.
func DefaultOptions() *Options {
	return defaultOptions
}

// Log returns the configured logger, or slog.Default.
func (o *Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Options) rejected(code, tag, reason string, args ...any) {
	attrs := append([]any{"code", code, "tag", tag, "reason", reason}, args...)
	o.Log().Warn("input rejected", attrs...)
	if o.Observer != nil {
		o.Observer.Rejected(code, tag)
	}
}

// WithHost returns a copy of o that uses h. Use it to give a single render
// its own host, for example one carrying a per-request CSRF token.
func (o *Options) WithHost(h Host) *Options {
	cp := *o
	if h == nil {
		h = DefaultHost{opts: &cp}
	}
	cp.Host = h
	return &cp
}

// Create builds an element node carrying o. It does not register the node
// anywhere.
func (o *Options) Create(tag string, args ...any) *Node {
	return newElement(o, tag, args)
}

// Text creates an escaped text node carrying o.
func (o *Options) Text(s string) *Node {
	return newLeaf(o, KindText, s)
}

// Raw creates a trusted markup node carrying o.
func (o *Options) Raw(html string) *Node {
	return newLeaf(o, KindRaw, html)
}
