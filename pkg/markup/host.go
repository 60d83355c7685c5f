package markup

import "strings"

// Host provides environment capabilities to blocks. A Context forwards to
// its host explicitly; nothing is looked up dynamically.
type Host interface {
	// Escape escapes text for element content.
	Escape(text string) string

	// SafeJoin escapes each part and concatenates the results.
	SafeJoin(parts []string) string

	// WrapTag wraps trusted inner markup in an element. Attributes follow
	// the rules of Node.SetAttribute; an invalid tag returns inner as is.
	WrapTag(tag, inner string, attrs Attrs) string

	// ResolveAction registers the callback behind a handler id.
	ResolveAction(handlerID string, callback any)

	// CSRFToken returns the token for the current request, or "".
	CSRFToken() string
}

// DefaultHost escapes and wraps markup, drops action callbacks and has no
// CSRF token. NewOptions binds the DefaultHost it installs to those
// options; the zero value validates with DefaultOptions.
type DefaultHost struct {
	opts *Options
}

var _ Host = DefaultHost{}

func (DefaultHost) Escape(text string) string {
	return EscapeHTML(text)
}

func (DefaultHost) SafeJoin(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(EscapeHTML(p))
	}
	return b.String()
}

func (h DefaultHost) WrapTag(tag, inner string, attrs Attrs) string {
	opts := h.opts
	if opts == nil {
		opts = defaultOptions
	}
	return opts.wrapTag(tag, inner, attrs)
}

func (DefaultHost) ResolveAction(string, any) {}

func (DefaultHost) CSRFToken() string { return "" }

// wrapTag wraps inner in tag with attrs validated by o.
func (o *Options) wrapTag(tag, inner string, attrs Attrs) string {
	if !ValidTag(tag) {
		return inner
	}
	n := o.attrNode(tag, attrs)

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)
	n.writeAttributes(&b, o)
	b.WriteByte('>')
	if IsVoid(tag) {
		return b.String()
	}
	b.WriteString(inner)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return b.String()
}

// attrNode applies attrs to a detached element through SetAttribute, in
// sorted key order. Rejected attributes are logged and left out.
func (o *Options) attrNode(tag string, attrs Attrs) *Node {
	n := newElement(o, tag, nil)
	for _, key := range attrs.sortedKeys() {
		n.SetAttribute(key, attrs[key])
	}
	return n
}

// safeAttrs returns attrs with every entry the validator rejects removed.
func (o *Options) safeAttrs(tag string, attrs Attrs) Attrs {
	if len(attrs) == 0 {
		return attrs
	}
	n := o.attrNode(tag, attrs)
	out := make(Attrs, len(n.attrs.keys)+1)
	if len(n.classes.names) > 0 {
		out["class"] = strings.Join(n.classes.names, " ")
	}
	for _, k := range n.attrs.keys {
		out[k] = n.attrs.vals[k]
	}
	return out
}

// ActionRegistry is a Host that records action callbacks by handler id and
// carries a CSRF token. It is used for one render at a time.
type ActionRegistry struct {
	DefaultHost
	token     string
	callbacks map[string]any
	order     []string
}

// NewActionRegistry returns an ActionRegistry carrying csrfToken.
func NewActionRegistry(csrfToken string) *ActionRegistry {
	return &ActionRegistry{
		token:     csrfToken,
		callbacks: make(map[string]any),
	}
}

// ResolveAction records callback under handlerID. The latest callback for
// an id wins.
func (r *ActionRegistry) ResolveAction(handlerID string, callback any) {
	if _, ok := r.callbacks[handlerID]; !ok {
		r.order = append(r.order, handlerID)
	}
	r.callbacks[handlerID] = callback
}

// CSRFToken returns the token given to NewActionRegistry.
func (r *ActionRegistry) CSRFToken() string {
	return r.token
}

// Lookup returns the callback registered for handlerID.
func (r *ActionRegistry) Lookup(handlerID string) (any, bool) {
	cb, ok := r.callbacks[handlerID]
	return cb, ok
}

// HandlerIDs returns the registered handler ids in first-registration order.
func (r *ActionRegistry) HandlerIDs() []string {
	return append([]string(nil), r.order...)
}
