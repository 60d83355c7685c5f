package markup

import (
	"io"
	"strings"

	"github.com/vango-dev/tessera/internal/errors"
)

// Render serializes n. It is the free-function form of (*Node).Render.
func Render(n *Node) (string, error) {
	if n == nil {
		return "", nil
	}
	return n.Render()
}

// Render serializes the node and everything below it. A node registered in
// a context renders as it would inside that context: its block runs one
// level below the registering context and inherits its host and options.
// The node is then no longer pending there, so the context does not emit it
// a second time. Other nodes run their block in a fresh root context.
//
// Errors are logged once where they originate and returned unmodified.
// Panics raised by blocks are logged and re-panicked with the same value.
func (n *Node) Render() (string, error) {
	var b strings.Builder
	if err := n.renderTo(&b, n.scopeContext()); err != nil {
		return "", err
	}
	return b.String(), nil
}

// scopeContext returns the context a standalone render inherits from. It is
// the registering context while that is reachable, and otherwise a detached
// context rebuilt from the values recorded at registration; both carry the
// same depth, options and render state.
func (n *Node) scopeContext() *Context {
	if n.scope == nil {
		return nil
	}
	if c := n.owner.Value(); c != nil {
		c.release(n)
		return c
	}
	return &Context{
		depth: n.scope.depth,
		host:  n.scope.opts.Host,
		opts:  n.scope.opts,
		state: n.scope.state,
	}
}

// RenderTo writes the serialized node to w. Nothing is written when
// rendering fails.
func (n *Node) RenderTo(w io.Writer) error {
	html, err := n.Render()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}

func (n *Node) renderTo(b *strings.Builder, parent *Context) error {
	opts := n.opts
	if parent != nil {
		opts = parent.opts
	}

	switch n.kind {
	case KindText:
		if n.content != nil {
			b.WriteString(EscapeHTML(*n.content))
		}
		return nil
	case KindRaw:
		if n.content != nil {
			b.WriteString(*n.content)
		}
		return nil
	case KindElement:
	default:
		err := errors.New("E162").WithDetailf("kind %d", n.kind)
		return n.fail(opts, "E162", err)
	}

	if !ValidTag(n.tag) {
		return n.fail(opts, "E160", errors.New("E160").WithDetailf("tag %q", n.tag))
	}

	void := IsVoid(n.tag)
	var inner string
	hasInner := false
	if !void && (n.block != nil || len(n.children) > 0) {
		var err error
		inner, err = n.runBlock(parent, opts)
		if err != nil {
			return err
		}
		hasInner = true
	}

	b.WriteByte('<')
	b.WriteString(n.tag)
	n.writeAttributes(b, opts)
	b.WriteByte('>')

	if void {
		return nil
	}
	if hasInner {
		b.WriteString(inner)
	} else if n.content != nil {
		b.WriteString(EscapeHTML(*n.content))
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
	return nil
}

// runBlock runs the node's children and block in a new context and
// returns the flushed markup.
func (n *Node) runBlock(parent *Context, opts *Options) (html string, err error) {
	c, err := newBlockContext(parent, opts)
	if err != nil {
		if c.opts.Observer != nil {
			c.opts.Observer.DepthExceeded(n.tag, c.depth)
		}
		return "", n.fail(c.opts, "E140", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if !c.state.panicLogged {
				c.state.panicLogged = true
				c.opts.Log().Error("block panicked", "tag", n.tag, "depth", c.depth, "panic", r)
			}
			panic(r)
		}
	}()

	c.Add(n.children...)
	if n.block != nil {
		if err := c.resolve(n.block(c), 0); err != nil {
			code := "E161"
			if errors.Is(err, ErrDepthLimitExceeded) {
				code = "E140"
			}
			return "", n.fail(c.opts, code, err)
		}
	}

	// Errors from children were logged where they originated.
	return c.Flush()
}

// fail logs err under code and returns it as is.
func (n *Node) fail(opts *Options, code string, err error) error {
	opts.Log().Error("render failed", "tag", n.tag, "code", code, "error", err)
	return err
}

func (n *Node) writeAttributes(b *strings.Builder, opts *Options) {
	if len(n.classes.names) > 0 {
		b.WriteString(` class="`)
		b.WriteString(EscapeAttr(strings.Join(n.classes.names, " ")))
		b.WriteByte('"')
	}

	for _, key := range n.attrs.keys {
		switch v := n.attrs.vals[key].(type) {
		case bool:
			if v {
				b.WriteByte(' ')
				b.WriteString(key)
			}
		case string:
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString(`="`)
			b.WriteString(EscapeAttr(v))
			b.WriteByte('"')
		}
	}

	if opts.HideActionAttrs || len(n.actions) == 0 {
		return
	}
	var events []string
	handlers := make(map[string][]string)
	for _, a := range n.actions {
		if _, ok := handlers[a.Event]; !ok {
			events = append(events, a.Event)
		}
		handlers[a.Event] = append(handlers[a.Event], a.HandlerID)
	}
	for _, ev := range events {
		b.WriteString(` data-on-`)
		b.WriteString(ev)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(strings.Join(handlers[ev], " ")))
		b.WriteByte('"')
	}
}
