package markup

import (
	"strings"
	"weak"

	"github.com/vango-dev/tessera/internal/errors"
)

// Context collects the nodes produced by a deferred block. Nodes are
// rendered in registration order when the context is flushed; each node
// appears at most once.
//
// A Context belongs to a single render and is not safe for concurrent use.
type Context struct {
	pending  []*Node
	seen     map[uint64]struct{}
	released map[uint64]struct{}
	depth    int
	parent   *Context
	host     Host
	opts     *Options
	state    *renderState
}

// scope is what a node records about the context it is first registered
// in. A context's depth, options and state never change.
type scope struct {
	depth int
	opts  *Options
	state *renderState
}

// renderState is shared by every context of one render tree.
type renderState struct {
	panicLogged bool
}

// NewContext returns a top-level context at depth 0. Nodes registered on
// it render as siblings when it is flushed. A nil opts uses
// DefaultOptions.
func NewContext(opts *Options) *Context {
	if opts == nil {
		opts = defaultOptions
	}
	return &Context{
		host:  opts.Host,
		opts:  opts,
		state: &renderState{},
	}
}

// newBlockContext returns the context a block runs in: one level below
// parent, or depth 1 when there is no parent.
func newBlockContext(parent *Context, opts *Options) (*Context, error) {
	c := &Context{depth: 1, parent: parent, opts: opts}
	if parent != nil {
		c.depth = parent.depth + 1
		c.opts = parent.opts
		c.state = parent.state
	} else {
		c.state = &renderState{}
	}
	c.host = c.opts.Host
	if c.depth > c.opts.MaxDepth {
		return c, errors.New("E140").WithDetailf("depth %d exceeds limit %d", c.depth, c.opts.MaxDepth)
	}
	return c, nil
}

// Depth returns the nesting depth. Block contexts start at 1.
func (c *Context) Depth() int { return c.depth }

// Parent returns the enclosing context, or nil.
func (c *Context) Parent() *Context { return c.parent }

// Host returns the context's host.
func (c *Context) Host() Host { return c.host }

// Options returns the options nodes created through c receive.
func (c *Context) Options() *Options { return c.opts }

// Len returns the number of pending nodes.
func (c *Context) Len() int { return len(c.pending) }

// Register appends n to the pending list unless it is already there.
// The first context a node is registered in becomes its owner, and its
// depth and options are recorded on the node.
func (c *Context) Register(n *Node) {
	if n == nil {
		return
	}
	if _, ok := c.seen[n.index]; ok {
		return
	}
	if c.seen == nil {
		c.seen = make(map[uint64]struct{})
	}
	c.seen[n.index] = struct{}{}
	c.pending = append(c.pending, n)
	delete(c.released, n.index)

	if n.scope == nil {
		n.owner = weak.Make(c)
		n.scope = &scope{depth: c.depth, opts: c.opts, state: c.state}
	}
	if n.opts == defaultOptions {
		n.opts = c.opts
	}
}

// Add registers nodes in order.
func (c *Context) Add(nodes ...*Node) {
	for _, n := range nodes {
		c.Register(n)
	}
}

// Create builds an element with the context's options and registers it.
func (c *Context) Create(tag string, args ...any) *Node {
	n := newElement(c.opts, tag, args)
	c.Register(n)
	return n
}

// Text registers an escaped text node.
func (c *Context) Text(s string) *Node {
	n := newLeaf(c.opts, KindText, s)
	c.Register(n)
	return n
}

// Raw registers a trusted markup node.
func (c *Context) Raw(html string) *Node {
	n := newLeaf(c.opts, KindRaw, html)
	c.Register(n)
	return n
}

// Bind binds an action on n and hands callback to the host.
func (c *Context) Bind(n *Node, event, handlerID string, callback any) *Node {
	before := len(n.actions)
	n.BindAction(event, handlerID)
	if len(n.actions) > before {
		c.host.ResolveAction(handlerID, callback)
	}
	return n
}

// Flush renders the pending nodes in registration order and clears the
// context. Nodes that are children of another pending node render only as
// part of that node. A second Flush without new registrations returns "".
func (c *Context) Flush() (string, error) {
	pending := c.pending
	c.pending = nil
	c.seen = nil

	defer func() { c.released = nil }()

	adopted := adoptedBy(pending)
	var b strings.Builder
	for _, n := range pending {
		if _, ok := adopted[n.index]; ok {
			continue
		}
		if _, ok := c.released[n.index]; ok {
			continue
		}
		if err := n.renderTo(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// release drops n and the children nested under it from the pending list.
// It is called when n is rendered on its own, including while c is being
// flushed.
func (c *Context) release(n *Node) {
	if c.released == nil {
		c.released = make(map[uint64]struct{})
	}
	var walk func(x *Node)
	walk = func(x *Node) {
		if _, ok := c.released[x.index]; ok {
			return
		}
		c.released[x.index] = struct{}{}
		delete(c.seen, x.index)
		for _, child := range x.children {
			walk(child)
		}
	}
	walk(n)

	kept := c.pending[:0]
	for _, p := range c.pending {
		if _, ok := c.released[p.index]; !ok {
			kept = append(kept, p)
		}
	}
	clear(c.pending[len(kept):])
	c.pending = kept
}

// adoptedBy returns the indices of all nodes nested as construction-time
// children below nodes.
func adoptedBy(nodes []*Node) map[uint64]struct{} {
	var adopted map[uint64]struct{}
	var walk func(children []*Node)
	walk = func(children []*Node) {
		for _, child := range children {
			if _, ok := adopted[child.index]; ok {
				continue
			}
			adopted[child.index] = struct{}{}
			walk(child.children)
		}
	}
	for _, n := range nodes {
		if len(n.children) == 0 {
			continue
		}
		if adopted == nil {
			adopted = make(map[uint64]struct{})
		}
		walk(n.children)
	}
	return adopted
}

// resolve registers the content of a block's slot.
func (c *Context) resolve(s Slot, hops int) error {
	switch s.kind {
	case slotEmpty:
	case slotText:
		c.Text(s.text)
	case slotRaw:
		c.Raw(s.text)
	case slotNodes:
		c.Add(s.nodes...)
	case slotThunk:
		if hops >= c.opts.MaxDepth {
			return errors.New("E140").WithDetailf("deferred slot chain exceeds %d", c.opts.MaxDepth)
		}
		if s.thunk == nil {
			return nil
		}
		return c.resolve(s.thunk(c), hops+1)
	case slotList:
		for _, sub := range s.list {
			if err := c.resolve(sub, hops); err != nil {
				return err
			}
		}
	case slotErr:
		if s.err != nil {
			return s.err
		}
	default:
		return errors.New("E162").WithDetailf("slot kind %d", s.kind)
	}
	return nil
}

// Escape forwards to the host.
func (c *Context) Escape(text string) string { return c.host.Escape(text) }

// SafeJoin forwards to the host.
func (c *Context) SafeJoin(parts []string) string { return c.host.SafeJoin(parts) }

// WrapTag validates attrs with the context's options and forwards to the
// host.
func (c *Context) WrapTag(tag, inner string, attrs Attrs) string {
	return c.host.WrapTag(tag, inner, c.opts.safeAttrs(tag, attrs))
}

// ResolveAction forwards to the host.
func (c *Context) ResolveAction(handlerID string, callback any) {
	c.host.ResolveAction(handlerID, callback)
}

// CSRFToken forwards to the host.
func (c *Context) CSRFToken() string { return c.host.CSRFToken() }
