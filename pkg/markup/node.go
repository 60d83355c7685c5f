package markup

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"weak"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/security"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Escaped text run
	KindRaw                 // Trusted markup (emitted verbatim)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// nextIndex hands out arena indices. Index 0 is never used.
var nextIndex atomic.Uint64

// Node is a single markup node. Chain methods mutate the node in place and
// return the receiver.
type Node struct {
	index    uint64
	kind     Kind
	tag      string
	content  *string
	attrs    attrList
	classes  classList
	children []*Node
	block    Block
	actions  []Action
	owner    weak.Pointer[Context]
	scope    *scope
	opts     *Options
}

// Create builds an element node. Arguments are applied in order:
//
//   - string: literal content (escaped on output; several are concatenated)
//   - Attr, []Attr: attributes
//   - Attrs, map[string]any: attributes in sorted key order
//   - Action, []Action: action bindings
//   - Block, func(*Context) Slot: the deferred child block
//   - *Node, []*Node: child nodes rendered before the block's output
//   - nil: ignored
//
// When a block or child nodes are given, literal content is dropped.
func Create(tag string, args ...any) *Node {
	return newElement(defaultOptions, tag, args)
}

func newElement(opts *Options, tag string, args []any) *Node {
	n := &Node{
		index: nextIndex.Add(1),
		kind:  KindElement,
		tag:   tag,
		opts:  opts,
	}

	var content *string
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional arguments)
			continue

		case string:
			if content != nil {
				v = *content + v
			}
			content = &v

		case Attr:
			n.SetAttribute(v.Key, v.Value)

		case []Attr:
			for _, attr := range v {
				n.SetAttribute(attr.Key, attr.Value)
			}

		case Attrs:
			for _, key := range v.sortedKeys() {
				n.SetAttribute(key, v[key])
			}

		case map[string]any:
			attrs := Attrs(v)
			for _, key := range attrs.sortedKeys() {
				n.SetAttribute(key, attrs[key])
			}

		case Action:
			n.BindAction(v.Event, v.HandlerID)

		case []Action:
			for _, action := range v {
				n.BindAction(action.Event, action.HandlerID)
			}

		case Block:
			n.block = v

		case func(*Context) Slot:
			n.block = v

		case *Node:
			if v != nil {
				n.children = append(n.children, v)
			}

		case []*Node:
			for _, child := range v {
				if child != nil {
					n.children = append(n.children, child)
				}
			}

		default:
			opts.Log().Debug("ignored argument", "tag", tag, "type", fmt.Sprintf("%T", arg))
		}
	}

	if content != nil && (n.block != nil || len(n.children) > 0) {
		opts.Log().Debug("literal content replaced by children", "tag", tag)
		content = nil
	}
	n.content = content
	return n
}

func newLeaf(opts *Options, kind Kind, text string) *Node {
	return &Node{
		index:   nextIndex.Add(1),
		kind:    kind,
		content: &text,
		opts:    opts,
	}
}

// WithChildren attaches block to n, replacing any literal content, child
// nodes and previously attached block. It returns n.
func WithChildren(n *Node, block Block) *Node {
	if n == nil {
		return nil
	}
	if n.kind != KindElement {
		n.opts.Log().Debug("children ignored on leaf node", "kind", n.kind.String())
		return n
	}
	n.content = nil
	n.children = nil
	n.block = block
	return n
}

// Index returns the node's arena index, unique for the life of the process.
func (n *Node) Index() uint64 { return n.index }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag. It is empty for text and raw nodes.
func (n *Node) Tag() string { return n.tag }

// Options returns the options the node was created with.
func (n *Node) Options() *Options { return n.opts }

// Owner returns the context the node was first registered in. It is nil
// before registration and once that context is no longer reachable.
func (n *Node) Owner() *Context { return n.owner.Value() }

// HasBlock reports whether a deferred block is attached.
func (n *Node) HasBlock() bool { return n.block != nil }

// Children returns the child nodes given at construction.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Content returns the literal content, if any.
func (n *Node) Content() (string, bool) {
	if n.content == nil {
		return "", false
	}
	return *n.content, true
}

// Classes returns the class names in insertion order.
func (n *Node) Classes() []string {
	return append([]string(nil), n.classes.names...)
}

// HasClass reports whether name was added.
func (n *Node) HasClass(name string) bool {
	_, ok := n.classes.seen[name]
	return ok
}

// Attr returns the value of an attribute: a string, or a bool for boolean
// attributes.
func (n *Node) Attr(key string) (any, bool) {
	return n.attrs.get(strings.ToLower(key))
}

// Attributes returns the attributes in insertion order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, 0, len(n.attrs.keys))
	for _, k := range n.attrs.keys {
		out = append(out, Attr{Key: k, Value: n.attrs.vals[k]})
	}
	return out
}

// Actions returns the action bindings in binding order.
func (n *Node) Actions() []Action {
	return append([]Action(nil), n.actions...)
}

// AddClass adds class names. Each argument may hold several
// whitespace-separated names; duplicates are ignored.
func (n *Node) AddClass(names ...string) *Node {
	if n.kind != KindElement {
		return n
	}
	for _, arg := range names {
		for _, name := range strings.Fields(arg) {
			n.classes.add(name)
		}
	}
	return n
}

// SetAttribute sets an attribute. "class" adds classes and "style" goes
// through SetStyle. Names failing the attribute name policy, including
// inline on* handlers, are dropped and logged. URL attributes and data-*
// attributes are validated. A nil value removes the attribute; false keeps
// a boolean attribute off.
func (n *Node) SetAttribute(key string, value any) *Node {
	if n.kind != KindElement {
		return n
	}
	name := strings.ToLower(strings.TrimSpace(key))

	switch name {
	case "class", "classname":
		if s, ok := value.(string); ok {
			n.AddClass(s)
		}
		return n
	case "style":
		if value == nil {
			n.attrs.remove("style")
			return n
		}
		return n.SetStyle(fmt.Sprint(value))
	}

	if !n.opts.Validator.ValidAttributeName(name) {
		n.opts.rejected("E103", n.tag, "invalid attribute name", "attr", key)
		return n
	}
	if value == nil {
		n.attrs.remove(name)
		return n
	}

	v := attrValue(value)
	if s, ok := v.(string); ok {
		switch {
		case strings.HasPrefix(name, "data-"):
			clean := n.opts.Validator.SanitizeDataAttributes(map[string]string{name: s})
			cv, ok := clean[name]
			if !ok {
				n.opts.rejected("E102", n.tag, "unsafe data attribute", "attr", name)
				return n
			}
			v = cv
		case name == "src" && (n.tag == "img" || n.tag == "source"):
			src, ok := n.opts.Validator.ValidateImageSrc(s, security.ImageOptions{})
			if !ok {
				n.opts.rejected("E101", n.tag, "unsafe image source", "attr", name)
				return n
			}
			v = src
		case security.IsURLAttribute(name):
			u, ok := n.opts.Validator.ValidateURL(s)
			if !ok {
				n.opts.rejected("E101", n.tag, "unsafe url", "attr", name)
				return n
			}
			v = u
		}
	}
	n.attrs.set(name, v)
	return n
}

// SetStyle validates and sets the inline style. Rejected styles are dropped
// and logged and the previous style is kept.
func (n *Node) SetStyle(raw string) *Node {
	if n.kind != KindElement {
		return n
	}
	style, err := n.opts.Validator.ValidateStyle(raw)
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = "E100"
		}
		n.opts.rejected(code, n.tag, "unsafe style", "error", err)
		return n
	}
	if style == "" {
		n.attrs.remove("style")
		return n
	}
	n.attrs.set("style", style)
	return n
}

var (
	eventPattern   = regexp.MustCompile(`^[a-z][a-z0-9_.:-]*$`)
	handlerPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]+$`)
)

// BindAction binds a client event to a handler id. The binding is emitted
// as data-on-<event>; binding the same pair twice has no effect.
func (n *Node) BindAction(event, handlerID string) *Node {
	if n.kind != KindElement {
		return n
	}
	event = strings.ToLower(strings.TrimSpace(event))
	if !eventPattern.MatchString(event) || !handlerPattern.MatchString(handlerID) {
		n.opts.rejected("E103", n.tag, "invalid action binding", "event", event, "handler", handlerID)
		return n
	}
	for _, a := range n.actions {
		if a.Event == event && a.HandlerID == handlerID {
			return n
		}
	}
	n.actions = append(n.actions, Action{Event: event, HandlerID: handlerID})
	return n
}

// SetData sets data-* attributes. Keys may omit the data- prefix. Entries
// the validator drops are logged.
func (n *Node) SetData(data map[string]string) *Node {
	if n.kind != KindElement || len(data) == 0 {
		return n
	}
	clean := n.opts.Validator.SanitizeDataAttributes(data)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := "data-" + strings.TrimPrefix(strings.TrimSpace(k), "data-")
		v, ok := clean[name]
		if !ok {
			n.opts.rejected("E102", n.tag, "unsafe data attribute", "attr", k)
			continue
		}
		n.attrs.set(name, v)
	}
	return n
}

// SetSrc validates and sets the src attribute of an image. A rejected URL
// leaves src unset.
func (n *Node) SetSrc(url string, opts security.ImageOptions) *Node {
	if n.kind != KindElement {
		return n
	}
	src, ok := n.opts.Validator.ValidateImageSrc(url, opts)
	if !ok {
		n.attrs.remove("src")
		n.opts.rejected("E101", n.tag, "unsafe image source", "attr", "src")
		return n
	}
	n.attrs.set("src", src)
	return n
}

// SetText replaces the literal content. A block or child nodes still take
// precedence when the node renders.
func (n *Node) SetText(s string) *Node {
	n.content = &s
	return n
}

// SetID sets the id attribute.
func (n *Node) SetID(id string) *Node {
	return n.SetAttribute("id", id)
}
