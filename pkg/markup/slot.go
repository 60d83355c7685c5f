package markup

import "fmt"

// Block is a deferred child block. It runs when its node is rendered and
// may create nodes through c, return content in its Slot, or both. Nodes
// registered on c render before the returned slot.
type Block func(c *Context) Slot

type slotKind uint8

const (
	slotEmpty slotKind = iota
	slotText
	slotRaw
	slotNodes
	slotThunk
	slotList
	slotErr
)

// Slot is the value returned by a Block. The zero Slot is empty.
type Slot struct {
	kind  slotKind
	text  string
	nodes []*Node
	thunk Block
	list  []Slot
	err   error
}

// Literal returns a slot holding text that is escaped on output.
func Literal(s string) Slot {
	return Slot{kind: slotText, text: s}
}

// Markup returns a slot holding trusted markup emitted verbatim.
func Markup(html string) Slot {
	return Slot{kind: slotRaw, text: html}
}

// Nodes returns a slot holding nodes to register in order.
func Nodes(nodes ...*Node) Slot {
	return Slot{kind: slotNodes, nodes: nodes}
}

// Defer returns a slot that is evaluated in the same context when the
// enclosing block's output is collected.
func Defer(fn Block) Slot {
	return Slot{kind: slotThunk, thunk: fn}
}

// Join returns a slot that resolves each of slots in order.
func Join(slots ...Slot) Slot {
	return Slot{kind: slotList, list: slots}
}

// Fail returns a slot that makes the enclosing node fail to render with err.
func Fail(err error) Slot {
	return Slot{kind: slotErr, err: err}
}

// IsEmpty reports whether s holds nothing.
func (s Slot) IsEmpty() bool {
	return s.kind == slotEmpty
}

// SlotOf converts an arbitrary value to a Slot: strings become escaped text,
// nodes are registered, functions are deferred, errors fail the block, and
// anything else is formatted as text.
func SlotOf(v any) Slot {
	switch x := v.(type) {
	case nil:
		return Slot{}
	case Slot:
		return x
	case string:
		return Literal(x)
	case *Node:
		if x == nil {
			return Slot{}
		}
		return Nodes(x)
	case []*Node:
		return Nodes(x...)
	case Block:
		return Defer(x)
	case func(*Context) Slot:
		return Defer(x)
	case []Slot:
		return Join(x...)
	case error:
		return Fail(x)
	case fmt.Stringer:
		return Literal(x.String())
	default:
		return Literal(fmt.Sprint(x))
	}
}
