// Package markup builds trees of HTML nodes and serializes them to safe
// markup.
//
// Nodes are created with [Create] or an element shortcut such as [Div] and
// mutated in place through chain methods that always return the receiver:
//
//	card := markup.Div(markup.Class("card")).
//		SetAttribute("role", "region").
//		BindAction("click", "card.open")
//
// Children are produced by deferred blocks. A block runs inside a [Context]
// when its node is rendered; every node the block creates through the
// context, or returns in its [Slot], is collected in registration order and
// flushed into the parent's content:
//
//	list := markup.Ul(func(c *markup.Context) markup.Slot {
//		for _, item := range items {
//			c.Create("li", item.Name)
//		}
//		return markup.Slot{}
//	})
//
// Blocks attach only when a node is constructed or through [WithChildren];
// no chain method takes a block.
//
// # Safety
//
// Literal text is always escaped. Markup produced by flushing child contexts
// and [Raw] nodes is embedded verbatim. Inline styles, URLs, data attributes
// and attribute names pass through a [Validator]; rejected input is dropped
// and logged, never partially applied.
//
// # Depth
//
// Each nested block runs one level deeper than its parent. Rendering fails
// with [ErrDepthLimitExceeded] when a block would run deeper than
// Options.MaxDepth.
package markup
