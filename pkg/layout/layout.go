// Package layout builds flex stacks and grids on top of markup nodes.
//
// Layout functions only add utility classes; they never fail. Unknown
// alignment, justify, spacing or column values fall back to documented
// defaults and are logged at debug level.
package layout

import (
	"log/slog"
	"strconv"

	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/tokens"
)

// Builder creates nodes. *markup.Context and the engine implement it; a nil
// Builder uses markup.Create.
type Builder interface {
	Create(tag string, args ...any) *markup.Node
}

// Direction is the main axis of a stack.
type Direction string

const (
	Column Direction = "column"
	Row    Direction = "row"
)

// StackOptions configures Stack.
type StackOptions struct {
	// Direction is used when Stack is called with an empty direction.
	Direction Direction        `mapstructure:"direction"`
	Align     tokens.Alignment `mapstructure:"align"`
	Justify   tokens.Justify   `mapstructure:"justify"`
	Spacing   float64          `mapstructure:"spacing"`
	Class     []string         `mapstructure:"class"`
	Tag       string           `mapstructure:"tag"`
	Builder   Builder          `mapstructure:"-"`
}

// Stack lays children out along dir.
func Stack(dir Direction, opts StackOptions, children ...*markup.Node) *markup.Node {
	n := create(opts.Builder, opts.Tag, children)
	log := n.Options().Log()

	if dir == "" {
		dir = opts.Direction
	}
	switch dir {
	case Column, Row:
	case "":
		dir = Column
	default:
		fallback(log, "direction", string(dir), string(Column))
		dir = Column
	}

	axis := "flex-col"
	if dir == Row {
		axis = "flex-row"
	}

	align, ok := tokens.AlignmentClass(opts.Align)
	if !ok && opts.Align != "" {
		fallback(log, "align", string(opts.Align), align)
	}
	justify, ok := tokens.JustifyClass(opts.Justify)
	if !ok && opts.Justify != "" {
		fallback(log, "justify", string(opts.Justify), justify)
	}

	n.AddClass("flex", axis, align, justify)

	switch {
	case opts.Justify.Distributes():
		if dir == Column {
			n.AddClass("h-full")
		} else {
			n.AddClass("w-full")
		}
	case opts.Spacing > 0:
		prefix := "space-y-"
		if dir == Row {
			prefix = "space-x-"
		}
		n.AddClass(prefix + spacing(log, opts.Spacing))
	}

	n.AddClass(opts.Class...)
	return n
}

// VStack stacks children vertically.
func VStack(opts StackOptions, children ...*markup.Node) *markup.Node {
	return Stack(Column, opts, children...)
}

// HStack stacks children horizontally.
func HStack(opts StackOptions, children ...*markup.Node) *markup.Node {
	return Stack(Row, opts, children...)
}

func create(b Builder, tag string, children []*markup.Node) *markup.Node {
	if tag == "" {
		tag = "div"
	}
	if b == nil {
		return markup.Create(tag, children)
	}
	return b.Create(tag, children)
}

func spacing(log *slog.Logger, v float64) string {
	tok, ok := tokens.SpacingToken(v)
	if !ok {
		fallback(log, "spacing", strconv.FormatFloat(v, 'f', -1, 64), tok)
	}
	return tok
}

func fallback(log *slog.Logger, field, value, used string) {
	log.Debug("layout value not recognized, using default",
		"code", "E120",
		"field", field,
		"value", value,
		"default", used,
	)
}
