package layout

import (
	"sort"
	"strconv"

	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/tokens"
)

// GridOptions configures Grid. Columns, ColumnsAt and MinItemWidth are
// taken in that order of priority; only the first one set is used.
type GridOptions struct {
	// Columns is a fixed column count resolved through the responsive
	// column table.
	Columns int `mapstructure:"columns"`

	// ColumnsAt sets the column count per breakpoint.
	ColumnsAt map[tokens.Breakpoint]int `mapstructure:"columnsAt"`

	// MinItemWidth auto-fits as many columns of at least this width as
	// fit, e.g. "16rem". It must be a single CSS token.
	MinItemWidth string `mapstructure:"minItemWidth"`

	Spacing float64  `mapstructure:"spacing"`
	Class   []string `mapstructure:"class"`
	Tag     string   `mapstructure:"tag"`
	Builder Builder  `mapstructure:"-"`
}

// Grid lays children out in a CSS grid.
func Grid(opts GridOptions, children ...*markup.Node) *markup.Node {
	n := create(opts.Builder, opts.Tag, children)
	log := n.Options().Log()
	n.AddClass("grid")

	switch {
	case opts.Columns > 0:
		classes, ok := tokens.GridColumns(opts.Columns)
		if !ok {
			fallback(log, "columns", strconv.Itoa(opts.Columns), strconv.Itoa(tokens.MaxColumns))
		}
		n.AddClass(classes...)

	case len(opts.ColumnsAt) > 0:
		n.AddClass(columnsAt(n, opts.ColumnsAt)...)

	case opts.MinItemWidth != "":
		if n.Options().Validator.ValidateCSSToken(opts.MinItemWidth) {
			n.AddClass("grid-cols-[repeat(auto-fit,minmax(" + opts.MinItemWidth + ",1fr))]")
		} else {
			log.Warn("input rejected",
				"code", "E104",
				"tag", n.Tag(),
				"reason", "invalid min item width",
				"value", opts.MinItemWidth,
			)
			if obs := n.Options().Observer; obs != nil {
				obs.Rejected("E104", n.Tag())
			}
			n.AddClass("grid-cols-1")
		}

	default:
		n.AddClass("grid-cols-1")
	}

	if opts.Spacing > 0 {
		n.AddClass("gap-" + spacing(log, opts.Spacing))
	}

	n.AddClass(opts.Class...)
	return n
}

// columnsAt returns one class per known breakpoint, narrowest first.
func columnsAt(n *markup.Node, counts map[tokens.Breakpoint]int) []string {
	log := n.Options().Log()

	var unknown []string
	for bp := range counts {
		if !bp.Valid() {
			unknown = append(unknown, string(bp))
		}
	}
	sort.Strings(unknown)
	for _, bp := range unknown {
		fallback(log, "columnsAt", bp, "ignored")
	}

	var classes []string
	for _, bp := range tokens.Breakpoints() {
		count, ok := counts[bp]
		if !ok {
			continue
		}
		switch {
		case count < 1:
			fallback(log, "columnsAt."+string(bp), strconv.Itoa(count), "1")
			count = 1
		case count > tokens.MaxColumns:
			fallback(log, "columnsAt."+string(bp), strconv.Itoa(count), strconv.Itoa(tokens.MaxColumns))
			count = tokens.MaxColumns
		}
		classes = append(classes, tokens.ColumnsClass(bp, count))
	}
	if len(classes) == 0 {
		classes = append(classes, "grid-cols-1")
	}
	return classes
}
