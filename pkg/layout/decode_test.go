package layout

import (
	"testing"

	"github.com/vango-dev/tessera/pkg/tokens"
)

func TestStackOptionsFromMap(t *testing.T) {
	opts, err := StackOptionsFromMap(map[string]any{
		"direction": "row",
		"align":     "start",
		"justify":   "between",
		"spacing":   "4",
		"class":     "card shadow",
		"tag":       "section",
	})
	if err != nil {
		t.Fatalf("StackOptionsFromMap() error = %v", err)
	}

	if opts.Direction != Row {
		t.Errorf("Direction = %q, want %q", opts.Direction, Row)
	}
	if opts.Align != tokens.AlignStart || opts.Justify != tokens.JustifyBetween {
		t.Errorf("Align/Justify = %q/%q", opts.Align, opts.Justify)
	}
	if opts.Spacing != 4 {
		t.Errorf("Spacing = %v, want 4", opts.Spacing)
	}
	if len(opts.Class) != 1 || opts.Class[0] != "card shadow" {
		t.Errorf("Class = %v, want [card shadow]", opts.Class)
	}
	if opts.Tag != "section" {
		t.Errorf("Tag = %q, want section", opts.Tag)
	}
}

func TestStackOptionsFromMapUnknownKey(t *testing.T) {
	if _, err := StackOptionsFromMap(map[string]any{"colour": "red"}); err == nil {
		t.Error("unknown keys should be rejected")
	}
}

func TestGridOptionsFromMap(t *testing.T) {
	opts, err := GridOptionsFromMap(map[string]any{
		"columnsAt": map[string]any{"base": 1, "md": "3"},
		"spacing":   2,
		"class":     []any{"mt-2"},
	})
	if err != nil {
		t.Fatalf("GridOptionsFromMap() error = %v", err)
	}

	if got := opts.ColumnsAt[tokens.BreakpointBase]; got != 1 {
		t.Errorf("ColumnsAt[base] = %d, want 1", got)
	}
	if got := opts.ColumnsAt[tokens.BreakpointMD]; got != 3 {
		t.Errorf("ColumnsAt[md] = %d, want 3", got)
	}
	if _, ok := opts.ColumnsAt["base"]; ok {
		t.Error(`"base" should be normalized to the base breakpoint`)
	}

	if got := classes(Grid(opts)); got != "grid grid-cols-1 md:grid-cols-3 gap-2 mt-2" {
		t.Errorf("classes = %q", got)
	}
}

func TestGridOptionsFromMapBadType(t *testing.T) {
	if _, err := GridOptionsFromMap(map[string]any{"columns": []any{1, 2}}); err == nil {
		t.Error("a list is not a column count")
	}
}
