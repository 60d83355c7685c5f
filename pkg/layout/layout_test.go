package layout

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/tokens"
	"github.com/vango-dev/tessera/pkg/vtest"
)

func testBuilder() (*markup.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return markup.NewContext(markup.NewOptions(markup.Options{Logger: logger})), &buf
}

func classes(n *markup.Node) string {
	return strings.Join(n.Classes(), " ")
}

func TestStackClasses(t *testing.T) {
	tests := []struct {
		name string
		dir  Direction
		opts StackOptions
		want string
	}{
		{
			name: "defaults",
			dir:  Column,
			want: "flex flex-col items-center justify-start",
		},
		{
			name: "row defaults",
			dir:  Row,
			want: "flex flex-row items-center justify-start",
		},
		{
			name: "column spacing",
			dir:  Column,
			opts: StackOptions{Align: tokens.AlignStart, Spacing: 4},
			want: "flex flex-col items-start justify-start space-y-4",
		},
		{
			name: "row spacing",
			dir:  Row,
			opts: StackOptions{Align: tokens.AlignEnd, Justify: tokens.JustifyCenter, Spacing: 2},
			want: "flex flex-row items-end justify-center space-x-2",
		},
		{
			name: "between in a row fills width and drops spacing",
			dir:  Row,
			opts: StackOptions{Justify: tokens.JustifyBetween, Spacing: 4},
			want: "flex flex-row items-center justify-between w-full",
		},
		{
			name: "around in a column fills height",
			dir:  Column,
			opts: StackOptions{Justify: tokens.JustifyAround, Spacing: 4},
			want: "flex flex-col items-center justify-around h-full",
		},
		{
			name: "evenly",
			dir:  Row,
			opts: StackOptions{Justify: tokens.JustifyEvenly},
			want: "flex flex-row items-center justify-evenly w-full",
		},
		{
			name: "stretch and baseline",
			dir:  Row,
			opts: StackOptions{Align: tokens.AlignBaseline},
			want: "flex flex-row items-baseline justify-start",
		},
		{
			name: "extra classes",
			dir:  Column,
			opts: StackOptions{Class: []string{"p-4 rounded", "flex"}},
			want: "flex flex-col items-center justify-start p-4 rounded",
		},
		{
			name: "direction from options",
			opts: StackOptions{Direction: Row},
			want: "flex flex-row items-center justify-start",
		},
		{
			name: "no direction at all",
			want: "flex flex-col items-center justify-start",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := Stack(tc.dir, tc.opts)
			if got := classes(n); got != tc.want {
				t.Errorf("classes = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStackFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		dir   Direction
		opts  StackOptions
		want  string
		field string
	}{
		{
			name:  "unknown alignment",
			dir:   Column,
			opts:  StackOptions{Align: "diagonal"},
			want:  "flex flex-col items-center justify-start",
			field: "field=align",
		},
		{
			name:  "unknown justify keeps spacing",
			dir:   Column,
			opts:  StackOptions{Justify: "sideways", Spacing: 4},
			want:  "flex flex-col items-center justify-start space-y-4",
			field: "field=justify",
		},
		{
			name:  "off-scale spacing rounds down",
			dir:   Row,
			opts:  StackOptions{Spacing: 4.3},
			want:  "flex flex-row items-center justify-start space-x-4",
			field: "field=spacing",
		},
		{
			name:  "unknown direction",
			dir:   "diagonal",
			want:  "flex flex-col items-center justify-start",
			field: "field=direction",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, logs := testBuilder()
			tc.opts.Builder = b
			n := Stack(tc.dir, tc.opts)

			if got := classes(n); got != tc.want {
				t.Errorf("classes = %q, want %q", got, tc.want)
			}
			out := logs.String()
			if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "code=E120") || !strings.Contains(out, tc.field) {
				t.Errorf("expected a debug fallback log for %s, got %q", tc.field, out)
			}
		})
	}
}

func TestStackRender(t *testing.T) {
	n := VStack(StackOptions{Tag: "nav", Spacing: 2}, markup.Span("a"), markup.Span("b"))

	html, err := n.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<nav class="flex flex-col items-center justify-start space-y-2"><span>a</span><span>b</span></nav>`
	if html != want {
		t.Errorf("Render() = %q, want %q", html, want)
	}
}

func TestStackWithBuilderRegisters(t *testing.T) {
	b, _ := testBuilder()
	HStack(StackOptions{Builder: b}, markup.Span("x"))

	html, err := b.Flush()
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	want := `<div class="flex flex-row items-center justify-start"><span>x</span></div>`
	if html != want {
		t.Errorf("Flush() = %q, want %q", html, want)
	}
}

func TestGridClasses(t *testing.T) {
	tests := []struct {
		name string
		opts GridOptions
		want string
	}{
		{
			name: "no columns",
			want: "grid grid-cols-1",
		},
		{
			name: "fixed columns",
			opts: GridOptions{Columns: 3},
			want: "grid grid-cols-1 sm:grid-cols-2 lg:grid-cols-3",
		},
		{
			name: "fixed columns win over the rest",
			opts: GridOptions{
				Columns:      2,
				ColumnsAt:    map[tokens.Breakpoint]int{tokens.BreakpointMD: 4},
				MinItemWidth: "10rem",
			},
			want: "grid grid-cols-1 sm:grid-cols-2",
		},
		{
			name: "breakpoints in order",
			opts: GridOptions{ColumnsAt: map[tokens.Breakpoint]int{
				tokens.BreakpointLG:   4,
				tokens.BreakpointBase: 1,
				tokens.BreakpointMD:   2,
			}},
			want: "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-4",
		},
		{
			name: "breakpoints win over auto-fit",
			opts: GridOptions{
				ColumnsAt:    map[tokens.Breakpoint]int{tokens.BreakpointSM: 2},
				MinItemWidth: "10rem",
			},
			want: "grid sm:grid-cols-2",
		},
		{
			name: "auto-fit",
			opts: GridOptions{MinItemWidth: "16rem"},
			want: "grid grid-cols-[repeat(auto-fit,minmax(16rem,1fr))]",
		},
		{
			name: "gap",
			opts: GridOptions{Columns: 1, Spacing: 6},
			want: "grid grid-cols-1 gap-6",
		},
		{
			name: "extra classes",
			opts: GridOptions{Class: []string{"mt-4"}},
			want: "grid grid-cols-1 mt-4",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classes(Grid(tc.opts)); got != tc.want {
				t.Errorf("classes = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGridFallbacks(t *testing.T) {
	tests := []struct {
		name string
		opts GridOptions
		want string
		log  string
	}{
		{
			name: "too many columns",
			opts: GridOptions{Columns: 20},
			want: "grid grid-cols-2 md:grid-cols-4 lg:grid-cols-12",
			log:  "code=E120",
		},
		{
			name: "breakpoint count clamped",
			opts: GridOptions{ColumnsAt: map[tokens.Breakpoint]int{tokens.BreakpointLG: 30}},
			want: "grid lg:grid-cols-12",
			log:  "code=E120",
		},
		{
			name: "only unknown breakpoints",
			opts: GridOptions{ColumnsAt: map[tokens.Breakpoint]int{"huge": 2}},
			want: "grid grid-cols-1",
			log:  "value=huge",
		},
		{
			name: "unsafe min width",
			opts: GridOptions{MinItemWidth: "1px);background:red"},
			want: "grid grid-cols-1",
			log:  "code=E104",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, logs := testBuilder()
			tc.opts.Builder = b
			n := Grid(tc.opts)

			if got := classes(n); got != tc.want {
				t.Errorf("classes = %q, want %q", got, tc.want)
			}
			if !strings.Contains(logs.String(), tc.log) {
				t.Errorf("expected log containing %q, got %q", tc.log, logs.String())
			}
		})
	}
}

func TestGridRender(t *testing.T) {
	n := Grid(GridOptions{Tag: "ul", Columns: 2, Spacing: 4}, markup.Li("a"), markup.Li("b"))

	html, err := n.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<ul class="grid grid-cols-1 sm:grid-cols-2 gap-4"><li>a</li><li>b</li></ul>`
	if html != want {
		t.Errorf("Render() = %q, want %q", html, want)
	}
}

func TestNestedLayoutsParse(t *testing.T) {
	card := VStack(StackOptions{Tag: "section", Spacing: 4, Class: []string{"card"}},
		markup.H2("Title"),
		HStack(StackOptions{Justify: tokens.JustifyBetween}, markup.Span("left"), markup.Span("right")),
	)
	page := Grid(GridOptions{ColumnsAt: map[tokens.Breakpoint]int{tokens.BreakpointBase: 1, tokens.BreakpointMD: 2}}, card)

	nodes := vtest.ParseFragment(t, vtest.Render(t, page))

	grid := vtest.Find(nodes, "div")
	if got := strings.Join(vtest.Classes(grid), " "); got != "grid grid-cols-1 md:grid-cols-2" {
		t.Errorf("grid classes = %q", got)
	}

	section := vtest.Find(nodes, "section")
	if section == nil {
		t.Fatal("no <section> in output")
	}
	want := map[string]bool{"space-y-4": true, "card": true, "flex-col": true}
	for _, c := range vtest.Classes(section) {
		delete(want, c)
	}
	if len(want) != 0 {
		t.Errorf("section missing classes %v, has %v", want, vtest.Classes(section))
	}

	row := section.LastChild
	if cls, _ := vtest.AttrOf(row, "class"); !strings.Contains(cls, "w-full") {
		t.Errorf("row class = %q, want w-full", cls)
	}
	if got := vtest.Text(row); got != "leftright" {
		t.Errorf("row text = %q", got)
	}
}
