package tokens

import (
	"sort"
	"strconv"
)

// Alignment is a cross-axis alignment value.
type Alignment string

const (
	AlignStart    Alignment = "start"
	AlignCenter   Alignment = "center"
	AlignEnd      Alignment = "end"
	AlignStretch  Alignment = "stretch"
	AlignBaseline Alignment = "baseline"
)

// DefaultAlignment is used for unknown or absent alignment values.
const DefaultAlignment = AlignCenter

var alignmentClasses = map[Alignment]string{
	AlignStart:    "items-start",
	AlignCenter:   "items-center",
	AlignEnd:      "items-end",
	AlignStretch:  "items-stretch",
	AlignBaseline: "items-baseline",
}

// AlignmentClass returns the cross-axis class for a. Unknown values map to
// items-center with ok=false.
func AlignmentClass(a Alignment) (class string, ok bool) {
	if cls, found := alignmentClasses[a]; found {
		return cls, true
	}
	return alignmentClasses[DefaultAlignment], false
}

// Justify is a main-axis distribution value.
type Justify string

const (
	JustifyStart   Justify = "start"
	JustifyCenter  Justify = "center"
	JustifyEnd     Justify = "end"
	JustifyBetween Justify = "between"
	JustifyAround  Justify = "around"
	JustifyEvenly  Justify = "evenly"
)

// DefaultJustify is used for unknown or absent justify values.
const DefaultJustify = JustifyStart

var justifyClasses = map[Justify]string{
	JustifyStart:   "justify-start",
	JustifyCenter:  "justify-center",
	JustifyEnd:     "justify-end",
	JustifyBetween: "justify-between",
	JustifyAround:  "justify-around",
	JustifyEvenly:  "justify-evenly",
}

// JustifyClass returns the main-axis class for j. Unknown values map to
// justify-start with ok=false.
func JustifyClass(j Justify) (class string, ok bool) {
	if cls, found := justifyClasses[j]; found {
		return cls, true
	}
	return justifyClasses[DefaultJustify], false
}

// Distributes reports whether j spreads free space on its own, in which case
// an explicit gap must not be added.
func (j Justify) Distributes() bool {
	switch j {
	case JustifyBetween, JustifyAround, JustifyEvenly:
		return true
	}
	return false
}

// spacingScale is the accepted spacing scale, ascending.
var spacingScale = []float64{
	0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 5, 6, 7, 8, 9, 10, 11, 12,
	14, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60, 64, 72, 80, 96,
}

// SpacingToken formats v as a spacing scale token. Values off the scale are
// rounded down to the nearest step and reported with ok=false; negative
// values map to "0".
func SpacingToken(v float64) (token string, ok bool) {
	if v <= 0 {
		return "0", v == 0
	}
	i := sort.SearchFloat64s(spacingScale, v)
	if i < len(spacingScale) && spacingScale[i] == v {
		return formatSpacing(v), true
	}
	if i == 0 {
		return "0", false
	}
	return formatSpacing(spacingScale[i-1]), false
}

func formatSpacing(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Breakpoint is a responsive breakpoint prefix. The empty breakpoint is the
// base (mobile-first) layer.
type Breakpoint string

const (
	BreakpointBase Breakpoint = ""
	BreakpointSM   Breakpoint = "sm"
	BreakpointMD   Breakpoint = "md"
	BreakpointLG   Breakpoint = "lg"
	BreakpointXL   Breakpoint = "xl"
	Breakpoint2XL  Breakpoint = "2xl"
)

// Breakpoints lists every breakpoint from narrowest to widest.
func Breakpoints() []Breakpoint {
	return []Breakpoint{BreakpointBase, BreakpointSM, BreakpointMD, BreakpointLG, BreakpointXL, Breakpoint2XL}
}

// Valid reports whether b is a known breakpoint.
func (b Breakpoint) Valid() bool {
	switch b {
	case BreakpointBase, BreakpointSM, BreakpointMD, BreakpointLG, BreakpointXL, Breakpoint2XL:
		return true
	}
	return false
}

// Prefix applies the breakpoint to a class: "md" + "grid-cols-2" is
// "md:grid-cols-2"; the base breakpoint leaves the class untouched.
func (b Breakpoint) Prefix(class string) string {
	if b == BreakpointBase {
		return class
	}
	return string(b) + ":" + class
}

// MaxColumns is the widest fixed grid.
const MaxColumns = 12

// gridColumns maps a fixed column count to its responsive class set.
var gridColumns = map[int][]string{
	1: {"grid-cols-1"},
	2: {"grid-cols-1", "sm:grid-cols-2"},
	3: {"grid-cols-1", "sm:grid-cols-2", "lg:grid-cols-3"},
	4: {"grid-cols-1", "sm:grid-cols-2", "lg:grid-cols-4"},
	5: {"grid-cols-1", "sm:grid-cols-2", "md:grid-cols-3", "lg:grid-cols-5"},
	6: {"grid-cols-1", "sm:grid-cols-2", "md:grid-cols-3", "lg:grid-cols-6"},
}

// GridColumns returns the responsive classes for a fixed column count.
// Counts above MaxColumns are clamped, counts below 1 become 1; both report
// ok=false.
func GridColumns(n int) (classes []string, ok bool) {
	ok = true
	if n < 1 {
		n, ok = 1, false
	}
	if n > MaxColumns {
		n, ok = MaxColumns, false
	}
	if cls, found := gridColumns[n]; found {
		return append([]string(nil), cls...), ok
	}
	return []string{"grid-cols-2", "md:grid-cols-4", "lg:grid-cols-" + strconv.Itoa(n)}, ok
}

// ColumnsClass returns the plain grid-cols class for n at breakpoint b.
func ColumnsClass(b Breakpoint, n int) string {
	return b.Prefix("grid-cols-" + strconv.Itoa(n))
}
