package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Color is an ANSI terminal attribute.
type Color string

const (
	Red   Color = "\033[31m"
	Green Color = "\033[32m"
	Cyan  Color = "\033[36m"
	White Color = "\033[37m"
	Gray  Color = "\033[90m"
	Bold  Color = "\033[1m"

	reset = "\033[0m"
)

var colorEnabled = true

// SetColor turns ANSI colors in formatted output on or off.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// Paint wraps text in c when colors are enabled.
func Paint(c Color, text string) string {
	if !colorEnabled {
		return text
	}
	return string(c) + text + reset
}

// Style selects how Fprint renders an error.
type Style int

const (
	StyleText    Style = iota // multi-line with source context and hints
	StyleCompact              // one line: location, code, message
	StyleJSON                 // one JSON object per error
)

// ParseStyle parses "text", "compact" or "json".
func ParseStyle(s string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return StyleText, true
	case "compact":
		return StyleCompact, true
	case "json":
		return StyleJSON, true
	}
	return StyleText, false
}

// Fprint writes err to w in style. Errors without a code are printed with
// their message only.
func Fprint(w io.Writer, err error, style Style) {
	e, ok := asError(err)
	switch style {
	case StyleJSON:
		fmt.Fprintln(w, e.FormatJSON())
	case StyleCompact:
		fmt.Fprintln(w, e.FormatCompact())
	default:
		if ok {
			fmt.Fprint(w, e.Format())
			return
		}
		fmt.Fprintf(w, "%s %s\n", Paint(Red, Paint(Bold, "Error:")), err)
	}
}

// asError returns the first *Error in err's chain, or an uncoded Error
// carrying err's message.
func asError(err error) (*Error, bool) {
	var e *Error
	if As(err, &e) {
		return e, true
	}
	return &Error{Message: err.Error(), Wrapped: err}, false
}

// Format renders the error for a terminal: a header, the source location
// with surrounding lines, the detail and the suggestion.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	header := "ERROR: "
	if e.Code != "" {
		header = "ERROR " + e.Code + ": "
	}
	b.WriteString(Paint(Red, Paint(Bold, header)))
	b.WriteString(Paint(White, e.Message))
	b.WriteString("\n\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", Paint(Cyan, e.Location.String()))
		if len(e.Context) > 0 {
			e.writeContext(&b)
			b.WriteString("\n")
		}
	}

	detail := e.Detail
	if detail == "" {
		if t, ok := registry[e.Code]; ok {
			detail = t.Detail
		}
	}
	if detail != "" {
		for _, line := range wrapText(detail, 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", Paint(Cyan, "Hint: "), e.Suggestion)
	}
	return b.String()
}

// writeContext writes the source lines around the location, marking the
// error line and column.
func (e *Error) writeContext(b *strings.Builder) {
	first := e.Location.Line - len(e.Context)/2
	for i, line := range e.Context {
		num := first + i
		if num != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", num, Paint(Gray, " │ "), line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", Paint(Red, "→ "), num, Paint(Gray, " │ "), line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", Paint(Gray, "│ "), strings.Repeat(" ", e.Location.Column-1), Paint(Red, "^"))
		}
	}
}

// FormatCompact returns "file:line:col: CODE: message (detail)" with the
// parts that are present.
func (e *Error) FormatCompact() string {
	var b strings.Builder
	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Error())
	return b.String()
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category,omitempty"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON returns the error as a single-line JSON object.
func (e *Error) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil && e.Wrapped.Error() != e.Message {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText splits text into lines of at most width characters, breaking
// at spaces.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
