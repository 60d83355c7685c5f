package markup

import "regexp"

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid reports whether tag is a void element.
func IsVoid(tag string) bool {
	return voidElements[tag]
}

var tagPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(-[a-zA-Z0-9]+)*$`)

// ValidTag reports whether tag is an acceptable element name. Custom
// elements with dashes are allowed.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// Element shortcuts.

func Div(args ...any) *Node     { return Create("div", args...) }
func Span(args ...any) *Node    { return Create("span", args...) }
func P(args ...any) *Node       { return Create("p", args...) }
func A(args ...any) *Node       { return Create("a", args...) }
func Button(args ...any) *Node  { return Create("button", args...) }
func Img(args ...any) *Node     { return Create("img", args...) }
func Ul(args ...any) *Node      { return Create("ul", args...) }
func Li(args ...any) *Node      { return Create("li", args...) }
func Section(args ...any) *Node { return Create("section", args...) }
func Header(args ...any) *Node  { return Create("header", args...) }
func Footer(args ...any) *Node  { return Create("footer", args...) }
func Main(args ...any) *Node    { return Create("main", args...) }
func Nav(args ...any) *Node     { return Create("nav", args...) }
func H1(args ...any) *Node      { return Create("h1", args...) }
func H2(args ...any) *Node      { return Create("h2", args...) }
func H3(args ...any) *Node      { return Create("h3", args...) }
func Input(args ...any) *Node   { return Create("input", args...) }
func Label(args ...any) *Node   { return Create("label", args...) }
func Form(args ...any) *Node    { return Create("form", args...) }
func Br(args ...any) *Node      { return Create("br", args...) }
func Hr(args ...any) *Node      { return Create("hr", args...) }

// Text creates an escaped text node.
func Text(s string) *Node {
	return newLeaf(defaultOptions, KindText, s)
}

// Raw creates a node whose content is emitted verbatim. Only pass markup
// that is already safe, such as the output of a sanitizer.
func Raw(html string) *Node {
	return newLeaf(defaultOptions, KindRaw, html)
}
