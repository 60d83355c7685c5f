package vtest

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/tessera/pkg/markup"
)

// Render renders n and fails the test on error.
//
// Example:
//
//	out := vtest.Render(t, page)
func Render(t testing.TB, n *markup.Node) string {
	t.Helper()
	out, err := markup.Render(n)
	if err != nil {
		t.Fatalf("render <%s>: %v", n.Tag(), err)
	}
	return out
}

// ExpectContains asserts that rendered output contains expected.
func ExpectContains(t testing.TB, n *markup.Node, expected string) {
	t.Helper()
	out := Render(t, n)
	if !strings.Contains(out, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(out, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain
// unexpected.
func ExpectNotContains(t testing.TB, n *markup.Node, unexpected string) {
	t.Helper()
	out := Render(t, n)
	if strings.Contains(out, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(out, 500))
	}
}

// ExpectElement asserts that the parsed output contains a tag element.
//
// Example:
//
//	vtest.ExpectElement(t, page, "button")
func ExpectElement(t testing.TB, n *markup.Node, tag string) {
	t.Helper()
	out := Render(t, n)
	if Find(ParseFragment(t, out), tag) == nil {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(out, 500))
	}
}

// ExpectAttribute asserts that some element in the output has attr set to
// value. For class, value may be any one of the element's classes.
//
// Example:
//
//	vtest.ExpectAttribute(t, page, "class", "btn-primary")
func ExpectAttribute(t testing.TB, n *markup.Node, attr, value string) {
	t.Helper()
	out := Render(t, n)
	found := false
	walk(ParseFragment(t, out), func(e *html.Node) bool {
		if attr == "class" {
			for _, c := range Classes(e) {
				if c == value {
					found = true
				}
			}
		} else if v, ok := AttrOf(e, attr); ok && v == value {
			found = true
		}
		return !found
	})
	if !found {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(out, 500))
	}
}

// ParseFragment parses markup as the children of a <body> element.
func ParseFragment(t testing.TB, src string) []*html.Node {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return nodes
}

// Find returns the first element named tag in document order, or nil.
func Find(nodes []*html.Node, tag string) *html.Node {
	var found *html.Node
	walk(nodes, func(e *html.Node) bool {
		if e.Data == tag {
			found = e
			return false
		}
		return true
	})
	return found
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := AttrOf(n, "class")
	return strings.Fields(v)
}

// AttrOf returns the value of attribute key on n.
func AttrOf(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	if n != nil {
		collect(n)
	}
	return b.String()
}

// walk visits element nodes depth-first until fn returns false.
func walk(nodes []*html.Node, fn func(*html.Node) bool) bool {
	for _, n := range nodes {
		if n.Type == html.ElementNode && !fn(n) {
			return false
		}
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		if !walk(children, fn) {
			return false
		}
	}
	return true
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
