// Package vtest provides helpers for testing code that builds markup trees.
//
// Render fails the test on a render error, and the Expect helpers assert on
// the output:
//
//	func TestCard(t *testing.T) {
//	    n := Card("Title")
//	    vtest.ExpectElement(t, n, "h2")
//	    vtest.ExpectAttribute(t, n, "class", "card")
//	}
//
// For structural assertions, parse the output with ParseFragment and walk
// it with Find, Classes, AttrOf and Text. Parsing goes through
// golang.org/x/net/html, so a fragment that parses to an unexpected shape
// usually means the serializer produced malformed markup.
package vtest
