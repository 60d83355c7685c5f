// Package errors provides structured, coded errors for Tessera.
//
// Every failure the engine can report has a registered code that maps to a
// category, a short message and a longer explanation:
//
//   - validation: unsafe style, URL, attribute or data input (E100-E119).
//     These are logged and the offending fragment is dropped.
//   - config: unknown layout enums and bad configuration files (E120-E139).
//   - structure: nesting beyond the configured depth ceiling (E140-E159).
//   - render: any other failure while serializing a tree (E160-E179).
//   - export, cli: tooling failures (E180-E199).
//
// # Usage
//
//	err := errors.New("E140").
//	    WithDetail("depth 51 exceeds maxDepth 50").
//	    WithSuggestion("Flatten the tree or raise render.maxDepth")
//
//	if errors.Is(err, errors.New("E140")) { ... }
//
// Errors compare by code, so a freshly constructed error with the same code
// works as a sentinel for the standard library errors.Is.
//
// Format renders an error for terminal display:
//
//	ERROR E201: Invalid tree document
//
//	  pages/home.yaml:12:5
//
//	    11 │ children:
//	  → 12 │   - tag: "<div>"
//	       │     ^
//
//	  Hint: Tag names must be lowercase letters, digits and dashes
//
// Fprint writes an error in that style, as one compact line, or as a JSON
// object (see ParseStyle). SetColor(false) turns the colors off.
package errors
