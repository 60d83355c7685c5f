// Package tokens holds the lookup tables that map layout enums to utility
// class keywords.
//
// Every lookup is total: an unknown value resolves to the documented default
// and reports ok=false so callers can log the fallback. Nothing here returns
// an error.
//
//	cls, ok := tokens.AlignmentClass("baseline") // "items-baseline", true
//	cls, ok = tokens.AlignmentClass("diagonal")  // "items-center", false
package tokens
