// Package security implements the validators the markup builder consults
// before it accepts style, URL, attribute and data input.
//
// A Policy is immutable once built and safe for concurrent use. Rejections
// are reported as *errors.Error values with validation codes (E100-E104);
// the builder logs them and drops the offending fragment, so nothing here
// ever aborts a render.
//
//	p := security.New(security.Config{AllowedImageDomains: []string{"cdn.example.com"}})
//	if _, err := p.ValidateStyle("background:url(javascript:alert(1))"); err != nil {
//	    // rejected: E100
//	}
package security
