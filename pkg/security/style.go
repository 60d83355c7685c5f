package security

import (
	"regexp"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/vango-dev/tessera/internal/errors"
)

// MaxStyleLength bounds inline style declarations.
const MaxStyleLength = 2048

var (
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	dangerousFragments  = []string{
		"javascript:",
		"vbscript:",
		"livescript:",
		"expression(",
		"behavior:",
		"-moz-binding",
		"</style",
		"<script",
	}
)

// ValidateStyle checks an inline style declaration list. It returns the
// trimmed style or an E100 error describing why it was rejected.
func (p *Policy) ValidateStyle(raw string) (string, error) {
	style := strings.TrimSpace(raw)
	if style == "" {
		return "", nil
	}
	if len(style) > MaxStyleLength {
		return "", rejectStyle("style exceeds %d bytes", MaxStyleLength)
	}

	lower := strings.ToLower(style)
	if strings.ContainsAny(lower, "<>\\") {
		return "", rejectStyle("markup or escape characters")
	}
	for _, frag := range dangerousFragments {
		if strings.Contains(lower, frag) {
			return "", rejectStyle("contains %q", frag)
		}
	}
	if eventHandlerPattern.MatchString(lower) {
		return "", rejectStyle("contains an event handler pattern")
	}

	s := scanner.New(style)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return style, nil
		case scanner.TokenError:
			return "", rejectStyle("malformed CSS at %d:%d", tok.Line, tok.Column)
		case scanner.TokenAtKeyword, scanner.TokenCDO, scanner.TokenCDC:
			return "", rejectStyle("%q is not allowed inline", tok.Value)
		case scanner.TokenURI:
			if !p.safeStyleURL(tok.Value) {
				return "", rejectStyle("unsafe url %q", tok.Value)
			}
		case scanner.TokenFunction:
			if strings.EqualFold(tok.Value, "url(") {
				// url( followed by a quoted string is tokenized as a function.
				arg := s.Next()
				if arg.Type != scanner.TokenString || !p.safeStyleURL("url("+arg.Value+")") {
					return "", rejectStyle("unsafe url argument")
				}
			}
		}
	}
}

// safeStyleURL accepts url(...) tokens pointing at relative or http(s)
// resources, or raster data images when the policy allows them.
func (p *Policy) safeStyleURL(token string) bool {
	inner := strings.TrimSpace(token)
	inner = strings.TrimPrefix(strings.TrimPrefix(inner, "url("), "URL(")
	inner = strings.TrimSuffix(inner, ")")
	inner = strings.Trim(strings.TrimSpace(inner), `"'`)
	if strings.HasPrefix(strings.ToLower(inner), "data:") {
		return p.dataImages && dataImagePattern.MatchString(inner)
	}
	u, ok := parseURL(inner)
	if !ok {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return true
	}
	return false
}

// ValidateCSSToken reports whether token is a single safe CSS value such as
// 12rem, 50%, 4, auto or #fff.
func (p *Policy) ValidateCSSToken(token string) bool {
	if token == "" || len(token) > 64 {
		return false
	}
	s := scanner.New(token)
	first := s.Next()
	switch first.Type {
	case scanner.TokenIdent, scanner.TokenNumber, scanner.TokenPercentage,
		scanner.TokenDimension, scanner.TokenHash:
	default:
		return false
	}
	return s.Next().Type == scanner.TokenEOF
}

// ValidateCSSTokenErr is ValidateCSSToken reporting an E104 error.
func (p *Policy) ValidateCSSTokenErr(token string) error {
	if p.ValidateCSSToken(token) {
		return nil
	}
	return errors.New("E104").WithDetailf("%q", token)
}

func rejectStyle(format string, args ...any) error {
	return errors.New("E100").WithDetailf(format, args...)
}
