package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

const jsFlags = "dgimsuy"

// Matcher is a compiled path predicate that remembers its source text.
type Matcher interface {
	Match(path string) bool
	String() string
}

// Regexp matches paths against a regular expression written as a
// JavaScript-style literal.
type Regexp struct {
	raw string
	re  *regexp.Regexp
}

// Match reports whether the expression matches anywhere in p.
func (r *Regexp) Match(p string) bool { return r.re.MatchString(p) }

// String returns the literal as written.
func (r *Regexp) String() string { return r.raw }

// Expr returns the Go expression the literal compiled to.
func (r *Regexp) Expr() string { return r.re.String() }

// RegexPrefix marks a matcher written as a regex literal, "re:/\.css$/i".
// Every other matcher is a glob.
const RegexPrefix = "re:"

// ParseMatcher compiles raw as a regex literal when it carries RegexPrefix
// and as a glob otherwise.
func ParseMatcher(raw string) (Matcher, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty matcher")
	}
	if lit, ok := strings.CutPrefix(raw, RegexPrefix); ok {
		body, flags, err := splitLiteral(lit)
		if err != nil {
			return nil, fmt.Errorf("regex %s: %w", raw, err)
		}
		return compileLiteral(raw, body, flags)
	}
	return CompileGlob(raw)
}

// splitLiteral takes "/body/flags" apart. The body may contain "/".
func splitLiteral(lit string) (body, flags string, err error) {
	if !strings.HasPrefix(lit, "/") {
		return "", "", fmt.Errorf("expected /body/flags after %q", RegexPrefix)
	}
	end := strings.LastIndexByte(lit, '/')
	if end == 0 {
		return "", "", fmt.Errorf("missing closing /")
	}
	if end == 1 {
		return "", "", fmt.Errorf("empty expression")
	}
	flags = lit[end+1:]
	for _, c := range flags {
		if !strings.ContainsRune(jsFlags, c) {
			return "", "", fmt.Errorf("unknown flag %q", c)
		}
	}
	return lit[1:end], flags, nil
}

func compileLiteral(raw, body, flags string) (*Regexp, error) {
	var prefix strings.Builder
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return nil, fmt.Errorf("regex %s: duplicate flag %q", raw, f)
		}
		seen[f] = true
		switch f {
		case 'i', 'm', 's':
			prefix.WriteRune(f)
		default:
			// d, g, u and y have no meaning for a single path test.
		}
	}
	expr := body
	if prefix.Len() > 0 {
		expr = "(?" + prefix.String() + ")" + body
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("regex %s: %w", raw, err)
	}
	return &Regexp{raw: raw, re: re}, nil
}
