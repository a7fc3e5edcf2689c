package nav

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/siteplan/internal/pattern"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// RewriteRule maps a source-relative path to a different destination path.
type RewriteRule struct {
	Source      string
	Destination string
}

// Rewriter applies exact-path rewrite rules.
type Rewriter struct {
	rules  []RewriteRule
	lookup map[string]string
}

// NewRewriter validates rules: both sides non-empty, sources unique after
// cleaning, and no two sources sharing a destination.
func NewRewriter(rules []RewriteRule) (*Rewriter, error) {
	rw := &Rewriter{
		rules:  make([]RewriteRule, 0, len(rules)),
		lookup: make(map[string]string, len(rules)),
	}
	bySource := make(map[string]string, len(rules))
	byDestination := make(map[string]string, len(rules))

	for _, rule := range rules {
		at := schema.Path(fmt.Sprintf("rewrites[%q]", rule.Source))
		src := pattern.Clean(rule.Source)
		dst := pattern.Clean(rule.Destination)
		if src == "" {
			return nil, schema.Errorf(at, "rewrite source is empty")
		}
		if dst == "" {
			return nil, schema.Errorf(at, "rewrite destination is empty")
		}
		if prev, dup := bySource[src]; dup {
			return nil, schema.Errorf(at, "source duplicates %q after cleaning", prev)
		}
		if other, taken := byDestination[dst]; taken {
			return nil, &ConflictingRewriteError{Destination: dst, Sources: [2]string{other, src}}
		}
		bySource[src] = rule.Source
		byDestination[dst] = src
		rw.lookup[src] = dst
		rw.rules = append(rw.rules, RewriteRule{Source: src, Destination: dst})
	}
	return rw, nil
}

// Apply returns the destination for p, or p unchanged when no rule matches.
func (r *Rewriter) Apply(p string) string {
	if r == nil {
		return p
	}
	if dst, ok := r.lookup[pattern.Clean(p)]; ok {
		return dst
	}
	return p
}

// Rules returns the cleaned rules in declaration order.
func (r *Rewriter) Rules() []RewriteRule {
	if r == nil {
		return nil
	}
	return slices.Clone(r.rules)
}
