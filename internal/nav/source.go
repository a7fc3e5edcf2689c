package nav

import (
	"strings"

	"git.home.luguber.info/inful/siteplan/internal/pattern"
)

const markdownExt = ".md"

// SourceRoute returns the route a markdown source is published under.
// Excluded and non-markdown sources have no route. Rewrites apply before
// the extension is dropped, and index pages map to their directory:
//
//	README.md  (rewritten to index.md)  ->  /
//	guide/index.md                      ->  /guide/
//	examples/01-basic-usage.md          ->  /examples/01-basic-usage
func (r *Resolved) SourceRoute(src string) (string, bool) {
	p := pattern.Clean(src)
	if p == "" || r.IsExcluded(p) || !strings.HasSuffix(p, markdownExt) {
		return "", false
	}
	p = pattern.Clean(r.ApplyRewrite(p))
	if !strings.HasSuffix(p, markdownExt) {
		return "", false
	}
	p = strings.TrimSuffix(p, markdownExt)

	switch {
	case p == "index":
		return "/", true
	case strings.HasSuffix(p, "/index"):
		return "/" + strings.TrimSuffix(p, "index"), true
	default:
		return "/" + p, true
	}
}
