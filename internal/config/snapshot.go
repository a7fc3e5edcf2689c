package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"git.home.luguber.info/inful/siteplan/internal/nav"
)

// snapshot hashes the resolved content in declaration order. Order is
// significant (a reordered sidebar or rule chain is a different plan), so
// nothing is sorted here. Options maps go through encoding/json, which
// writes keys in sorted order.
func (r *Result) snapshot() string {
	h := sha256.New()
	// Every record is its part count followed by length-prefixed parts, so
	// no text inside a part can move a field boundary.
	w := func(parts ...string) {
		h.Write([]byte(strconv.Itoa(len(parts))))
		for _, p := range parts {
			h.Write([]byte(":" + strconv.Itoa(len(p)) + ":"))
			h.Write([]byte(p))
		}
		h.Write([]byte{'\n'})
	}

	if r.Site != nil {
		w("site.title", r.SiteMeta.Title)
		w("site.description", r.SiteMeta.Description)
		w("site.base", r.SiteMeta.Base)
		if l := r.SiteMeta.Logo; l != nil {
			w("site.logo", l.Light, l.Dark, l.Alt)
		}
		df := r.SiteMeta.DocFooter
		w("site.docFooter", strconv.FormatBool(df.Prev.Hidden), df.Prev.Label, strconv.FormatBool(df.Next.Hidden), df.Next.Label)
		if f := r.SiteMeta.Footer; f != nil {
			w("site.footer", f.Message, f.Copyright)
		}
		if s := r.SiteMeta.Search; s != nil {
			w("site.search", string(s.Provider), canonicalJSON(s.Options))
		}
		forest := func(name string, nodes []nav.Node) {
			nav.Walk(nodes, func(n nav.Node, crumb []string) bool {
				link := ""
				if l, ok := n.(nav.Linked); ok {
					link = l.Link().Target
				}
				w(append([]string{name, n.Kind().String(), link}, crumb...)...)
				return true
			})
		}
		forest("site.nav", r.Site.Nav())
		forest("site.sidebar", r.Site.Sidebar())
		for _, rw := range r.Site.Rewrites() {
			w("site.rewrite", rw.Source, rw.Destination)
		}
		for _, p := range r.Site.ExcludePatterns() {
			w("site.exclude", p)
		}
	}

	if r.Plan != nil {
		t := r.Plan.Target()
		w("bundle.mode", string(r.Plan.Mode()))
		w("bundle.entry", t.Entry)
		w("bundle.output", t.OutputDir, t.Filename, strconv.FormatBool(t.Clean))
		if ds := r.Plan.DevServer(); ds != nil {
			w("bundle.devServer", ds.StaticDir, ds.Host, strconv.Itoa(ds.Port), strconv.FormatBool(ds.Hot))
		}
		for _, rule := range r.Plan.Rules() {
			w("bundle.rule", rule.Test(), rule.Exclude())
			for _, hd := range rule.Handlers() {
				w("bundle.rule.use", hd.Loader, canonicalJSON(hd.Options))
			}
		}
		for _, p := range r.Plan.Plugins() {
			w("bundle.plugin", p.Name, canonicalJSON(p.Options))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalJSON(v map[string]any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
