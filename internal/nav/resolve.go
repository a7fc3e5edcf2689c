package nav

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"git.home.luguber.info/inful/siteplan/internal/pattern"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// Forest names used in error paths.
const (
	ForestNav     = "nav"
	ForestSidebar = "sidebar"
)

// Input is the navigation sub-tree of a site configuration.
type Input struct {
	Nav      []Item
	Sidebar  []Item
	Rewrites []RewriteRule
	Exclude  []string
}

// Resolved is the validated navigation plan handed to a renderer.
type Resolved struct {
	nav       []Node
	sidebar   []Node
	navRoutes *RouteIndex
	routes    *RouteIndex
	exclude   *pattern.Set
	rewriter  *Rewriter
}

// Resolve validates in and builds the navigation plan. It has no side
// effects and either fully succeeds or returns the first error.
func Resolve(in Input) (*Resolved, error) {
	navTree, navRoutes, err := ResolveForest(ForestNav, in.Nav)
	if err != nil {
		return nil, err
	}
	sidebar, routes, err := ResolveForest(ForestSidebar, in.Sidebar)
	if err != nil {
		return nil, err
	}

	exclude, err := pattern.CompileSet(in.Exclude)
	if err != nil {
		var ce *pattern.CompileError
		if errors.As(err, &ce) {
			return nil, schema.Errorf(schema.Path("srcExclude").Index(ce.Index), "%v", ce.Err)
		}
		return nil, schema.Errorf("srcExclude", "%v", err)
	}

	rewriter, err := NewRewriter(in.Rewrites)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		nav:       navTree,
		sidebar:   sidebar,
		navRoutes: navRoutes,
		routes:    routes,
		exclude:   exclude,
		rewriter:  rewriter,
	}, nil
}

// ResolveForest validates one forest and indexes its internal links.
// name prefixes error paths ("sidebar[1].items[0].link").
func ResolveForest(name string, items []Item) ([]Node, *RouteIndex, error) {
	r := &forestResolver{name: name, index: newRouteIndex()}
	nodes, err := r.resolve(schema.Path(name), items, nil)
	if err != nil {
		return nil, nil, err
	}
	return nodes, r.index, nil
}

type forestResolver struct {
	name  string
	index *RouteIndex
}

func (r *forestResolver) resolve(at schema.Path, items []Item, parents []string) ([]Node, error) {
	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		n, err := r.resolveItem(at.Index(i), item, parents)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (r *forestResolver) resolveItem(at schema.Path, item Item, parents []string) (Node, error) {
	if strings.TrimSpace(item.Text) == "" {
		return nil, schema.Errorf(at.Field("text"), "required field is missing or empty")
	}
	crumb := append(slices.Clip(parents), item.Text)

	var link Link
	hasLink := item.Link != ""
	if hasLink {
		var err error
		if link, err = parseLink(at.Field("link"), item.Link); err != nil {
			return nil, err
		}
		if !link.External {
			if err := r.add(link.Target, crumb); err != nil {
				return nil, err
			}
		}
	}

	if len(item.Items) == 0 {
		if !hasLink {
			return nil, schema.Errorf(at, "entry %q has neither a link nor items", item.Text)
		}
		return &Leaf{text: item.Text, link: link}, nil
	}

	children, err := r.resolve(at.Field("items"), item.Items, crumb)
	if err != nil {
		return nil, err
	}
	if hasLink {
		return &Mixed{text: item.Text, link: link, children: children}, nil
	}
	return &Group{text: item.Text, children: children}, nil
}

func (r *forestResolver) add(route string, crumb []string) error {
	if first, dup := r.index.crumbs[route]; dup {
		return &DuplicateRouteError{
			Forest: r.name,
			Route:  route,
			First:  slices.Clone(first),
			Second: slices.Clone(crumb),
		}
	}
	r.index.order = append(r.index.order, route)
	r.index.crumbs[route] = slices.Clone(crumb)
	return nil
}

// parseLink accepts an internal route ("/", "/guide#setup") or an absolute
// external URL with scheme and host.
func parseLink(at schema.Path, raw string) (Link, error) {
	if strings.TrimSpace(raw) != raw || raw == "" {
		return Link{}, schema.Errorf(at, "link %q is blank or padded with whitespace", raw)
	}
	if strings.HasPrefix(raw, "//") {
		return Link{}, schema.Errorf(at, "protocol-relative link %q is ambiguous", raw)
	}
	if strings.HasPrefix(raw, "/") {
		return Link{Target: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Link{}, schema.Errorf(at, "link %q must start with / or be an absolute URL", raw)
	}
	return Link{Target: raw, External: true}, nil
}

// Nav returns the resolved top-bar forest.
func (r *Resolved) Nav() []Node { return slices.Clone(r.nav) }

// Sidebar returns the resolved sidebar forest.
func (r *Resolved) Sidebar() []Node { return slices.Clone(r.sidebar) }

// NavRoutes returns the route index of the top-bar forest.
func (r *Resolved) NavRoutes() *RouteIndex { return r.navRoutes }

// Routes returns the route index of the sidebar forest.
func (r *Resolved) Routes() *RouteIndex { return r.routes }

// IsExcluded reports whether a source path is removed from processing.
func (r *Resolved) IsExcluded(p string) bool { return r.exclude.Match(p) }

// ExcludePatterns returns the exclusion patterns as written.
func (r *Resolved) ExcludePatterns() []string { return r.exclude.Patterns() }

// ApplyRewrite maps a source path through the rewrite rules; unmapped
// paths are returned unchanged.
func (r *Resolved) ApplyRewrite(p string) string { return r.rewriter.Apply(p) }

// Rewrites returns the cleaned rewrite rules.
func (r *Resolved) Rewrites() []RewriteRule { return r.rewriter.Rules() }
