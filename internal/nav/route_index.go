package nav

import "slices"

// Route is one entry of a RouteIndex.
type Route struct {
	Path       string
	Breadcrumb []string
}

// RouteIndex maps every internal link of a forest to its breadcrumb and
// remembers declaration order.
type RouteIndex struct {
	order  []string
	crumbs map[string][]string
}

func newRouteIndex() *RouteIndex {
	return &RouteIndex{crumbs: make(map[string][]string)}
}

// Lookup returns the breadcrumb for route.
func (r *RouteIndex) Lookup(route string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	crumb, ok := r.crumbs[route]
	return slices.Clone(crumb), ok
}

// Len returns the number of routes.
func (r *RouteIndex) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Routes lists routes in the order they were first declared.
func (r *RouteIndex) Routes() []Route {
	if r == nil {
		return nil
	}
	out := make([]Route, len(r.order))
	for i, p := range r.order {
		out[i] = Route{Path: p, Breadcrumb: slices.Clone(r.crumbs[p])}
	}
	return out
}

// Map returns a copy of the index as a plain map.
func (r *RouteIndex) Map() map[string][]string {
	out := make(map[string][]string, r.Len())
	if r == nil {
		return out
	}
	for p, crumb := range r.crumbs {
		out[p] = slices.Clone(crumb)
	}
	return out
}
