package commands

import (
	"encoding/json"
	"strings"
	"text/tabwriter"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/nav"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
	Top  bool `help:"Print the top navigation bar instead of the sidebar"`
}

type routeView struct {
	Route      string   `json:"route"`
	Breadcrumb []string `json:"breadcrumb"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	res, err := load(g, root)
	if err != nil {
		return err
	}
	if res.Site == nil {
		return ferrors.ConfigError("configuration has no site section").
			WithContext("path", res.Source).
			Build()
	}

	index := res.Site.Routes()
	if r.Top {
		index = res.Site.NavRoutes()
	}
	routes := index.Routes()

	if r.JSON {
		views := make([]routeView, len(routes))
		for i, rt := range routes {
			views[i] = routeView{Route: rt.Path, Breadcrumb: rt.Breadcrumb}
		}
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	return writeRoutes(g, routes)
}

func writeRoutes(g *Global, routes []nav.Route) error {
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	ew := &errWriter{w: tw}
	ew.printf("ROUTE\tBREADCRUMB\n")
	for _, rt := range routes {
		ew.printf("%s\t%s\n", rt.Path, strings.Join(rt.Breadcrumb, " > "))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}
