package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/siteplan/internal/config"
	"git.home.luguber.info/inful/siteplan/internal/logfields"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	res, err := load(g, root)
	if err != nil {
		return err
	}
	g.logger().Info("Configuration is valid", logfields.ConfigPath(res.Source), logfields.Snapshot(res.Snapshot))
	return writeSummary(g.out(), res)
}

func writeSummary(w io.Writer, res *config.Result) error {
	ew := &errWriter{w: w}
	ew.printf("%s: ok (%s)\n", res.Source, res.Format)
	if s := res.Site; s != nil {
		ew.printf("  site:     %q, %d sidebar routes, %d nav routes, %d rewrites, %d exclude patterns\n",
			res.SiteMeta.Title, s.Routes().Len(), s.NavRoutes().Len(), len(s.Rewrites()), len(s.ExcludePatterns()))
	}
	if p := res.Plan; p != nil {
		ew.printf("  bundle:   %s, entry %s, %d rules, %d plugins", p.Mode(), p.Target().Entry, len(p.Rules()), len(p.Plugins()))
		if ds := p.DevServer(); ds != nil {
			ew.printf(", dev server %s", ds.Addr())
		}
		ew.printf("\n")
	}
	ew.printf("  snapshot: %s\n", res.Snapshot)
	return ew.err
}

// errWriter keeps the first write error so a report can be written
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
