package commands

import "strings"

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Paths []string `arg:"" name:"path" help:"Source paths relative to the documentation root"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	res, err := load(g, root)
	if err != nil {
		return err
	}
	ew := &errWriter{w: g.out()}
	for _, p := range c.Paths {
		ew.printf("%s\n", p)
		if site := res.Site; site != nil {
			ew.printf("  excluded: %t\n", site.IsExcluded(p))
			ew.printf("  rewrite:  %s\n", site.ApplyRewrite(p))
			if route, ok := site.SourceRoute(p); ok {
				ew.printf("  route:    %s\n", route)
				if crumb, found := site.Routes().Lookup(route); found {
					ew.printf("  sidebar:  %s\n", strings.Join(crumb, " > "))
				}
			} else {
				ew.printf("  route:    -\n")
			}
		}
		if plan := res.Plan; plan != nil {
			var tests []string
			for _, r := range plan.RulesFor(p) {
				tests = append(tests, r.Test()+" -> "+strings.Join(r.Loaders(), ", "))
			}
			if len(tests) == 0 {
				ew.printf("  rules:    -\n")
			}
			for i, t := range tests {
				label := "  rules:    "
				if i > 0 {
					label = "            "
				}
				ew.printf("%s%s\n", label, t)
			}
		}
	}
	return ew.err
}
