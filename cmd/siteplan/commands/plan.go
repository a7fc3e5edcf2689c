package commands

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/foundation/normalization"
	"git.home.luguber.info/inful/siteplan/internal/pipeline"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Format string `short:"f" help:"Output format: yaml or json" default:"yaml"`
}

var planFormats = normalization.NewEnumNormalizer("plan format", map[string]string{
	"yaml": "yaml",
	"yml":  "yaml",
	"json": "json",
}, "yaml")

type planView struct {
	Mode      string         `json:"mode" yaml:"mode"`
	Entry     string         `json:"entry" yaml:"entry"`
	Output    outputView     `json:"output" yaml:"output"`
	DevServer *devServerView `json:"devServer,omitempty" yaml:"devServer,omitempty"`
	Rules     []ruleView     `json:"rules" yaml:"rules"`
	Plugins   []pluginView   `json:"plugins" yaml:"plugins"`
}

type outputView struct {
	Path     string `json:"path" yaml:"path"`
	Filename string `json:"filename" yaml:"filename"`
	Clean    bool   `json:"clean" yaml:"clean"`
}

type devServerView struct {
	Static string `json:"static,omitempty" yaml:"static,omitempty"`
	Host   string `json:"host,omitempty" yaml:"host,omitempty"`
	Port   int    `json:"port" yaml:"port"`
	Hot    bool   `json:"hot" yaml:"hot"`
}

type ruleView struct {
	Test    string        `json:"test" yaml:"test"`
	Exclude string        `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Use     []handlerView `json:"use" yaml:"use"`
}

type handlerView struct {
	Loader  string         `json:"loader" yaml:"loader"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

type pluginView struct {
	Name    string         `json:"name" yaml:"name"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	format, err := planFormats.NormalizeWithValidation(p.Format)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid --format").Build()
	}
	res, err := load(g, root)
	if err != nil {
		return err
	}
	if res.Plan == nil {
		return ferrors.ConfigError("configuration has no bundle section").
			WithContext("path", res.Source).
			Build()
	}

	view := newPlanView(res.Plan)
	if format == "json" {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	enc := yaml.NewEncoder(g.out())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}

func newPlanView(plan *pipeline.BuildPlan) planView {
	t := plan.Target()
	v := planView{
		Mode:    string(plan.Mode()),
		Entry:   t.Entry,
		Output:  outputView{Path: t.OutputDir, Filename: t.Filename, Clean: t.Clean},
		Rules:   []ruleView{},
		Plugins: []pluginView{},
	}
	if ds := plan.DevServer(); ds != nil {
		v.DevServer = &devServerView{Static: ds.StaticDir, Host: ds.Host, Port: ds.Port, Hot: ds.Hot}
	}
	for _, r := range plan.Rules() {
		rv := ruleView{Test: r.Test(), Exclude: r.Exclude()}
		for _, h := range r.Handlers() {
			rv.Use = append(rv.Use, handlerView{Loader: h.Loader, Options: h.Options})
		}
		v.Rules = append(v.Rules, rv)
	}
	for _, pl := range plan.Plugins() {
		v.Plugins = append(v.Plugins, pluginView{Name: pl.Name, Options: pl.Options})
	}
	return v
}
