package pipeline

import (
	"maps"
	"net"
	"slices"
	"strconv"

	"git.home.luguber.info/inful/siteplan/internal/foundation/normalization"
	"git.home.luguber.info/inful/siteplan/internal/pattern"
)

// Mode is the bundler environment discriminator.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
	ModeNone        Mode = "none"
)

// An absent mode means production, as webpack documents.
var modes = normalization.NewEnumNormalizer("mode", map[string]Mode{
	"development": ModeDevelopment,
	"production":  ModeProduction,
	"none":        ModeNone,
}, ModeProduction)

const (
	minPort = 1
	maxPort = 65535
)

// Input is the pipeline sub-tree of a configuration document.
type Input struct {
	Mode      string
	Entry     string
	Output    Output
	DevServer *DevServerInput
	Rules     []RuleInput
	Plugins   []Plugin
	// BaseDir anchors relative output and static directories. Empty keeps
	// them relative.
	BaseDir string
}

// Output is the raw output section.
type Output struct {
	Path     string
	Filename string
	Clean    bool
}

// DevServerInput is the raw devServer section.
type DevServerInput struct {
	Static string
	Port   int
	Host   string
	Hot    bool
}

// RuleInput is one authored module rule.
type RuleInput struct {
	Test    string
	Exclude string
	Use     []Handler
}

// Handler is one transform step of a rule, a loader in webpack terms.
type Handler struct {
	Loader  string
	Options map[string]any
}

// Plugin is a plugin descriptor. Duplicates are legal.
type Plugin struct {
	Name    string
	Options map[string]any
}

// Target is the resolved entry and output.
type Target struct {
	Entry     string
	OutputDir string
	Filename  string
	Clean     bool
}

// DevServer is the resolved dev server section.
type DevServer struct {
	StaticDir string
	Port      int
	Host      string
	Hot       bool
}

// Addr returns the listen address in host:port form.
func (d DevServer) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Rule is a resolved transform rule.
type Rule struct {
	matcher  pattern.Matcher
	exclude  pattern.Matcher
	handlers []Handler
}

// Test returns the matcher exactly as authored.
func (r Rule) Test() string { return r.matcher.String() }

// Exclude returns the exclusion matcher as authored, or "".
func (r Rule) Exclude() string {
	if r.exclude == nil {
		return ""
	}
	return r.exclude.String()
}

// Handlers returns the handler chain in declared order.
func (r Rule) Handlers() []Handler { return cloneHandlers(r.handlers) }

// Loaders returns just the handler names in declared order.
func (r Rule) Loaders() []string {
	out := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		out[i] = h.Loader
	}
	return out
}

// Match reports whether the rule applies to a module path.
func (r Rule) Match(path string) bool {
	if !r.matcher.Match(path) {
		return false
	}
	return r.exclude == nil || !r.exclude.Match(path)
}

// BuildPlan is the fully resolved, immutable bundler description.
type BuildPlan struct {
	mode      Mode
	target    Target
	rules     []Rule
	plugins   []Plugin
	devServer *DevServer
}

func (p *BuildPlan) Mode() Mode     { return p.mode }
func (p *BuildPlan) Target() Target { return p.target }

// Rules returns the rules in declared order.
func (p *BuildPlan) Rules() []Rule {
	out := slices.Clone(p.rules)
	for i := range out {
		out[i].handlers = cloneHandlers(out[i].handlers)
	}
	return out
}

// Plugins returns the plugins in declared order.
func (p *BuildPlan) Plugins() []Plugin {
	out := make([]Plugin, len(p.plugins))
	for i, pl := range p.plugins {
		out[i] = Plugin{Name: pl.Name, Options: cloneOptions(pl.Options)}
	}
	return out
}

// DevServer returns the dev server settings, or nil when none were configured.
func (p *BuildPlan) DevServer() *DevServer {
	if p.devServer == nil {
		return nil
	}
	d := *p.devServer
	return &d
}

// RulesFor returns, in declared order, the rules that apply to a module path.
func (p *BuildPlan) RulesFor(path string) []Rule {
	var out []Rule
	for _, r := range p.rules {
		if r.Match(path) {
			r.handlers = cloneHandlers(r.handlers)
			out = append(out, r)
		}
	}
	return out
}

func cloneHandlers(hs []Handler) []Handler {
	if hs == nil {
		return nil
	}
	out := make([]Handler, len(hs))
	for i, h := range hs {
		out[i] = Handler{Loader: h.Loader, Options: cloneOptions(h.Options)}
	}
	return out
}

func cloneOptions(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneOptions(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
