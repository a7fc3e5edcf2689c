package pipeline

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/siteplan/internal/pattern"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// Resolve validates in and builds the BuildPlan. Target and dev server are
// checked first, then rules, then plugins; the first violation is returned.
func Resolve(in Input) (*BuildPlan, error) {
	plan := &BuildPlan{}

	mode, err := resolveMode(in.Mode)
	if err != nil {
		return nil, err
	}
	plan.mode = mode

	if plan.target, err = resolveTarget(in); err != nil {
		return nil, err
	}
	if in.DevServer != nil {
		if plan.devServer, err = resolveDevServer(in.BaseDir, *in.DevServer); err != nil {
			return nil, err
		}
	}
	if plan.rules, err = resolveRules(in.Rules); err != nil {
		return nil, err
	}
	if plan.plugins, err = resolvePlugins(in.Plugins); err != nil {
		return nil, err
	}
	return plan, nil
}

// ValidModes lists the accepted mode names.
func ValidModes() []string { return modes.ValidValues() }

func resolveMode(raw string) (Mode, error) {
	if strings.TrimSpace(raw) == "" {
		return ModeProduction, nil
	}
	if !modes.IsValid(raw) {
		return "", schema.Errorf("mode", "unknown mode %q, expected one of %s", raw, strings.Join(ValidModes(), ", "))
	}
	return modes.Normalize(raw), nil
}

func resolveTarget(in Input) (Target, error) {
	if strings.TrimSpace(in.Entry) == "" {
		return Target{}, schema.Errorf("entry", "required field is missing or empty")
	}
	dir, err := resolveDir("output.path", in.BaseDir, in.Output.Path)
	if err != nil {
		return Target{}, err
	}
	name := in.Output.Filename
	switch {
	case strings.TrimSpace(name) == "":
		return Target{}, schema.Errorf("output.filename", "required field is missing or empty")
	case !filepath.IsLocal(filepath.FromSlash(name)):
		return Target{}, schema.Errorf("output.filename", "%q must be a relative path inside the output directory", name)
	}
	return Target{
		Entry:     in.Entry,
		OutputDir: dir,
		Filename:  name,
		Clean:     in.Output.Clean,
	}, nil
}

func resolveDevServer(base string, in DevServerInput) (*DevServer, error) {
	if in.Port < minPort || in.Port > maxPort {
		return nil, &InvalidPortError{Port: in.Port}
	}
	ds := &DevServer{Port: in.Port, Host: in.Host, Hot: in.Hot}
	if in.Static != "" {
		dir, err := resolveDir("devServer.static", base, in.Static)
		if err != nil {
			return nil, err
		}
		ds.StaticDir = dir
	}
	return ds, nil
}

// resolveDir anchors a relative directory at base and rejects values that
// are blank or collapse to the filesystem root.
func resolveDir(at schema.Path, base, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", schema.Errorf(at, "required field is missing or empty")
	}
	dir := filepath.FromSlash(raw)
	if !filepath.IsAbs(dir) && base != "" {
		dir = filepath.Join(base, dir)
	}
	dir = filepath.Clean(dir)
	if filepath.IsAbs(dir) && filepath.Dir(dir) == dir {
		return "", schema.Errorf(at, "%q resolves to the filesystem root", raw)
	}
	return dir, nil
}

func resolveRules(in []RuleInput) ([]Rule, error) {
	rules := make([]Rule, 0, len(in))
	for i, r := range in {
		at := schema.Path("module.rules").Index(i)
		m, err := parseMatcher(at.Field("test"), r.Test)
		if err != nil {
			return nil, err
		}
		rule := Rule{matcher: m}
		if r.Exclude != "" {
			if rule.exclude, err = parseMatcher(at.Field("exclude"), r.Exclude); err != nil {
				return nil, err
			}
		}
		if len(r.Use) == 0 {
			return nil, &EmptyRuleError{Index: i, Test: r.Test}
		}
		rule.handlers = make([]Handler, len(r.Use))
		for j, h := range r.Use {
			if strings.TrimSpace(h.Loader) == "" {
				return nil, schema.Errorf(at.Field("use").Index(j).Field("loader"), "required field is missing or empty")
			}
			rule.handlers[j] = Handler{Loader: h.Loader, Options: cloneOptions(h.Options)}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseMatcher(at schema.Path, raw string) (pattern.Matcher, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, schema.Errorf(at, "required field is missing or empty")
	}
	m, err := pattern.ParseMatcher(raw)
	if err != nil {
		return nil, schema.Errorf(at, "%v", err)
	}
	return m, nil
}

func resolvePlugins(in []Plugin) ([]Plugin, error) {
	out := make([]Plugin, len(in))
	for i, p := range in {
		if strings.TrimSpace(p.Name) == "" {
			return nil, schema.Errorf(schema.Path("plugins").Index(i).Field("name"), "required field is missing or empty")
		}
		out[i] = Plugin{Name: p.Name, Options: cloneOptions(p.Options)}
	}
	return out, nil
}
