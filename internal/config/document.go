package config

import (
	"strings"

	"git.home.luguber.info/inful/siteplan/internal/nav"
	"git.home.luguber.info/inful/siteplan/internal/pipeline"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// Site is the descriptive part of the site section.
type Site struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Base        string `json:"base,omitempty" yaml:"base,omitempty"`

	Logo      *Logo     `json:"logo,omitempty" yaml:"logo,omitempty"`
	DocFooter DocFooter `json:"docFooter" yaml:"docFooter"`
	Footer    *Footer   `json:"footer,omitempty" yaml:"footer,omitempty"`
	Search    *Search   `json:"search,omitempty" yaml:"search,omitempty"`
}

// sections splits the document root. Either section may be nil.
func sections(tree any) (site, bundle any, err error) {
	root, err := schema.AsObject("", tree)
	if err != nil {
		return nil, nil, err
	}
	site, _ = root.Raw("site")
	bundle, _ = root.Raw("bundle")
	if err := root.Done(); err != nil {
		return nil, nil, err
	}
	if site == nil && bundle == nil {
		return nil, nil, schema.Errorf("", "document needs a site or a bundle section")
	}
	return site, bundle, nil
}

func decodeSite(v any) (Site, nav.Input, error) {
	var (
		meta Site
		in   nav.Input
	)
	obj, err := schema.AsObject("", v)
	if err != nil {
		return meta, in, err
	}
	if meta.Title, err = obj.String("title"); err != nil {
		return meta, in, err
	}
	if meta.Description, err = obj.String("description"); err != nil {
		return meta, in, err
	}
	if meta.Base, err = obj.String("base"); err != nil {
		return meta, in, err
	}
	if meta.Base != "" && (!strings.HasPrefix(meta.Base, "/") || !strings.HasSuffix(meta.Base, "/")) {
		return meta, in, schema.Errorf("base", "%q must start and end with /", meta.Base)
	}
	if err := decodeTheme(obj, &meta); err != nil {
		return meta, in, err
	}

	for _, forest := range []struct {
		key string
		dst *[]nav.Item
	}{{nav.ForestNav, &in.Nav}, {nav.ForestSidebar, &in.Sidebar}} {
		list, err := obj.List(forest.key)
		if err != nil {
			return meta, in, err
		}
		if *forest.dst, err = decodeItems(schema.Path(forest.key), list); err != nil {
			return meta, in, err
		}
	}

	rewrites, err := obj.Object("rewrites")
	if err != nil {
		return meta, in, err
	}
	if rewrites != nil {
		for _, src := range rewrites.Keys() {
			raw, _ := rewrites.Raw(src)
			dst, err := schema.String(schema.Path("rewrites").Field(src), raw)
			if err != nil {
				return meta, in, err
			}
			in.Rewrites = append(in.Rewrites, nav.RewriteRule{Source: src, Destination: dst})
		}
	}

	if in.Exclude, err = stringList(obj, "srcExclude"); err != nil {
		return meta, in, err
	}
	return meta, in, obj.Done()
}

func decodeItems(at schema.Path, list []any) ([]nav.Item, error) {
	if list == nil {
		return nil, nil
	}
	items := make([]nav.Item, len(list))
	for i, raw := range list {
		obj, err := schema.AsObject(at.Index(i), raw)
		if err != nil {
			return nil, err
		}
		if items[i].Text, err = obj.String("text"); err != nil {
			return nil, err
		}
		if items[i].Link, err = obj.String("link"); err != nil {
			return nil, err
		}
		children, err := obj.List("items")
		if err != nil {
			return nil, err
		}
		if items[i].Items, err = decodeItems(obj.Path().Field("items"), children); err != nil {
			return nil, err
		}
		if err := obj.Done(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func decodeBundle(v any, baseDir string) (pipeline.Input, error) {
	in := pipeline.Input{BaseDir: baseDir}
	obj, err := schema.AsObject("", v)
	if err != nil {
		return in, err
	}
	if in.Mode, err = obj.String("mode"); err != nil {
		return in, err
	}
	if in.Entry, err = obj.String("entry"); err != nil {
		return in, err
	}
	if in.Output, err = decodeOutput(obj); err != nil {
		return in, err
	}
	if in.DevServer, err = decodeDevServer(obj); err != nil {
		return in, err
	}
	if in.Rules, err = decodeModule(obj); err != nil {
		return in, err
	}
	if in.Plugins, err = decodePlugins(obj); err != nil {
		return in, err
	}
	return in, obj.Done()
}

func decodeOutput(bundle *schema.Object) (pipeline.Output, error) {
	var out pipeline.Output
	obj, err := bundle.Object("output")
	if err != nil || obj == nil {
		return out, err
	}
	if out.Path, err = obj.String("path"); err != nil {
		return out, err
	}
	if out.Filename, err = obj.String("filename"); err != nil {
		return out, err
	}
	if out.Clean, err = obj.Bool("clean"); err != nil {
		return out, err
	}
	return out, obj.Done()
}

func decodeDevServer(bundle *schema.Object) (*pipeline.DevServerInput, error) {
	obj, err := bundle.Object("devServer")
	if err != nil || obj == nil {
		return nil, err
	}
	ds := &pipeline.DevServerInput{}
	if ds.Static, err = obj.String("static"); err != nil {
		return nil, err
	}
	if ds.Port, err = obj.Int("port"); err != nil {
		return nil, err
	}
	if ds.Host, err = obj.String("host"); err != nil {
		return nil, err
	}
	if ds.Hot, err = obj.Bool("hot"); err != nil {
		return nil, err
	}
	return ds, obj.Done()
}

func decodeModule(bundle *schema.Object) ([]pipeline.RuleInput, error) {
	module, err := bundle.Object("module")
	if err != nil || module == nil {
		return nil, err
	}
	list, err := module.List("rules")
	if err != nil {
		return nil, err
	}
	rules := make([]pipeline.RuleInput, len(list))
	for i, raw := range list {
		if rules[i], err = decodeRule(module.Path().Field("rules").Index(i), raw); err != nil {
			return nil, err
		}
	}
	return rules, module.Done()
}

// decodeRule accepts webpack's two spellings: use (string or list) and the
// single-handler shorthand loader + options.
func decodeRule(at schema.Path, raw any) (pipeline.RuleInput, error) {
	var r pipeline.RuleInput
	obj, err := schema.AsObject(at, raw)
	if err != nil {
		return r, err
	}
	if r.Test, err = obj.String("test"); err != nil {
		return r, err
	}
	if r.Exclude, err = obj.String("exclude"); err != nil {
		return r, err
	}

	switch {
	case obj.Has("use") && obj.Has("loader"):
		return r, schema.Errorf(at.Field("loader"), "use and loader are mutually exclusive")
	case obj.Has("loader"):
		h, err := decodeHandlerObject(obj)
		if err != nil {
			return r, err
		}
		r.Use = []pipeline.Handler{h}
	default:
		use, _ := obj.Raw("use")
		if r.Use, err = decodeUse(at.Field("use"), use); err != nil {
			return r, err
		}
	}
	return r, obj.Done()
}

func decodeUse(at schema.Path, raw any) ([]pipeline.Handler, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []pipeline.Handler{{Loader: v}}, nil
	}
	list, err := schema.List(at, raw)
	if err != nil {
		return nil, schema.Errorf(at, "expected a loader name or a sequence of loaders")
	}
	handlers := make([]pipeline.Handler, len(list))
	for i, item := range list {
		if s, ok := item.(string); ok {
			handlers[i] = pipeline.Handler{Loader: s}
			continue
		}
		obj, err := schema.AsObject(at.Index(i), item)
		if err != nil {
			return nil, err
		}
		if handlers[i], err = decodeHandlerObject(obj); err != nil {
			return nil, err
		}
		if err := obj.Done(); err != nil {
			return nil, err
		}
	}
	return handlers, nil
}

func decodeHandlerObject(obj *schema.Object) (pipeline.Handler, error) {
	var (
		h   pipeline.Handler
		err error
	)
	if h.Loader, err = obj.String("loader"); err != nil {
		return h, err
	}
	h.Options, err = optionsMap(obj)
	return h, err
}

func decodePlugins(bundle *schema.Object) ([]pipeline.Plugin, error) {
	list, err := bundle.List("plugins")
	if err != nil {
		return nil, err
	}
	at := bundle.Path().Field("plugins")
	plugins := make([]pipeline.Plugin, len(list))
	for i, item := range list {
		if s, ok := item.(string); ok {
			plugins[i] = pipeline.Plugin{Name: s}
			continue
		}
		obj, err := schema.AsObject(at.Index(i), item)
		if err != nil {
			return nil, err
		}
		if plugins[i].Name, err = obj.String("name"); err != nil {
			return nil, err
		}
		if plugins[i].Options, err = optionsMap(obj); err != nil {
			return nil, err
		}
		if err := obj.Done(); err != nil {
			return nil, err
		}
	}
	return plugins, nil
}

// optionsMap reads a free-form options mapping as a private deep copy.
func optionsMap(obj *schema.Object) (map[string]any, error) {
	raw, ok := obj.Raw("options")
	if !ok {
		return nil, nil
	}
	at := obj.Path().Field("options")
	if _, err := schema.AsObject(at, raw); err != nil {
		return nil, err
	}
	plain, err := schema.Plain(at, raw)
	if err != nil {
		return nil, err
	}
	return plain.(map[string]any), nil
}

func stringList(obj *schema.Object, key string) ([]string, error) {
	list, err := obj.List(key)
	if err != nil || list == nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, item := range list {
		if out[i], err = schema.String(obj.Path().Field(key).Index(i), item); err != nil {
			return nil, err
		}
	}
	return out, nil
}
