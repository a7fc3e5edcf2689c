package config

import (
	"strings"

	"git.home.luguber.info/inful/siteplan/internal/foundation/normalization"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

// Logo is the image shown next to the site title. A plain string in the
// document sets both variants.
type Logo struct {
	Light string `json:"light,omitempty" yaml:"light,omitempty"`
	Dark  string `json:"dark,omitempty" yaml:"dark,omitempty"`
	Alt   string `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// FooterLink is one side of the previous/next links under each page.
// The zero value shows the link with the theme's default label.
type FooterLink struct {
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DocFooter controls the previous/next page links.
type DocFooter struct {
	Prev FooterLink `json:"prev" yaml:"prev"`
	Next FooterLink `json:"next" yaml:"next"`
}

// Footer is the site-wide footer. Both fields may carry inline HTML.
type Footer struct {
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Copyright string `json:"copyright,omitempty" yaml:"copyright,omitempty"`
}

// SearchProvider names the search backend.
type SearchProvider string

const (
	SearchLocal   SearchProvider = "local"
	SearchAlgolia SearchProvider = "algolia"
)

var searchProviders = normalization.NewEnumNormalizer("search provider", map[string]SearchProvider{
	"local":   SearchLocal,
	"algolia": SearchAlgolia,
}, SearchLocal)

// algoliaKeys must be present in the options of an algolia search.
var algoliaKeys = []string{"appId", "apiKey", "indexName"}

// Search configures full-text search.
type Search struct {
	Provider SearchProvider `json:"provider" yaml:"provider"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func decodeTheme(obj *schema.Object, meta *Site) error {
	var err error
	if meta.Logo, err = decodeLogo(obj); err != nil {
		return err
	}
	if meta.DocFooter, err = decodeDocFooter(obj); err != nil {
		return err
	}
	if meta.Footer, err = decodeFooter(obj); err != nil {
		return err
	}
	meta.Search, err = decodeSearch(obj)
	return err
}

func decodeLogo(site *schema.Object) (*Logo, error) {
	raw, ok := site.Raw("logo")
	if !ok {
		return nil, nil
	}
	at := site.Path().Field("logo")
	if s, isString := raw.(string); isString {
		if isBlank(s) {
			return nil, schema.Errorf(at, "logo must not be empty")
		}
		return &Logo{Light: s, Dark: s}, nil
	}
	obj, err := schema.AsObject(at, raw)
	if err != nil {
		return nil, schema.Errorf(at, "expected an image path or a mapping")
	}
	logo := &Logo{}
	src, err := obj.String("src")
	if err != nil {
		return nil, err
	}
	if logo.Light, err = obj.String("light"); err != nil {
		return nil, err
	}
	if logo.Dark, err = obj.String("dark"); err != nil {
		return nil, err
	}
	if logo.Alt, err = obj.String("alt"); err != nil {
		return nil, err
	}
	switch {
	case src != "" && (logo.Light != "" || logo.Dark != ""):
		return nil, schema.Errorf(at.Field("src"), "src and light/dark are mutually exclusive")
	case src != "":
		logo.Light, logo.Dark = src, src
	case isBlank(logo.Light) && isBlank(logo.Dark):
		return nil, schema.Errorf(at, "logo needs src, light or dark")
	case logo.Light == "":
		logo.Light = logo.Dark
	case logo.Dark == "":
		logo.Dark = logo.Light
	}
	return logo, obj.Done()
}

func decodeDocFooter(site *schema.Object) (DocFooter, error) {
	var df DocFooter
	obj, err := site.Object("docFooter")
	if err != nil || obj == nil {
		return df, err
	}
	if df.Prev, err = decodeFooterLink(obj, "prev"); err != nil {
		return df, err
	}
	if df.Next, err = decodeFooterLink(obj, "next"); err != nil {
		return df, err
	}
	return df, obj.Done()
}

// decodeFooterLink reads false (hide), true (default label) or a label.
func decodeFooterLink(obj *schema.Object, key string) (FooterLink, error) {
	raw, ok := obj.Raw(key)
	if !ok {
		return FooterLink{}, nil
	}
	at := obj.Path().Field(key)
	switch v := raw.(type) {
	case bool:
		return FooterLink{Hidden: !v}, nil
	case string:
		if isBlank(v) {
			return FooterLink{}, schema.Errorf(at, "label must not be empty")
		}
		return FooterLink{Label: v}, nil
	}
	return FooterLink{}, schema.Errorf(at, "expected a boolean or a label")
}

func decodeFooter(site *schema.Object) (*Footer, error) {
	obj, err := site.Object("footer")
	if err != nil || obj == nil {
		return nil, err
	}
	f := &Footer{}
	if f.Message, err = obj.String("message"); err != nil {
		return nil, err
	}
	if f.Copyright, err = obj.String("copyright"); err != nil {
		return nil, err
	}
	return f, obj.Done()
}

func decodeSearch(site *schema.Object) (*Search, error) {
	obj, err := site.Object("search")
	if err != nil || obj == nil {
		return nil, err
	}
	name, err := obj.RequiredString("provider")
	if err != nil {
		return nil, err
	}
	s := &Search{}
	if s.Provider, err = searchProviders.NormalizeWithValidation(name); err != nil {
		return nil, schema.Errorf(obj.Path().Field("provider"), "%v", err)
	}
	if s.Options, err = optionsMap(obj); err != nil {
		return nil, err
	}
	if s.Provider == SearchAlgolia {
		for _, k := range algoliaKeys {
			if v, _ := s.Options[k].(string); isBlank(v) {
				return nil, schema.Errorf(obj.Path().Field("options").Field(k), "algolia search requires %s", k)
			}
		}
	}
	return s, obj.Done()
}
