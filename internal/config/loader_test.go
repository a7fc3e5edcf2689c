package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/metrics"
	"git.home.luguber.info/inful/siteplan/internal/nav"
	"git.home.luguber.info/inful/siteplan/internal/pipeline"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

func TestLoadFormatsAgree(t *testing.T) {
	var snapshots []string
	for _, name := range []string{"webapp.yaml", "webapp.toml", "webapp.json", "webapp.cue", "webapp.hcl"} {
		t.Run(name, func(t *testing.T) {
			res, err := Load(filepath.Join("testdata", name), WithEnv(nil))
			require.NoError(t, err)
			assertWebApp(t, res)
			snapshots = append(snapshots, res.Snapshot)
		})
	}
	require.Len(t, snapshots, 5)
	for _, s := range snapshots[1:] {
		assert.Equal(t, snapshots[0], s, "every format should resolve to the same plan")
	}
}

func assertWebApp(t *testing.T, res *Result) {
	t.Helper()
	assert.Equal(t, Site{
		Title:     "Example",
		Base:      "/docs/",
		Logo:      &Logo{Light: "/logo.png", Dark: "/logo.png"},
		DocFooter: DocFooter{Prev: FooterLink{Hidden: true}, Next: FooterLink{Label: "Next page"}},
		Footer:    &Footer{Copyright: "MIT Licensed"},
		Search:    &Search{Provider: SearchLocal},
	}, res.SiteMeta)

	require.NotNil(t, res.Site)
	routes := res.Site.Routes()
	assert.Equal(t, 2, routes.Len())
	crumb, ok := routes.Lookup("/intro")
	require.True(t, ok)
	assert.Equal(t, []string{"Docs", "Intro"}, crumb)
	_, ok = routes.Lookup("https://example.com/repo")
	assert.False(t, ok)
	assert.Equal(t, 1, res.Site.NavRoutes().Len())
	assert.True(t, res.Site.IsExcluded("drafts/post.md"))
	assert.True(t, res.Site.IsExcluded("guide/TODO.md"))
	assert.Equal(t, "guide/index.md", res.Site.ApplyRewrite("guide/README.md"))

	require.NotNil(t, res.Plan)
	assert.Equal(t, pipeline.ModeProduction, res.Plan.Mode())
	abs, err := filepath.Abs("testdata")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "dist"), res.Plan.Target().OutputDir)
	assert.Equal(t, "[name].js", res.Plan.Target().Filename)
	require.NotNil(t, res.Plan.DevServer())
	assert.Equal(t, 8080, res.Plan.DevServer().Port)

	rules := res.Plan.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, `re:/\.css$/i`, rules[0].Test())
	assert.Equal(t, []string{"style-loader", "css-loader"}, rules[0].Loaders())
	assert.Equal(t, "node_modules/**", rules[1].Exclude())
	assert.Equal(t, true, rules[1].Handlers()[0].Options["cacheDirectory"])

	plugins := res.Plan.Plugins()
	require.Len(t, plugins, 2)
	assert.Equal(t, "HtmlWebpackPlugin", plugins[0].Name)
	assert.Equal(t, map[string]any{"VERSION": "1.0"}, plugins[1].Options)

	assert.Len(t, res.Plan.RulesFor("src/app/main.js"), 1)
	assert.Empty(t, res.Plan.RulesFor("node_modules/x/index.js"))
}

func TestLoadExampleDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteplan.yaml")
	require.NoError(t, Init(path, false))

	res, err := Load(path, WithEnv(nil))
	require.NoError(t, err)

	assert.Equal(t, "Blubber", res.SiteMeta.Title)
	assert.Equal(t, "/releng/blubber/", res.SiteMeta.Base)
	assert.Empty(t, res.Site.Nav())
	assert.Equal(t, 21, res.Site.Routes().Len())

	crumb, ok := res.Site.Routes().Lookup("/configuration#apt")
	require.True(t, ok)
	assert.Equal(t, []string{"Documentation", "Configuration", "APT"}, crumb)

	for _, p := range []string{"api/index.md", "examples/01-basic/README.md", "docs/TODO.md", "build"} {
		assert.True(t, res.Site.IsExcluded(p), p)
	}
	assert.False(t, res.Site.IsExcluded("configuration.md"))

	route, ok := res.Site.SourceRoute("README.md")
	require.True(t, ok)
	assert.Equal(t, "/", route)

	ds := res.Plan.DevServer()
	require.NotNil(t, ds)
	assert.Equal(t, 8080, ds.Port)
	assert.Equal(t, pipeline.ModeDevelopment, res.Plan.Mode())
	assert.Equal(t, []string{"style-loader", "css-loader"}, res.Plan.Rules()[0].Loaders())
}

func TestLoadBytesErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		check  func(t *testing.T, err error)
		prefix string
	}{
		{
			name:   "port out of range",
			doc:    "bundle: {entry: a.js, output: {path: dist, filename: b.js}, devServer: {port: 70000}}",
			prefix: "bundle: ",
			check: func(t *testing.T, err error) {
				var pe *pipeline.InvalidPortError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, 70000, pe.Port)
			},
		},
		{
			name:   "empty use",
			doc:    "bundle: {entry: a.js, output: {path: dist, filename: b.js}, module: {rules: [{test: 're:/\\.css$/', use: []}]}}",
			prefix: "bundle: ",
			check: func(t *testing.T, err error) {
				var ee *pipeline.EmptyRuleError
				require.ErrorAs(t, err, &ee)
				assert.Equal(t, 0, ee.Index)
			},
		},
		{
			name:   "duplicate route",
			doc:    "site: {sidebar: [{text: A, link: /a}, {text: B, link: /a}]}",
			prefix: "site: ",
			check: func(t *testing.T, err error) {
				var de *nav.DuplicateRouteError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, "/a", de.Route)
			},
		},
		{
			name:   "site fails before bundle",
			doc:    "site: {sidebar: [{text: A, link: /a}, {text: B, link: /a}]}\nbundle: {devServer: {port: 0}}",
			prefix: "site: ",
			check: func(t *testing.T, err error) {
				var de *nav.DuplicateRouteError
				require.ErrorAs(t, err, &de)
			},
		},
		{name: "unknown top-level key", doc: "site: {title: x}\nsitee: {}", check: schemaAt("sitee")},
		{name: "unknown nested key", doc: "site: {titel: x}", prefix: "site: ", check: schemaAt("titel")},
		{name: "unknown item key", doc: "site: {sidebar: [{text: A, link: /a, href: /b}]}", prefix: "site: ", check: schemaAt("sidebar[0].href")},
		{name: "no sections", doc: "{}", check: schemaAt("")},
		{name: "not a mapping", doc: "- a\n- b", check: schemaAt("")},
		{name: "bad link", doc: "site: {sidebar: [{text: A, link: a.md}]}", prefix: "site: ", check: schemaAt("sidebar[0].link")},
		{name: "bad base", doc: "site: {base: docs}", prefix: "site: ", check: schemaAt("base")},
		{name: "blank logo", doc: "site: {logo: ' '}", prefix: "site: ", check: schemaAt("logo")},
		{name: "logo src with light", doc: "site: {logo: {src: /a.png, light: /b.png}}", prefix: "site: ", check: schemaAt("logo.src")},
		{name: "logo without image", doc: "site: {logo: {alt: Logo}}", prefix: "site: ", check: schemaAt("logo")},
		{name: "unknown logo key", doc: "site: {logo: {light: /a.png, href: /}}", prefix: "site: ", check: schemaAt("logo.href")},
		{name: "doc footer number", doc: "site: {docFooter: {prev: 1}}", prefix: "site: ", check: schemaAt("docFooter.prev")},
		{name: "unknown doc footer key", doc: "site: {docFooter: {up: false}}", prefix: "site: ", check: schemaAt("docFooter.up")},
		{name: "unknown footer key", doc: "site: {footer: {copyleft: x}}", prefix: "site: ", check: schemaAt("footer.copyleft")},
		{name: "search without provider", doc: "site: {search: {options: {}}}", prefix: "site: ", check: schemaAt("search.provider")},
		{name: "unknown search provider", doc: "site: {search: {provider: lunr}}", prefix: "site: ", check: schemaAt("search.provider")},
		{name: "algolia without index", doc: "site: {search: {provider: algolia, options: {appId: a, apiKey: k}}}", prefix: "site: ", check: schemaAt("search.options.indexName")},
		{name: "mistyped port", doc: "bundle: {devServer: {port: high}}", prefix: "bundle: ", check: schemaAt("devServer.port")},
		{name: "use and loader", doc: "bundle: {module: {rules: [{test: a, use: x, loader: y}]}}", prefix: "bundle: ", check: schemaAt("module.rules[0].loader")},
		{name: "options not a mapping", doc: "bundle: {plugins: [{name: P, options: [1]}]}", prefix: "bundle: ", check: schemaAt("plugins[0].options")},
		{
			name: "syntax error",
			doc:  "site: [unclosed",
			check: func(t *testing.T, err error) {
				assert.Equal(t, ferrors.CategoryConfig, ferrors.CategoryOf(err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.doc), FormatYAML)
			require.Error(t, err)
			if tt.prefix != "" {
				assert.True(t, strings.HasPrefix(err.Error(), tt.prefix), err.Error())
			}
			tt.check(t, err)
		})
	}
}

func TestLoadThemeSettings(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Site
	}{
		{
			name: "logo variants",
			doc:  "site: {logo: {light: /l.png, dark: /d.png, alt: Blubber}}",
			want: Site{Logo: &Logo{Light: "/l.png", Dark: "/d.png", Alt: "Blubber"}},
		},
		{
			name: "logo src",
			doc:  "site: {logo: {src: /a.png}}",
			want: Site{Logo: &Logo{Light: "/a.png", Dark: "/a.png"}},
		},
		{
			name: "logo dark only",
			doc:  "site: {logo: {dark: /d.png}}",
			want: Site{Logo: &Logo{Light: "/d.png", Dark: "/d.png"}},
		},
		{
			name: "doc footer defaults",
			doc:  "site: {docFooter: {prev: true}}",
			want: Site{},
		},
		{
			name: "hidden doc footer",
			doc:  "site: {docFooter: {prev: false, next: false}}",
			want: Site{DocFooter: DocFooter{Prev: FooterLink{Hidden: true}, Next: FooterLink{Hidden: true}}},
		},
		{
			name: "footer",
			doc:  "site: {footer: {message: Released under MIT, copyright: '<a href=\"/\">Home</a>'}}",
			want: Site{Footer: &Footer{Message: "Released under MIT", Copyright: `<a href="/">Home</a>`}},
		},
		{
			name: "search provider is normalized",
			doc:  "site: {search: {provider: ' Local '}}",
			want: Site{Search: &Search{Provider: SearchLocal}},
		},
		{
			name: "algolia",
			doc:  "site: {search: {provider: algolia, options: {appId: A, apiKey: K, indexName: docs}}}",
			want: Site{Search: &Search{
				Provider: SearchAlgolia,
				Options:  map[string]any{"appId": "A", "apiKey": "K", "indexName": "docs"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadBytes([]byte(tt.doc), FormatYAML)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SiteMeta)
		})
	}
}

func TestExampleThemeSettings(t *testing.T) {
	res, err := LoadBytes(Example(), FormatYAML, WithEnv(nil))
	require.NoError(t, err)
	meta := res.SiteMeta
	require.NotNil(t, meta.Logo)
	assert.Equal(t, "/logo-400.png", meta.Logo.Light)
	assert.True(t, meta.DocFooter.Prev.Hidden)
	assert.True(t, meta.DocFooter.Next.Hidden)
	require.NotNil(t, meta.Footer)
	assert.Contains(t, meta.Footer.Copyright, "gitlab.wikimedia.org/repos/releng/blubber")
	require.NotNil(t, meta.Search)
	assert.Equal(t, SearchLocal, meta.Search.Provider)
}

func TestHugePortIsInvalidPort(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"yaml exponent", FormatYAML, "bundle: {entry: a.js, output: {path: dist, filename: b.js}, devServer: {port: 7e10}}"},
		{"yaml integer", FormatYAML, "bundle: {entry: a.js, output: {path: dist, filename: b.js}, devServer: {port: 70000000000}}"},
		{"json", FormatJSON, `{"bundle": {"entry": "a.js", "output": {"path": "dist", "filename": "b.js"}, "devServer": {"port": 70000000000}}}`},
		{"toml float", FormatTOML, "[bundle]\nentry = \"a.js\"\n[bundle.output]\npath = \"dist\"\nfilename = \"b.js\"\n[bundle.devServer]\nport = 7e10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.doc), tt.format)
			var pe *pipeline.InvalidPortError
			require.ErrorAs(t, err, &pe, "%v", err)
			assert.Greater(t, pe.Port, 65535)
		})
	}
}

func schemaAt(path schema.Path) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var se *schema.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, path, se.Path, se.Error())
		assert.Equal(t, ferrors.CategorySchema, ferrors.CategoryOf(err))
	}
}

func TestLoadBytesShorthands(t *testing.T) {
	doc := `
bundle:
  entry: ./main.js
  output: {path: out, filename: main.js}
  module:
    rules:
      - test: "*.ts"
        loader: ts-loader
        options: {transpileOnly: true}
      - test: "*.css"
        use: css-loader
`
	res, err := LoadBytes([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, res.Site)
	assert.Nil(t, res.Plan.DevServer())
	assert.Equal(t, "out", res.Plan.Target().OutputDir)

	rules := res.Plan.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, []pipeline.Handler{{Loader: "ts-loader", Options: map[string]any{"transpileOnly": true}}}, rules[0].Handlers())
	assert.Equal(t, []string{"css-loader"}, rules[1].Loaders())
}

func TestEnvExpansion(t *testing.T) {
	doc := []byte("site:\n  title: ${TITLE}\n  description: cost $5\nbundle:\n  entry: a.js\n  output: {path: dist, filename: b.js}\n  devServer: {port: ${PORT}}\n")

	res, err := LoadBytes(doc, FormatYAML, WithEnv(map[string]string{"TITLE": "Docs", "PORT": "9000"}))
	require.NoError(t, err)
	assert.Equal(t, "Docs", res.SiteMeta.Title)
	assert.Equal(t, "cost $5", res.SiteMeta.Description)
	assert.Equal(t, 9000, res.Plan.DevServer().Port)

	res, err = LoadBytes([]byte("site: {title: '${TITLE}'}"), FormatYAML, WithoutEnvExpansion())
	require.NoError(t, err)
	assert.Equal(t, "${TITLE}", res.SiteMeta.Title)

	res, err = LoadBytes([]byte("site: {title: 'x${UNSET_FOR_TEST}y'}"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "xy", res.SiteMeta.Title)
}

func TestLoadReadsDotenvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "siteplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: {title: '${SITEPLAN_TEST_TITLE}', description: '${SITEPLAN_TEST_DESC}'}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITEPLAN_TEST_TITLE=from-dotenv\nSITEPLAN_TEST_DESC=base\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("SITEPLAN_TEST_DESC=local\n"), 0o644))

	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", res.SiteMeta.Title)
	assert.Equal(t, "local", res.SiteMeta.Description)
	_, exported := os.LookupEnv("SITEPLAN_TEST_TITLE")
	assert.False(t, exported, ".env values must not leak into the process environment")

	t.Setenv("SITEPLAN_TEST_TITLE", "from-process")
	res, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-process", res.SiteMeta.Title)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, ferrors.CategoryFileSystem, ferrors.CategoryOf(err))

	_, err = Load(filepath.Join(dir, "siteplan.ini"))
	assert.Equal(t, ferrors.CategoryConfig, ferrors.CategoryOf(err))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "conf.yaml"), 0o755))
	_, err = Load(filepath.Join(dir, "conf.yaml"))
	assert.Equal(t, ferrors.CategoryFileSystem, ferrors.CategoryOf(err))

	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxDocumentSize+1), 0o644))
	_, err = Load(big)
	schemaAt("")(t, err)
}

func TestLoadBytesTooLarge(t *testing.T) {
	_, err := LoadBytes(make([]byte, MaxDocumentSize+1), FormatJSON)
	schemaAt("")(t, err)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"json trailing content", FormatJSON, `{"site": {}} {}`},
		{"toml syntax", FormatTOML, "[site\n"},
		{"hcl variable", FormatHCL, "site = { title = var.title }"},
		{"cue syntax", FormatCUE, "site: {"},
		{"unknown format", Format("ini"), "a=b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.doc), tt.format)
			require.Error(t, err)
			assert.Equal(t, ferrors.CategoryConfig, ferrors.CategoryOf(err))
		})
	}
}

func TestCUESchemaViolations(t *testing.T) {
	_, err := LoadBytes([]byte(`bundle: devServer: port: "8080"`), FormatCUE)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "port")

	_, err = LoadBytes([]byte(`bundle: entri: "x"`), FormatCUE)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestSnapshotTracksContent(t *testing.T) {
	doc := "bundle: {entry: a.js, output: {path: dist, filename: b.js}, module: {rules: [{test: '*.a', use: x}, {test: '*.b', use: y}]}}"
	a, err := LoadBytes([]byte(doc), FormatYAML)
	require.NoError(t, err)
	b, err := LoadBytes([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot, b.Snapshot)
	assert.Len(t, a.Snapshot, 64)

	swapped := "bundle: {entry: a.js, output: {path: dist, filename: b.js}, module: {rules: [{test: '*.b', use: y}, {test: '*.a', use: x}]}}"
	c, err := LoadBytes([]byte(swapped), FormatYAML)
	require.NoError(t, err)
	assert.NotEqual(t, a.Snapshot, c.Snapshot, "rule order is part of the plan")
}

func TestSnapshotSeparatesFields(t *testing.T) {
	pairs := []struct {
		name string
		a, b string
	}{
		{
			"rewrite source and destination",
			`site: {rewrites: {"a=b": "c.md"}, sidebar: [{text: Home, link: /}]}`,
			`site: {rewrites: {"a": "b=c.md"}, sidebar: [{text: Home, link: /}]}`,
		},
		{
			"rule test and exclude",
			`bundle: {entry: a.js, output: {path: dist, filename: b.js}, module: {rules: [{test: "x=y", use: l}]}}`,
			`bundle: {entry: a.js, output: {path: dist, filename: b.js}, module: {rules: [{test: "x", exclude: "y=", use: l}]}}`,
		},
		{
			"breadcrumb texts",
			`site: {sidebar: [{text: "A", items: [{text: "B C", link: /x}]}]}`,
			`site: {sidebar: [{text: "A B", items: [{text: "C", link: /x}]}]}`,
		},
		{
			"footer message and copyright",
			`site: {title: T, footer: {message: "a"}}`,
			`site: {title: T, footer: {copyright: "a"}}`,
		},
		{
			"hidden doc footer side",
			`site: {title: T, docFooter: {prev: false}}`,
			`site: {title: T, docFooter: {next: false}}`,
		},
		{
			"search provider",
			`site: {title: T, search: {provider: local}}`,
			`site: {title: T, search: {provider: algolia, options: {appId: a, apiKey: k, indexName: i}}}`,
		},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			a, err := LoadBytes([]byte(tt.a), FormatYAML)
			require.NoError(t, err)
			b, err := LoadBytes([]byte(tt.b), FormatYAML)
			require.NoError(t, err)
			assert.NotEqual(t, a.Snapshot, b.Snapshot)
		})
	}
}

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]metrics.ResultLabel
	routes  int
}

func (c *countingRecorder) ObserveResolveDuration(string, time.Duration) {}
func (c *countingRecorder) IncReload(metrics.ReloadOutcome)              {}

func (c *countingRecorder) IncResolveResult(component string, result metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[component] = result
}

func (c *countingRecorder) SetRoutes(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = n
}

func TestLoadRecordsMetrics(t *testing.T) {
	rec := &countingRecorder{results: map[string]metrics.ResultLabel{}}
	_, err := Load(filepath.Join("testdata", "webapp.yaml"), WithEnv(nil), WithRecorder(rec))
	require.NoError(t, err)
	assert.Equal(t, metrics.ResultOK, rec.results[metrics.ComponentSite])
	assert.Equal(t, metrics.ResultOK, rec.results[metrics.ComponentBundle])
	assert.Equal(t, 2, rec.routes)

	_, err = LoadBytes([]byte("bundle: {devServer: {port: 0}, entry: a, output: {path: d, filename: f}}"), FormatYAML, WithRecorder(rec))
	require.Error(t, err)
	assert.Equal(t, metrics.ResultError, rec.results[metrics.ComponentBundle])
}
