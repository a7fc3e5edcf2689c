package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"

	"git.home.luguber.info/inful/siteplan/internal/config"
	"git.home.luguber.info/inful/siteplan/internal/foundation/normalization"
)

// Global carries what every command needs besides its own flags.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"siteplan.yaml" type:"path"`
	BaseDir   string           `name:"base-dir" help:"Directory for relative output and static paths (default: the configuration file's directory)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format: text, json or pretty" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Validate ValidateCmd `cmd:"" help:"Load and resolve the configuration, then print a summary"`
	Routes   RoutesCmd   `cmd:"" help:"Print the route index with breadcrumbs"`
	Plan     PlanCmd     `cmd:"" help:"Print the resolved build plan"`
	Check    CheckCmd    `cmd:"" help:"Show how source paths are excluded, rewritten, routed and transformed"`
	Watch    WatchCmd    `cmd:"" help:"Reload the configuration whenever it changes"`
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatPretty LogFormat = "pretty"
)

var logFormats = normalization.NewEnumNormalizer("log format", map[string]LogFormat{
	"text":   LogFormatText,
	"json":   LogFormatJSON,
	"pretty": LogFormatPretty,
}, LogFormatText)

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	format, err := logFormats.NormalizeWithValidation(c.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(NewLogger(os.Stderr, format, c.Verbose))
	return nil
}

// NewLogger builds the process logger.
func NewLogger(w io.Writer, format LogFormat, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	switch format {
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case LogFormatPretty:
		charmLevel := charmlog.InfoLevel
		if verbose {
			charmLevel = charmlog.DebugLevel
		}
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
			Prefix:          "siteplan",
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// load resolves the configuration named by the global --config flag.
func load(g *Global, root *CLI, opts ...config.Option) (*config.Result, error) {
	return config.Load(root.Config, loadOptions(g, root, opts...)...)
}

func loadOptions(g *Global, root *CLI, extra ...config.Option) []config.Option {
	opts := []config.Option{config.WithLogger(g.logger())}
	if root.BaseDir != "" {
		opts = append(opts, config.WithBaseDir(root.BaseDir))
	}
	return append(opts, extra...)
}
