package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/prismicgen/internal/config"
)

// LogLevelEnv overrides the log level (debug, info, warn, error).
const LogLevelEnv = "PRISMICGEN_LOG_LEVEL"

// Global carries state shared by all commands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"${config_default}" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Collect routes and write the build directory"`
	Routes   RoutesCmd   `cmd:"" help:"Print the collected route list"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate periodically and when configuration changes"`
}

// Vars returns the kong variables CLI interpolates.
func Vars(versionString string) kong.Vars {
	return kong.Vars{
		"version":        versionString,
		"config_default": config.DefaultPath,
	}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(NewLogger(os.Stderr, c.Verbose))
	return nil
}

// NewLogger returns the text logger used by all commands. verbose selects
// debug level; LogLevelEnv overrides either.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(env)); err == nil {
			level = l
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}
