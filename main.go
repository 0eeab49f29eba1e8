package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mcncl/smtbridge/internal/config"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/formatter"
	"github.com/mcncl/smtbridge/internal/logger"
	"github.com/rs/zerolog/log"
)

// CLI defines the command-line interface
var CLI struct {
	Config    string           `help:"Path to config file. If not specified, searches for .smtbridge.yml in the current directory and its parents." short:"c" type:"path"`
	LogLevel  string           `help:"Log level (debug, info, warn, error)." name:"log-level" default:"info"`
	LogFormat string           `help:"Log format (console, json)." name:"log-format" default:"console"`
	Compact   bool             `help:"Print JSON on a single line."`
	Version   kong.VersionFlag `help:"Show version information." short:"v"`

	Convert  ConvertCmd  `cmd:"" help:"Convert a JSON payload the way the bridge converts it."`
	Deeplink DeeplinkCmd `cmd:"" help:"Build the deep-link payload for a set of notification extras."`
	Invoke   InvokeCmd   `cmd:"" help:"Invoke a bridge method against an in-memory SDK."`
	Methods  MethodsCmd  `cmd:"" help:"List the bridge methods and whether they are enabled."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("smtbridge"),
		kong.Description("Inspect and exercise the Smartech runtime bridge"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("smtbridge version %s", Version)},
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// kong.UsageOnError() has already printed the usage
		parser.FatalIfErrorf(err)
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: smtbridge --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration with CLI precedence and sets up logging
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, CLI.LogLevel, CLI.LogFormat, CLI.Compact)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, errors.NewConfigError("invalid logging configuration", err)
	}
	if configPath != "" {
		log.Debug().Str("path", configPath).Msg("Loaded config file")
	}

	return &Context{
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

func (c *Context) formatter() *formatter.Formatter {
	return &formatter.Formatter{Indent: c.Config.Indent()}
}
