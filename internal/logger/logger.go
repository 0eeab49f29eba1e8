package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var stderr = struct{ io.Writer }{os.Stderr}

type tTesting interface {
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
	Cleanup(f func())
}

// ConfigureTestLogging allows logs to be associated with individual tests
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(t))).With().Timestamp().Logger()
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.SetGlobalLevel(oldLevel)
	})
}

// Configure sets the global log level and output format. LOG_LEVEL in the
// environment takes precedence over level. Output always goes to stderr so it
// never mixes with converted values printed on stdout.
func Configure(level, format string) error {
	return configure(stderr, level, format, isatty.IsTerminal(os.Stderr.Fd()))
}

func configure(out io.Writer, level, format string, isTerminal bool) error {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if env := strings.ToLower(os.Getenv("LOG_LEVEL")); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer
	switch strings.ToLower(format) {
	case "", FormatConsole:
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = out
			cw.NoColor = !isTerminal
			cw.TimeFormat = "15:04:05.999 |"
			cw.PartsOrder = []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.MessageFieldName,
			}
		})
	case FormatJSON:
		w = out
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

// ParseLevel maps a level name to a zerolog level. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// ForModule returns the global logger tagged with the bridge module name.
func ForModule(name string) zerolog.Logger {
	return log.With().Str("module", name).Logger()
}
