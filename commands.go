package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mcncl/smtbridge/internal/bridge"
	"github.com/mcncl/smtbridge/internal/converter"
	"github.com/mcncl/smtbridge/internal/deeplink"
	"github.com/mcncl/smtbridge/internal/document"
	"github.com/mcncl/smtbridge/internal/errors"
	"github.com/mcncl/smtbridge/internal/formatter"
	"github.com/mcncl/smtbridge/internal/parser"
	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/mcncl/smtbridge/internal/sdk"
	"github.com/rs/zerolog/log"
)

// Conversion targets accepted by the convert command
const (
	TargetDocument = "document"
	TargetRuntime  = "runtime"
	TargetHost     = "host"
)

// ConvertCmd converts a JSON payload into one of the bridge's value trees
type ConvertCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	To     string `help:"Tree to convert to: document, runtime or host." enum:"document,runtime,host" default:"runtime"`
	From   string `help:"Tree the input stands for: document, or host for a platform payload." enum:"document,host" default:"document"`
}

func (c *ConvertCmd) Run(ctx *Context) error {
	root, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if c.From == TargetHost {
		if root, err = documentFromHost(root); err != nil {
			return err
		}
	}

	f := ctx.formatter()
	var out string
	switch c.To {
	case TargetDocument:
		out, err = f.Document(root)
	case TargetRuntime:
		out, err = formatRuntime(f, root)
	case TargetHost:
		out, err = formatHost(f, root)
	default:
		return errors.NewInputError(fmt.Sprintf("unknown conversion target '%s'", c.To), errors.ErrInvalidArgument)
	}
	if err != nil {
		return err
	}

	return writeOutput(ctx, c.Output, out)
}

func formatRuntime(f *formatter.Formatter, root document.Node) (string, error) {
	switch root.Kind() {
	case document.KindObject:
		return f.Runtime(converter.DocumentToRuntimeMap(root.AsObject()))
	case document.KindArray:
		return f.RuntimeArray(converter.DocumentToRuntimeArray(root.AsArray()))
	default:
		return "", errors.NewConversionError(
			fmt.Sprintf("only objects and arrays cross the bridge, got %s", root.Kind()),
			errors.ErrUnsupportedValue,
		)
	}
}

// formatHost takes the payload through the runtime tree and back to the host,
// the way a runtime call reaches the SDK. Dropped values are logged.
func formatHost(f *formatter.Formatter, root document.Node) (string, error) {
	switch root.Kind() {
	case document.KindObject:
		m, err := converter.RuntimeMapToHost(converter.DocumentToRuntimeMap(root.AsObject()))
		if err != nil {
			log.Warn().Err(err).Msg("Dropped unsupported values")
		}
		return f.Host(m)
	case document.KindArray:
		l, err := converter.RuntimeArrayToHost(converter.DocumentToRuntimeArray(root.AsArray()))
		if err != nil {
			log.Warn().Err(err).Msg("Dropped unsupported values")
		}
		return f.HostList(l)
	default:
		return "", errors.NewConversionError(
			fmt.Sprintf("only objects and arrays cross the bridge, got %s", root.Kind()),
			errors.ErrUnsupportedValue,
		)
	}
}

// documentFromHost builds the host tree for root and converts it back into a
// document, the way a platform payload enters the bridge. Host numbers are
// doubles, so integers come back widened.
func documentFromHost(root document.Node) (document.Node, error) {
	switch root.Kind() {
	case document.KindObject:
		m, err := converter.RuntimeMapToHost(converter.DocumentToRuntimeMap(root.AsObject()))
		if err != nil {
			log.Warn().Err(err).Msg("Dropped unsupported values")
		}
		obj, err := converter.HostMapToDocument(m)
		if err != nil {
			return document.Node{}, err
		}
		return document.FromObject(obj), nil
	case document.KindArray:
		l, err := converter.RuntimeArrayToHost(converter.DocumentToRuntimeArray(root.AsArray()))
		if err != nil {
			log.Warn().Err(err).Msg("Dropped unsupported values")
		}
		arr, err := converter.HostListToDocument(l)
		if err != nil {
			return document.Node{}, err
		}
		return document.FromArray(arr), nil
	default:
		return document.Node{}, errors.NewConversionError(
			fmt.Sprintf("a host payload must be an object or array, got %s", root.Kind()),
			errors.ErrInvalidArgument,
		)
	}
}

// DeeplinkCmd prints the payload emitted for a clicked notification
type DeeplinkCmd struct {
	Input  string `help:"Path to a JSON object of intent extras. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

func (c *DeeplinkCmd) Run(ctx *Context) error {
	root, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if root.Kind() != document.KindObject {
		return errors.NewInputError(
			fmt.Sprintf("intent extras must be a JSON object, got %s", root.Kind()),
			errors.ErrInvalidJSON,
		)
	}

	extras := converter.DocumentToRuntimeMap(root.AsObject()).Interface()
	payload, err := deeplink.Process(&deeplink.Intent{Extras: extras})
	if err != nil {
		return err
	}

	out, err := ctx.formatter().Runtime(payload)
	if err != nil {
		return errors.NewOutputError("failed to format payload", err)
	}
	return writeOutput(ctx, c.Output, out)
}

// InvokeCmd runs one bridge method against the in-memory SDK and prints the
// callback responses, emitted events and tracked events it produced
type InvokeCmd struct {
	Method    string `arg:"" help:"Bridge method, in any case style (trackEvent, track-event)."`
	Args      string `arg:"" optional:"" help:"JSON array of positional arguments." default:"[]"`
	AppID     string `help:"App id reported by the in-memory SDK." name:"app-id" default:"smtbridge-cli"`
	LaunchURL string `help:"Deep link of the notification that launched the app." name:"launch-url"`
	Click     string `help:"Deep link of a notification clicked after the call."`
}

func (c *InvokeCmd) Run(ctx *Context) error {
	args, err := parseArgs(c.Args)
	if err != nil {
		return err
	}

	f := ctx.formatter()
	memory := sdk.NewMemory(c.AppID)
	hub := bridge.NewEventHub()
	event := ctx.Config.Events.DeeplinkNotification
	hub.AddListener(event, func(payload *runtimeval.Map) {
		text, err := f.Runtime(payload)
		if err != nil {
			log.Error().Err(err).Str("event", event).Msg("Could not format event payload")
			return
		}
		fmt.Fprintf(ctx.Stdout, "event %s: %s\n", event, text)
	})

	pending := &deeplink.Pending{}
	if c.LaunchURL != "" {
		if err := pending.Set(notificationIntent(c.LaunchURL)); err != nil {
			return err
		}
	}

	module := bridge.NewModule(bridge.New(memory, hub, pending, ctx.Config))
	d := bridge.NewDispatcher(module, ctx.Config)

	err = d.Invoke(c.Method, args, func(response any) {
		fmt.Fprintf(ctx.Stdout, "callback: %s\n", formatResponse(f, response))
	})
	if err != nil {
		return err
	}

	for _, e := range memory.Events() {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return errors.NewOutputError("failed to format tracked event", err)
		}
		fmt.Fprintf(ctx.Stdout, "tracked %s: %s\n", e.Name, payload)
	}

	if c.Click != "" {
		return memory.Click(notificationIntent(c.Click))
	}
	return nil
}

func notificationIntent(url string) *deeplink.Intent {
	return &deeplink.Intent{Extras: map[string]any{deeplink.ExtraDeepLinkPath: url}}
}

func parseArgs(text string) (*runtimeval.Array, error) {
	if strings.TrimSpace(text) == "" {
		return runtimeval.NewArray(), nil
	}
	root, err := parser.ParseString(text)
	if err != nil {
		return nil, err
	}
	if root.Kind() != document.KindArray {
		return nil, errors.NewInputError(
			fmt.Sprintf("arguments must be a JSON array, got %s", root.Kind()),
			errors.ErrInvalidArgument,
		)
	}
	return converter.DocumentToRuntimeArray(root.AsArray()), nil
}

func formatResponse(f *formatter.Formatter, response any) string {
	if m, ok := response.(*runtimeval.Map); ok {
		text, err := f.Runtime(m)
		if err == nil {
			return text
		}
	}
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Sprintf("%v", response)
	}
	return string(data)
}

// MethodsCmd lists every bridge method
type MethodsCmd struct{}

func (c *MethodsCmd) Run(ctx *Context) error {
	module := bridge.NewModule(bridge.New(sdk.NewMemory(""), nil, nil, ctx.Config))
	d := bridge.NewDispatcher(module, ctx.Config)

	for _, name := range d.Methods() {
		rule, denied := ctx.Config.FindDenyRule(name)
		switch {
		case denied && rule.Reason != "":
			fmt.Fprintf(ctx.Stdout, "%s (disabled: %s)\n", name, rule.Reason)
		case denied:
			fmt.Fprintf(ctx.Stdout, "%s (disabled)\n", name)
		default:
			fmt.Fprintln(ctx.Stdout, name)
		}
	}
	return nil
}

// readInput reads JSON from file or stdin
func readInput(ctx *Context, path string) (document.Node, error) {
	if path != "" {
		return parser.ParseFile(path)
	}

	// A terminal on stdin means nothing was piped in
	if f, ok := ctx.Stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return document.Node{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return document.Node{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return document.Node{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseString(string(jsonData))
}

// writeOutput writes text to file or stdout
func writeOutput(ctx *Context, path, text string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(text)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
