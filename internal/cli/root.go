package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"

	"github.com/shiphq/pyship/internal"
)

// Represents the root command for the pyship CLI.
var RootCmd struct {
	Quiet    bool       `short:"q" help:"Suppress informational output."`
	Verbose  bool       `short:"v" help:"Enable verbose output."`
	Debug    bool       `short:"d" help:"Enable debug output."`
	Settings string     `help:"Override the settings file path." placeholder:"PATH"`
	Publish  PublishCmd `cmd:"" default:"withargs" help:"Build, validate, and upload the project's distributions."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, kongOptions(ctx)...)

	configureLogger()

	return kongCtx.Run()
}

// Parser options for the root command, with the context bound for the
// subcommand Run methods.
func kongOptions(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Packages and publishes a Python library to a package index.\n\nRuns the packaging toolchain (pytest, build, twine) as a single pipeline against the project in the current directory."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*charmlog.Logger)
	if !ok {
		return // Not the charm handler, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()

	if RootCmd.Verbose || internal.IsVerbose() {
		internal.SetVerbose(true)
		handler.SetReportTimestamp(true)
	}

	switch {
	case debug:
		internal.SetDebug(true)
		handler.SetLevel(charmlog.DebugLevel)
		handler.SetReportCaller(true)
	case quiet:
		internal.SetQuiet(true)
		handler.SetLevel(charmlog.WarnLevel)
	default:
		handler.SetLevel(charmlog.InfoLevel)
	}
}
