package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/delight-lang/delight/pkgs/config"
	"github.com/delight-lang/delight/pkgs/errors"
	"github.com/delight-lang/delight/pkgs/translator"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3"
var version = "dev"

// SourceExtension is the extension of Delight source files
const SourceExtension = ".delight"

// app carries the state shared by every subcommand
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}
	// translation failures already printed their diagnostic
	if !errors.IsType(err, errors.ErrTranslate) && !errors.IsType(err, errors.ErrScan) {
		fmt.Fprintf(stderr, "Error: %s\n", errors.Describe(err))
	}
	return errors.ExitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "delight",
		Short:         "Translate Delight source files into D",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the configuration file (default: nearest "+config.FileName+")")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug output")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		a.translateCommand(),
		a.checkCommand(),
		a.watchCommand(),
		a.tokensCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and prepares logging and color output.
func (a *app) setup() error {
	cfg, err := config.Resolve(a.configPath, ".")
	if err != nil {
		return err
	}
	if err := cfg.CheckVersion(version); err != nil {
		return err
	}
	a.cfg = cfg

	if a.debug || os.Getenv(translator.DebugEnv) != "" {
		a.logger = translator.NewLogger(a.stderr, true)
	} else {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	color.NoColor = !a.useColor()
	return nil
}

// useColor respects --no-color, NO_COLOR and the configuration file.
func (a *app) useColor() bool {
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return a.cfg.ColorEnabled(isTerminal(a.stderr))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// translateOptions returns the translator options implied by the
// configuration.
func (a *app) translateOptions(filename string) []translator.Opt {
	opts := []translator.Opt{
		translator.WithFilename(filename),
		translator.WithLogger(a.logger),
	}
	if a.cfg.Indentation != "" {
		opts = append(opts, translator.WithIndentation(a.cfg.Indentation))
	}
	return opts
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the delight version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "delight %s\n", version)
			return nil
		},
	}
}
