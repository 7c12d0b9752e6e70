// Package host wires the runtime together: it parses the engine's
// arguments, answers the metadata handshake, loads the configuration,
// resolves the entrypoint and runs the platform loop until the input ends
// or the process is asked to stop.
package host

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"e5e/codec"
	"e5e/config"
	"e5e/console"
	"e5e/handler"
	"e5e/handler/platforms"
	"e5e/observability"
	"e5e/observability/logger"
)

// Process exit codes, following sysexits.h.
const (
	ExitOK       = 0
	ExitUsage    = 64 // EX_USAGE: wrong number of arguments
	ExitSoftware = 70 // EX_SOFTWARE: the communication loop crashed
	ExitConfig   = 78 // EX_CONFIG: unknown entrypoint or invalid environment
)

type options struct {
	console    console.Console
	logOutput  io.Writer
	loadConfig func() (*config.Config, error)
	signals    []os.Signal
}

// Option customizes Run.
type Option func(*options)

// WithConsole replaces the process streams, e.g. with a console.Memory.
func WithConsole(c console.Console) Option {
	return func(o *options) { o.console = c }
}

// WithLogOutput redirects the logs, which go to stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithConfig skips loading the configuration from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.loadConfig = func() (*config.Config, error) {
			c := *cfg
			return &c, c.Validate()
		}
	}
}

// WithSignals sets the signals that trigger a graceful shutdown.
func WithSignals(sig ...os.Signal) Option {
	return func(o *options) { o.signals = sig }
}

// Main runs the functions of resolver as an e5e runtime and exits the
// process.
func Main(resolver handler.Resolver, opts ...Option) {
	os.Exit(Run(context.Background(), os.Args[1:], resolver, opts...))
}

// Run executes the runtime for args (without the program name) and returns
// the process exit code.
func Run(ctx context.Context, args []string, resolver handler.Resolver, opts ...Option) int {
	o := &options{
		logOutput:  os.Stderr,
		loadConfig: config.Load,
		signals:    []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.console == nil {
		o.console = console.Stdio()
	}

	boot := logger.New("e5e", "", "info", o.logOutput, nil)

	runtimeOpts, argsErr := config.ParseArgs(args)
	if argsErr != nil && !config.IsLambda() {
		boot.Error(ctx, "Invalid startup arguments", argsErr, nil)
		return ExitUsage
	}

	if runtimeOpts.WriteMetadataOnStartup {
		if err := writeMetadata(o.console); err != nil {
			boot.Error(ctx, "Failed to write metadata", err, nil)
			return ExitSoftware
		}
		return ExitOK
	}

	cfg, err := o.loadConfig()
	if err != nil {
		boot.Error(ctx, "Failed to load configuration", err, nil)
		return ExitConfig
	}

	provider := observability.NewProvider(&observability.Config{
		ServiceName:     cfg.ServiceName,
		Environment:     cfg.Environment,
		LogLevel:        cfg.LogLevel,
		LogOutput:       o.logOutput,
		MetricsTextfile: cfg.MetricsTextfile,
	})
	log := provider.Logger("host")
	defer func() {
		// Close may have closed LogOutput already
		if err := provider.Close(); err != nil {
			logger.New(cfg.ServiceName, cfg.Environment, cfg.LogLevel, os.Stderr, nil).
				Error(ctx, "Failed to close observability provider", err, nil)
		}
	}()

	platform := cfg.Platform
	if platform == config.PlatformAuto {
		platform = handler.DetectPlatform()
	}

	entrypoint := runtimeOpts.Entrypoint
	if platform == config.PlatformLambda && cfg.LambdaEntrypoint != "" {
		entrypoint = cfg.LambdaEntrypoint
	}
	if platform == config.PlatformStdio && argsErr != nil {
		log.Error(ctx, "Invalid startup arguments", argsErr, nil)
		return ExitUsage
	}

	h, err := handler.NewFactory(resolver, provider).WithConfig(cfg).Create(entrypoint)
	if err != nil {
		log.Error(ctx, "Failed to resolve entrypoint", err, observability.Fields{
			"entrypoint": entrypoint,
		})
		return ExitConfig
	}

	log.Info(ctx, "Starting runtime", observability.Fields{
		"entrypoint":  entrypoint,
		"platform":    platform,
		"keep_alive":  runtimeOpts.KeepAlive,
		"environment": cfg.Environment,
	})

	if platform == config.PlatformLambda {
		platforms.NewLambdaAdapter(h, provider).Start()
		return ExitOK
	}

	if err := serve(ctx, h, o, runtimeOpts, provider); err != nil {
		log.Error(ctx, "Communication loop crashed", err, nil)
		return ExitSoftware
	}

	log.Info(ctx, "Runtime stopped", nil)
	return ExitOK
}

// serve runs the stdio loop. A shutdown signal closes the console, which
// unblocks a pending read; the function sees the same cancellation through
// its context.
func serve(ctx context.Context, h *handler.Handler, o *options, opts config.RuntimeOptions, provider observability.Provider) error {
	sigCtx, stop := signal.NotifyContext(ctx, o.signals...)
	defer stop()

	adapter := platforms.NewStdioAdapter(h, o.console, opts, provider)
	done := adapter.Start(sigCtx)

	select {
	case err := <-done:
		return err
	case <-sigCtx.Done():
		provider.Logger("host").Info(ctx, "Shutdown requested", observability.Fields{
			"state": adapter.State().String(),
		})
		if err := o.console.Close(); err != nil {
			return errors.Join(err, <-done)
		}
		return <-done
	}
}

func writeMetadata(c console.Console) error {
	doc, err := codec.EncodeMetadata(codec.NewMetadata())
	if err != nil {
		return err
	}
	if err := c.Open(); err != nil {
		return err
	}
	if err := c.WriteOut(doc); err != nil {
		_ = c.Close()
		return err
	}
	return c.Close()
}
