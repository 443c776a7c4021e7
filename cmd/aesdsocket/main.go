package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"aesdsocket/internal/config"
	"aesdsocket/internal/daemon"
	"aesdsocket/internal/logging"
	"aesdsocket/internal/persistence/datafile"
	"aesdsocket/internal/server"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	flagSet := pflag.NewFlagSet("aesdsocket", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	daemonize := flagSet.BoolP("daemon", "d", false, "run in the background after binding the port")
	usage := func() {
		fmt.Fprintf(stderr, "Usage: aesdsocket [-d]\n\n")
		fmt.Fprintf(stderr, "Configuration file: $%s (YAML, optional)\n\n", config.EnvVar)
		flagSet.PrintDefaults()
	}
	// Справку печатаем сами.
	flagSet.Usage = func() {}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			usage()
			return exitOK
		}
		fmt.Fprintf(stderr, "aesdsocket: %v\n", err)
		usage()
		return exitUsage
	}
	if flagSet.NArg() > 0 {
		fmt.Fprintf(stderr, "aesdsocket: unexpected argument: %s\n", flagSet.Arg(0))
		usage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "aesdsocket: %v\n", err)
		return exitError
	}

	level, _ := cfg.Log.SlogLevel()
	logger, closeLog := logging.New(logging.Options{
		Level:  level,
		Syslog: cfg.Log.Syslog,
		Tag:    cfg.Log.Tag,
		Stderr: stderr,
	})
	defer closeLog()

	// Родитель после ухода в фон и потомок проходят через один и тот же
	// Run: первый только биндит порт, второй получает готовый сокет.
	opts, err := serverOptions(cfg, logger, *daemonize)
	if err != nil {
		logger.Error("setup failed", "error", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Addr(), cfg.DataFile, opts...)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		return exitError
	}
	return exitOK
}

func serverOptions(cfg *config.Config, logger *slog.Logger, daemonize bool) ([]server.Option, error) {
	mode, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithLineSize(cfg.InitialLineSize, cfg.MaxLineBytes),
		server.WithStoreOptions(
			datafile.WithMode(mode),
			datafile.WithChunkSize(cfg.ReadChunkSize),
		),
	}

	switch {
	case daemon.IsChild():
		ln, err := daemon.InheritedListener()
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithListener(ln))
	case daemonize:
		opts = append(opts, server.WithDetacher(daemon.Detach))
	}
	return opts, nil
}
