package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/nzbget-exporter/internal/config"
	"github.com/tinoosan/nzbget-exporter/internal/logging"
	"github.com/tinoosan/nzbget-exporter/internal/metrics"
	"github.com/tinoosan/nzbget-exporter/internal/nzbget"
	"github.com/tinoosan/nzbget-exporter/internal/poller"
	"github.com/tinoosan/nzbget-exporter/internal/router"
	"github.com/tinoosan/nzbget-exporter/internal/server"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	listenAddr   = server.DefaultAddr
	pollInterval = poller.DefaultInterval
)

// usageError marks command-line and configuration mistakes.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the exporter and maps its outcome to a process exit code:
// 2 for a missing required variable or bad flags, 1 for any runtime
// failure, 0 after a signal-driven shutdown.
func execute(ctx context.Context, args []string, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var ue *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrMissingEnv), errors.As(err, &ue):
		return exitUsage
	default:
		return exitFailure
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "nzbget-exporter",
		Short:         "Export NZBGet metrics",
		Long:          "Polls the NZBGet status API and exposes its counters as Prometheus gauges on " + server.DefaultAddr + ".",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return run(cmd.Context(), verbose, stderr)
		},
	}
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.Flags().BoolP("verbose", "v", false, "Be verbose")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		_ = cmd.Usage()
		fmt.Fprintln(stderr, err)
		return &usageError{err: err}
	})
	return root
}

func run(ctx context.Context, verbose bool, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		boot, _ := logging.New(logging.Options{Out: stderr})
		boot.Error(err.Error())
		return err
	}

	logger, closer := logging.New(logging.Options{
		Verbose: verbose || cfg.Debug,
		File:    cfg.LogFile,
		Out:     stderr,
	})
	defer func() { _ = closer.Close() }()

	m := metrics.New()
	cl, err := nzbget.NewClient(cfg.URL, cfg.Username, cfg.Password, cfg.Timeout(), m)
	if err != nil {
		logger.Error("invalid nzbget url", "err", err)
		return err
	}

	p := poller.New(logger, cl, m)
	p.SetInterval(pollInterval)

	srv, err := server.Listen(logger, listenAddr, router.New(logger, m.Registry, p, cfg.ExporterToken))
	if err != nil {
		logger.Error("start metrics endpoint", "err", err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error { return p.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("exporter terminated", "err", err)
		return err
	}
	logger.Info("exporter stopped")
	return nil
}
