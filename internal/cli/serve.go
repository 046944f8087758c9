package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/expertlog/internal/config"
	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/replica"
	"github.com/roach88/expertlog/internal/server"
	"github.com/roach88/expertlog/internal/store"
)

const (
	shutdownTimeout = 10 * time.Second
	journalTimeout  = 10 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	StoreFlags
	Port int

	// Ready, when set, is called with the bound address once the listener is
	// open (for testing).
	Ready func(addr net.Addr)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Long: `Start the HTTP service.

The primary store's schema is created before listening; failing that is
fatal. When a secondary store is configured every write is replicated to it.
A secondary that is down at startup does not prevent the service from
starting: its missed writes are logged, kept in the outbox (unless disabled)
and journaled to MongoDB when a journal URI is configured.

Example:
  expertlog serve --port 3000 --db ./expertlog.db
  expertlog serve --db postgres://localhost/a --secondary-db postgres://localhost/b`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreFlags)
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, logger, err := setup(cmd, opts.RootOptions, &opts.StoreFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = opts.Port
		if err := cfg.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
	}

	// Use command's context if available (for testing), otherwise create one
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	primary, err := openPrimary(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(ctx, logger, primary)

	var secondary *store.Store
	if cfg.HasSecondary() {
		secondary, err = openSecondary(ctx, cfg, logger, false)
		if err != nil {
			return err
		}
		defer closeStore(ctx, logger, secondary)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sink, outbox, closeSink := buildSink(ctx, cfg, logger, primary)
	defer closeSink()

	logIDs, campIDs := cfg.IDStrategies()
	coordOpts := []replica.Option{
		replica.WithIDStrategies(logIDs, campIDs),
		replica.WithSink(sink),
		replica.WithMetrics(replica.NewMetrics(registry)),
		replica.WithLogger(logger),
	}
	if secondary != nil {
		coordOpts = append(coordOpts, replica.WithSecondary(secondary))
	}
	if outbox != nil {
		coordOpts = append(coordOpts, replica.WithBacklog(outbox))
	}
	coord := replica.New(primary, coordOpts...)

	srv := server.New(server.Config{
		Writer:   coord,
		Reader:   primary,
		Decode:   record.DecodeOptions{LogIDs: cfg.LogIDMode.Kind(), CampIDs: cfg.CampIDMode.Kind()},
		Logger:   logger,
		Registry: registry,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	logger.InfoContext(ctx, "listening",
		"addr", ln.Addr().String(),
		"replication", secondary != nil,
		"log_ids", cfg.LogIDMode,
		"camp_ids", cfg.CampIDMode,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "expertlog backend listening on %s\n", ln.Addr())
	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// buildSink assembles the replication side channel: always the log, plus
// the outbox and the MongoDB journal when configured. A journal that cannot
// be reached is skipped with a warning. The outbox is returned as well, nil
// when disabled.
func buildSink(ctx context.Context, cfg *config.Config, logger *slog.Logger, primary *store.Store) (replica.Sink, *replica.Outbox, func()) {
	sinks := replica.MultiSink{replica.NewLogSink(logger)}
	closeFn := func() {}

	var outbox *replica.Outbox
	if cfg.HasSecondary() && cfg.Outbox {
		outbox = replica.NewOutbox(primary, replica.WithOutboxLogger(logger))
		sinks = append(sinks, outbox)
	}

	if cfg.JournalURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, journalTimeout)
		defer cancel()
		journal, disconnect, err := replica.ConnectMongoJournal(connectCtx, cfg.JournalURI)
		if err != nil {
			logger.WarnContext(ctx, "replication journal unavailable", "error", err)
		} else {
			sinks = append(sinks, journal)
			closeFn = func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), journalTimeout)
				defer cancel()
				if err := disconnect(disconnectCtx); err != nil {
					logger.Error("error disconnecting replication journal", "error", err)
				}
			}
		}
	}

	return sinks, outbox, closeFn
}
