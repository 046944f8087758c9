package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/expertlog/internal/config"
	"github.com/roach88/expertlog/internal/store"
)

// StoreFlags override the configured store addresses.
type StoreFlags struct {
	PrimaryDSN   string
	SecondaryDSN string
}

func addStoreFlags(cmd *cobra.Command, f *StoreFlags) {
	cmd.Flags().StringVar(&f.PrimaryDSN, "db", "", "primary store DSN (overrides DATABASE_URL)")
	cmd.Flags().StringVar(&f.SecondaryDSN, "secondary-db", "", "secondary store DSN (overrides SECONDARY_DATABASE_URL)")
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup loads the configuration, applies flag overrides and installs the
// default logger. Flags win over every other source.
func setup(cmd *cobra.Command, opts *RootOptions, flags *StoreFlags) (*config.Config, *slog.Logger, error) {
	ctx := commandContext(cmd)

	bootLevel := slog.LevelInfo
	if opts.Verbose {
		bootLevel = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), bootLevel)

	cfg, err := config.Load(ctx, logger, opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	if cmd.Flags().Changed("db") {
		cfg.PrimaryDSN = flags.PrimaryDSN
	}
	if cmd.Flags().Changed("secondary-db") {
		cfg.SecondaryDSN = flags.SecondaryDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level, _ := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openPrimary connects to the primary store and ensures its schema. Both
// steps must succeed.
func openPrimary(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Primary())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open primary store", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize primary schema", err)
	}
	logger.InfoContext(ctx, "primary store ready", "dialect", st.Dialect())
	return st, nil
}

// openSecondary connects to the secondary store. When strict is false an
// unreachable secondary, or one whose schema cannot be created, is only
// logged; its writes then fail and are captured for reconciliation.
func openSecondary(ctx context.Context, cfg *config.Config, logger *slog.Logger, strict bool) (*store.Store, error) {
	sc := cfg.Secondary()
	sc.Lazy = !strict
	st, err := store.Open(ctx, sc)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open secondary store", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		if strict {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to initialize secondary schema", err)
		}
		logger.WarnContext(ctx, "secondary store not ready, writes will be recorded for reconciliation",
			"dialect", st.Dialect(), "error", err)
		return st, nil
	}
	logger.InfoContext(ctx, "secondary store ready", "dialect", st.Dialect())
	return st, nil
}

func closeStore(ctx context.Context, logger *slog.Logger, st *store.Store) {
	if err := st.Close(); err != nil {
		logger.ErrorContext(ctx, "error closing store", "store", st.Name(), "error", err)
	}
}
