package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/expertlog/internal/replica"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	StoreFlags
}

// ReconcileResult reports one outbox drain.
type ReconcileResult struct {
	replica.DrainReport
}

func (r ReconcileResult) textLine() string {
	return fmt.Sprintf("reconciled: %d applied, %d already present", r.Applied, r.Skipped)
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Replay writes the secondary store missed",
		Long: `Replay the primary's replication outbox into the secondary store, oldest
entry first. Entries are removed once the secondary holds them. Replay stops
at the first failure so a camp is never applied before its log.

Example:
  expertlog reconcile --db ./primary.db --secondary-db ./secondary.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreFlags)
	return cmd
}

func runReconcile(cmd *cobra.Command, opts *ReconcileOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, logger, err := setup(cmd, opts.RootOptions, &opts.StoreFlags)
	if err != nil {
		_ = out.Error(CodeConfig, err.Error(), nil)
		return err
	}
	if !cfg.HasSecondary() {
		err := NewExitError(ExitCommandError, "no secondary store configured")
		_ = out.Error(CodeConfig, err.Error(), nil)
		return err
	}
	ctx := commandContext(cmd)

	primary, err := openPrimary(ctx, cfg, logger)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		return err
	}
	defer closeStore(ctx, logger, primary)

	secondary, err := openSecondary(ctx, cfg, logger, true)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		return err
	}
	defer closeStore(ctx, logger, secondary)

	outbox := replica.NewOutbox(primary, replica.WithOutboxLogger(logger))
	report, err := outbox.Drain(ctx, secondary)
	result := ReconcileResult{DrainReport: report}
	if err != nil {
		_ = out.Error(CodeReconcile, err.Error(), result)
		return WrapExitError(ExitFailure, "reconciliation stopped", err)
	}
	logger.InfoContext(ctx, "outbox drained", "applied", report.Applied, "skipped", report.Skipped)
	return out.Success(result)
}
