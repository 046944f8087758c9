package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitSchemaOptions holds flags for the init-schema command.
type InitSchemaOptions struct {
	*RootOptions
	StoreFlags
}

// SchemaResult reports which stores were initialized.
type SchemaResult struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

func (r SchemaResult) textLine() string {
	if r.Secondary == "" {
		return fmt.Sprintf("schema ready: primary (%s)", r.Primary)
	}
	return fmt.Sprintf("schema ready: primary (%s), secondary (%s)", r.Primary, r.Secondary)
}

// NewInitSchemaCommand creates the init-schema command.
func NewInitSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitSchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init-schema",
		Short: "Create the tables in every configured store",
		Long: `Create expert_log, expert_camp and replication_outbox in the primary
store, and in the secondary store when one is configured. Existing tables
are left untouched.

Example:
  expertlog init-schema --db ./expertlog.db
  expertlog init-schema --db postgres://localhost/a --secondary-db postgres://localhost/b`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitSchema(cmd, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreFlags)
	return cmd
}

func runInitSchema(cmd *cobra.Command, opts *InitSchemaOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, logger, err := setup(cmd, opts.RootOptions, &opts.StoreFlags)
	if err != nil {
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
	result := SchemaResult{Primary: primary.Dialect()}

	if cfg.HasSecondary() {
		secondary, err := openSecondary(ctx, cfg, logger, true)
		if err != nil {
			_ = out.Error(CodeStore, err.Error(), nil)
			return err
		}
		defer closeStore(ctx, logger, secondary)
		result.Secondary = secondary.Dialect()
	}

	return out.Success(result)
}
