package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/journal"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/store"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	AccountID string
}

// ReconcileSummary is the structured success payload.
type ReconcileSummary struct {
	Outcome  string `json:"outcome"`
	Series   string `json:"series,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Resolve a pending series update against contract state",
		Long: `Check the journaled pending update for an account against the
authoritative contract record. A confirmed source deletes the record;
a mismatch re-issues the update and keeps the record for the next pass.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "account id to reconcile (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runReconcile(opts *ReconcileOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer db.Close()

	bridge := sandbox.NewBridge()
	jnl := journal.New(db, newCaller(cfg), bridge, cfg.MarketID, cfg.Deposit)

	outcome, err := jnl.Reconcile(cmd.Context(), opts.AccountID)
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "reconcile failed", err)
	}

	for _, entry := range bridge.Entries() {
		formatter.VerboseLog("%d: %s", entry.Sequence, entry.Text)
	}

	summary := ReconcileSummary{Outcome: string(outcome)}
	if record, ok, err := jnl.Pending(cmd.Context(), opts.AccountID); err == nil && ok {
		summary.Series = record.SeriesName
		summary.Attempts = record.Attempts
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	switch outcome {
	case journal.OutcomeAbsent:
		fmt.Fprintln(formatter.Writer, "No pending update for account")
	case journal.OutcomeConfirmed:
		fmt.Fprintln(formatter.Writer, "✓ Pending update confirmed and cleared")
	case journal.OutcomeReissued:
		fmt.Fprintf(formatter.Writer, "Pending update re-issued for %s (attempt %d)\n", summary.Series, summary.Attempts)
	}
	return nil
}
