package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/directive"
	"github.com/roach88/atelier/internal/journal"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/store"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	AccountID string
	Name      string
	Price     string
	SellNow   bool
}

// PublishSummary is the structured success payload.
type PublishSummary struct {
	Name        string `json:"name"`
	Bytes       int    `json:"bytes"`
	SellNow     bool   `json:"sell_now"`
	Fingerprint string `json:"fingerprint"`
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish <document>",
		Short: "Submit a document as a new series on the contract",
		Long: `Validate and submit a directive document as a new series.

A pending-update record is journaled before the contract call, so an
interrupted submission is picked up by the next reconcile.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "submitting account id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "series name (required)")
	cmd.Flags().StringVar(&opts.Price, "price", "", "series price in yocto (required)")
	cmd.Flags().BoolVar(&opts.SellNow, "sell-now", false, "list the series for sale in the same call")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runPublish(opts *PublishOptions, path string, cmd *cobra.Command) error {
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

	source, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading document", err)
	}

	doc, err := directive.Parse(string(source))
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "document rejected", err)
	}

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer db.Close()

	jnl := journal.New(db, newCaller(cfg), sandbox.NewBridge(), cfg.MarketID, cfg.Deposit)

	name, err := jnl.Submit(cmd.Context(), journal.SubmitRequest{
		AccountID: opts.AccountID,
		Name:      opts.Name,
		Price:     opts.Price,
		Src:       string(source),
		Params:    doc.Params,
		SellNow:   opts.SellNow,
	})
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "publish failed", err)
	}

	fingerprint, err := doc.Params.Summarize().Fingerprint()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "fingerprinting params", err)
	}

	summary := PublishSummary{
		Name:        name,
		Bytes:       len(source),
		SellNow:     opts.SellNow,
		Fingerprint: fingerprint,
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Published series %s (%d bytes, params %s)\n", name, len(source), fingerprint)
	return nil
}
