package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/journal"
	"github.com/roach88/atelier/internal/render"
	"github.com/roach88/atelier/internal/resolver"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	AccountID    string
	OwnerID      string
	NumTransfers int64
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Render a document and host it in the browser preview",
		Long: `Render a directive document and serve it at the configured listen
address. The host page embeds the sandboxed iframe and relays its
console traffic back over the bridge websocket.

With --account, a journal reconcile runs before serving, mirroring
startup recovery.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "account id to reconcile before serving")
	cmd.Flags().StringVar(&opts.OwnerID, "owner-id", "", "owner id substituted for {{OWNER_ID}}")
	cmd.Flags().Int64Var(&opts.NumTransfers, "num-transfers", 0, "transfer count substituted for {{NUM_TRANSFERS}}")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
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

	caller := newCaller(cfg)
	bridge := sandbox.NewBridge()

	if opts.AccountID != "" {
		db, err := store.Open(cfg.StorePath)
		if err != nil {
			_ = formatter.Error(ErrCodeIO, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening store", err)
		}
		jnl := journal.New(db, caller, bridge, cfg.MarketID, cfg.Deposit)
		outcome, err := jnl.Reconcile(cmd.Context(), opts.AccountID)
		db.Close()
		if err != nil {
			// Recovery failures are reported but never block the preview.
			formatter.VerboseLog("reconcile: %v", err)
		}
		formatter.VerboseLog("reconcile outcome: %s", outcome)
	}

	renderer := render.New(
		resolver.New(caller, resolver.NewCache()),
		sandbox.NewComposer(cfg.Origin),
		sandbox.NewRegistry(bridge),
		bridge,
	)

	result, err := renderer.Render(cmd.Context(), render.Request{
		Source:       string(source),
		OwnerID:      opts.OwnerID,
		NumTransfers: opts.NumTransfers,
	})
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "render failed", err)
	}

	relay := sandbox.NewRelay(bridge)
	defer relay.Close()

	preview := sandbox.NewPreview(relay)
	preview.SetDocument(result.Document)

	// Drain bridge console entries to the terminal as they arrive.
	go func() {
		seen := -1
		for range bridge.Updates() {
			for _, entry := range bridge.Entries() {
				if entry.Sequence > seen {
					seen = entry.Sequence
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", entry.Text)
				}
			}
		}
	}()

	fmt.Fprintf(formatter.Writer, "Serving preview at http://%s/\n", cfg.ListenAddr)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: preview.Handler()}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitFailure, "preview server stopped", err)
	}
	return nil
}
