package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/render"
	"github.com/roach88/atelier/internal/resolver"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/series"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output       string
	OwnerID      string
	NumTransfers int64
	MintArgs     []string
	OwnerArgs    []string
	Packages     []string // ref=url pre-seeds the resolver cache
}

// RenderSummary is the structured success payload.
type RenderSummary struct {
	ID       string   `json:"id"`
	Bytes    int      `json:"bytes"`
	Packages []string `json:"packages"`
	Output   string   `json:"output,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Compile a directive document into a sandboxed preview page",
		Long: `Compile a directive document into a self-contained HTML document.

Placeholders are substituted from the document's own defaults, optionally
overridden positionally with --mint-arg/--owner-arg. Package references
resolve through the contract unless pre-seeded with --package ref=url.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.OwnerID, "owner-id", "", "owner id substituted for {{OWNER_ID}}")
	cmd.Flags().Int64Var(&opts.NumTransfers, "num-transfers", 0, "transfer count substituted for {{NUM_TRANSFERS}}")
	cmd.Flags().StringArrayVar(&opts.MintArgs, "mint-arg", nil, "positional mint argument override (repeatable)")
	cmd.Flags().StringArrayVar(&opts.OwnerArgs, "owner-arg", nil, "positional owner argument override (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Packages, "package", nil, "pre-resolved package as ref=url (repeatable)")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
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

	cache := resolver.NewCache()
	if err := seedCache(cache, opts.Packages); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "seeding package cache", err)
	}

	bridge := sandbox.NewBridge()
	renderer := render.New(
		resolver.New(newCaller(cfg), cache),
		sandbox.NewComposer(cfg.Origin),
		sandbox.NewRegistry(bridge),
		bridge,
	)

	result, err := renderer.Render(cmd.Context(), render.Request{
		Source:       string(source),
		Args:         positionalArgs(opts.MintArgs, opts.OwnerArgs),
		OwnerID:      opts.OwnerID,
		NumTransfers: opts.NumTransfers,
	})
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "render failed", err)
	}

	for _, entry := range bridge.Entries() {
		formatter.VerboseLog("%d: %s", entry.Sequence, entry.Text)
	}

	summary := RenderSummary{
		ID:       result.ID,
		Bytes:    len(result.Document),
		Packages: result.Params.Packages,
		Output:   opts.Output,
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Document), 0644); err != nil {
			_ = formatter.Error(ErrCodeIO, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(summary)
		}
		fmt.Fprintf(formatter.Writer, "✓ Rendered %d byte(s) to %s\n", summary.Bytes, opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprint(formatter.Writer, result.Document)
	return nil
}

// seedCache pre-populates the resolver cache from ref=url flags, so fully
// seeded renders never touch the gateway.
func seedCache(cache *resolver.Cache, entries []string) error {
	for _, entry := range entries {
		ref, url, ok := strings.Cut(entry, "=")
		if !ok || ref == "" || url == "" {
			return fmt.Errorf("malformed --package %q: expected ref=url", entry)
		}
		cache.Put(ref, url)
	}
	return nil
}

// positionalArgs converts flag values into positional override lists.
// Flag values are bound as strings; authors quote inside the document.
func positionalArgs(mint, owner []string) map[series.Group][]series.Value {
	args := make(map[series.Group][]series.Value)
	for g, list := range map[series.Group][]string{
		series.GroupMint:  mint,
		series.GroupOwner: owner,
	} {
		if len(list) == 0 {
			continue
		}
		values := make([]series.Value, len(list))
		for i, v := range list {
			values[i] = series.String(v)
		}
		args[g] = values
	}
	return args
}
