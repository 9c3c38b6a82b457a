package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/directive"
	"github.com/roach88/atelier/internal/resolver"
)

// PackageSummary is the structured success payload for package subcommands.
type PackageSummary struct {
	Ref string `json:"ref"`
	URL string `json:"url,omitempty"`
}

// NewPackageCommand creates the package command group.
func NewPackageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Manage shared library packages on the contract",
	}

	cmd.AddCommand(newPackageAddCommand(rootOpts))
	cmd.AddCommand(newPackageResolveCommand(rootOpts))
	cmd.AddCommand(newPackageIncludeCommand(rootOpts))

	return cmd
}

func newPackageAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name@version> <url>",
		Short: "Register a package with the contract",
		Long: `Fetch the library source at the CDN URL, hash it, and register the
name@version reference with the contract.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackageAdd(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runPackageAdd(opts *RootOptions, ref, url string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	pub := resolver.NewPublisher(newCaller(cfg), nil, cfg.Deposit)
	if err := pub.Publish(cmd.Context(), ref, url); err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "package add failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PackageSummary{Ref: ref, URL: url})
	}
	fmt.Fprintf(formatter.Writer, "✓ Registered %s -> %s\n", ref, url)
	return nil
}

func newPackageIncludeCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "include <document> <name@version>",
		Short: "Add a package reference to a document's parameter block",
		Long: `Parse the document, append the package reference to its parameter
block, and write the rewritten source back. Including a reference the
document already carries is a no-op. Only the @params region changes;
markup, styling, and script are preserved byte-for-byte.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackageInclude(rootOpts, args[0], args[1], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rewritten document here instead of in place")

	return cmd
}

func runPackageInclude(opts *RootOptions, path, ref, output string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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

	doc.Params.IncludePackage(ref)
	rewritten, err := directive.ReplaceParams(string(source), doc.Params)
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "rewriting document", err)
	}

	if output == "" {
		output = path
	}
	if err := os.WriteFile(output, []byte(rewritten), 0644); err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "writing document", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PackageSummary{Ref: ref})
	}
	fmt.Fprintf(formatter.Writer, "✓ Included %s in %s\n", ref, output)
	return nil
}

func newPackageResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resolve <name@version>",
		Short:         "Look up the CDN URL for a package reference",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackageResolve(rootOpts, args[0], cmd)
		},
	}
}

func runPackageResolve(opts *RootOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	res := resolver.New(newCaller(cfg), resolver.NewCache())
	url, err := res.Resolve(cmd.Context(), ref)
	if err != nil {
		_ = formatter.Error(classifyError(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "package resolve failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PackageSummary{Ref: ref, URL: url})
	}
	fmt.Fprintln(formatter.Writer, url)
	return nil
}
