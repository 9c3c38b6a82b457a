package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/directive"
	"github.com/roach88/atelier/internal/series"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Name  string
	Price string
}

// ValidateSummary is the structured success payload.
type ValidateSummary struct {
	Valid       bool     `json:"valid"`
	Name        string   `json:"name,omitempty"`
	Packages    []string `json:"packages"`
	MintKeys    []string `json:"mint_keys"`
	OwnerKeys   []string `json:"owner_keys"`
	Fingerprint string   `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Parse a directive document and check series metadata",
		Long: `Parse a directive document without rendering it.

With --name and --price, also checks the series metadata the way a
publish would, so authors catch rejections before submitting.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "series name to validate")
	cmd.Flags().StringVar(&opts.Price, "price", "", "series price to validate")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
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

	fingerprint, err := doc.Params.Summarize().Fingerprint()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "fingerprinting params", err)
	}

	summary := ValidateSummary{
		Valid:       true,
		Packages:    doc.Params.Packages,
		MintKeys:    doc.Params.Keys(series.GroupMint),
		OwnerKeys:   doc.Params.Keys(series.GroupOwner),
		Fingerprint: fingerprint,
	}

	if opts.Name != "" {
		name := series.NormalizeName(opts.Name)
		if err := series.ValidateName(name); err != nil {
			_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
			return WrapExitError(ExitFailure, "name rejected", err)
		}
		summary.Name = name
	}
	if opts.Price != "" {
		if err := series.ValidatePrice(opts.Price); err != nil {
			_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
			return WrapExitError(ExitFailure, "price rejected", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Document is valid\n")
	fmt.Fprintf(formatter.Writer, "  packages: %d\n", len(summary.Packages))
	fmt.Fprintf(formatter.Writer, "  mint params: %d\n", len(summary.MintKeys))
	fmt.Fprintf(formatter.Writer, "  owner params: %d\n", len(summary.OwnerKeys))
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", summary.Fingerprint)
	if summary.Name != "" {
		fmt.Fprintf(formatter.Writer, "  series name: %s\n", summary.Name)
	}
	return nil
}
