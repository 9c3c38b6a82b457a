// Package cli implements the atelier command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/atelier/internal/config"
	"github.com/roach88/atelier/internal/directive"
	"github.com/roach88/atelier/internal/remote"
	"github.com/roach88/atelier/internal/series"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the atelier CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "atelier",
		Short: "Atelier - directive document studio",
		Long:  "Compile directive documents into sandboxed previews and manage series on the contract.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to studio config file")

	// Add subcommands
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewPackageCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig loads the studio config, falling back to defaults when no
// path is given.
func loadConfig(opts *RootOptions) (config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(opts.ConfigPath)
}

// newCaller builds the gateway caller from config.
func newCaller(cfg config.Config) remote.Caller {
	return remote.NewHTTPCaller(cfg.Endpoint, cfg.ContractID, cfg.GasBudget, nil)
}

// classifyError maps core error types to CLI error codes.
func classifyError(err error) string {
	var parseErr *directive.ParseError
	if errors.As(err, &parseErr) {
		return ErrCodeParse
	}
	var validationErr *series.ValidationError
	if errors.As(err, &validationErr) {
		return ErrCodeValidation
	}
	var remoteErr *remote.RemoteError
	if errors.As(err, &remoteErr) {
		return ErrCodeRemote
	}
	return ErrCodeGeneric
}
