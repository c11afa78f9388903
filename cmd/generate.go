package cmd

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/cmmoran/dtogen/pkg/action/generate"
)

func init() {
	var generateCmd = NewGenerateCommand()
	rootCmd.AddCommand(generateCmd)
}

func NewGenerateCommand() *cobra.Command {
	// generateCmd represents the dtogen generate command
	var generateCmd = &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "generate transfer types",
		Long: "Generate a transfer type and a conversion holder for every struct with dto or dtochild " +
			"tagged fields, writing <Name>.g.go files next to the packages they belong to.",
		Args:    cobra.NoArgs,
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			sum, err := generate.Generate(c.Context(), opts)
			if err != nil {
				return err
			}
			slog.Default().With(
				"written", len(sum.Written),
				"unchanged", len(sum.Unchanged),
				"removed", len(sum.Removed),
				"diagnostics", len(sum.Diagnostics),
			).Info("generation complete")

			if len(sum.Diagnostics) > 0 {
				printDiagnostics(c.ErrOrStderr(), sum.Diagnostics)
				return errors.Mark(errors.Newf("%d diagnostic(s) reported", len(sum.Diagnostics)), errReported)
			}
			return nil
		},
	}
	addOptionFlags(generateCmd.Flags())

	return generateCmd
}
