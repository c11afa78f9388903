package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/cmmoran/dtogen/pkg/action/check"
)

func init() {
	rootCmd.AddCommand(NewCheckCommand())
}

func NewCheckCommand() *cobra.Command {
	var checkCmd = &cobra.Command{
		Use:     "check",
		Short:   "verify generated files are current",
		Long:    "Regenerate in memory and compare with the files on disk. Exits non-zero on any difference or diagnostic.",
		Args:    cobra.NoArgs,
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			rep, err := check.Check(c.Context(), opts)
			if err != nil {
				return err
			}
			printDiagnostics(c.ErrOrStderr(), rep.Diagnostics)
			for _, d := range rep.Drift {
				_, _ = fmt.Fprintln(c.ErrOrStderr(), d.String())
			}
			if !rep.Clean() {
				return errors.Mark(
					errors.Newf("%d file(s) out of date, %d diagnostic(s)", len(rep.Drift), len(rep.Diagnostics)),
					errReported,
				)
			}
			return nil
		},
	}
	addOptionFlags(checkCmd.Flags())

	return checkCmd
}
