package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the dtogen version",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(c.OutOrStdout(), Version())
		},
	})
}

// Version returns the linker-provided version, falling back to module build info.
func Version() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}
