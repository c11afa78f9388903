package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cmmoran/dtogen/pkg/model"
	"github.com/cmmoran/dtogen/pkg/parser"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("reported")

func isReported(err error) bool {
	return errors.Is(err, errReported)
}

// flag name -> config key
var optionKeys = []struct{ flag, key string }{
	{"input-directory", "in_dir"},
	{"pattern", "patterns"},
	{"tests", "tests"},
	{"suffix", "suffix"},
	{"original-suffix", "original_suffix"},
	{"json-tags", "json_tags"},
	{"list-alias", "list_alias"},
	{"workers", "workers"},
	{"manifest", "manifest"},
	{"opaque-package", "opaque_packages"},
	{"collection", "collections"},
	{"property-marker", "markers.property"},
	{"child-marker", "markers.child_property"},
	{"transfer-marker", "markers.transfer"},
	{"conversion-marker", "markers.conversion"},
}

// addOptionFlags registers the generation flags shared by generate and check.
func addOptionFlags(fs *pflag.FlagSet) {
	d := parser.NewOptions()
	fs.StringP("input-directory", "i", d.InDir, "directory to load packages from")
	fs.StringSliceP("pattern", "p", d.Patterns, "package patterns relative to the input directory")
	fs.Bool("tests", d.Tests, "also load _test.go files")
	fs.StringP("suffix", "s", d.Suffix, "suffix of transfer types and of ToDto/FromDto function names")
	fs.String("original-suffix", d.OriginalSuffix, "suffix of ToPoco/FromPoco function names")
	fs.String("json-tags", d.JSONTags, "json tags on transfer fields: none, camel or snake")
	fs.Bool("list-alias", d.ListAlias, "also emit a plural slice type per transfer type")
	fs.IntP("workers", "w", d.Workers, "types processed concurrently")
	fs.String("manifest", d.Manifest, `manifest path relative to the module root, "-" disables it`)
	fs.StringSlice("opaque-package", nil, "import path prefixes whose types are never nested child types")
	fs.StringSlice("collection", nil, "generic collection types as import/path.Name")
	fs.String("property-marker", d.Markers.Property, "struct tag key of the property marker")
	fs.String("child-marker", d.Markers.ChildProperty, "struct tag key of the child-property marker")
	fs.String("transfer-marker", d.Markers.Transfer, "directive name of the transfer marker")
	fs.String("conversion-marker", d.Markers.Conversion, "directive name of the conversion marker")
}

// bindOptionFlags binds the flags of the running command only, so commands
// sharing flag names do not steal each other's bindings.
func bindOptionFlags(c *cobra.Command, _ []string) error {
	for _, k := range optionKeys {
		if err := viper.BindPFlag(k.key, c.Flags().Lookup(k.flag)); err != nil {
			return errors.Wrapf(err, "bind flag %s", k.flag)
		}
	}
	return nil
}

// loadOptions merges defaults, config files, environment and flags.
func loadOptions() (*parser.Options, error) {
	opts := parser.NewOptions()
	if err := viper.Unmarshal(opts); err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid configuration"), "see dtogen generate --help")
	}
	return opts, nil
}

func printDiagnostics(w io.Writer, diags []model.Diagnostic) {
	for _, d := range diags {
		_, _ = fmt.Fprintln(w, d.String())
	}
}
