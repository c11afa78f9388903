package parser

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/dtogen/internal/classify"
	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/manifest"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, ".", o.InDir)
	assert.Equal(t, []string{"./..."}, o.Patterns)
	assert.Equal(t, "Dto", o.Suffix)
	assert.Equal(t, "Poco", o.OriginalSuffix)
	assert.Equal(t, "none", o.JSONTags)
	assert.Equal(t, runtime.GOMAXPROCS(0), o.Workers)
	assert.Equal(t, manifest.DefaultFile, o.Manifest)
	assert.True(t, o.ManifestEnabled())
	assert.Equal(t, annotation.DefaultMarkers(), o.Markers)
	require.NoError(t, o.Validate())
}

func TestOptionFuncs(t *testing.T) {
	p, err := New(
		WithInDir("testdata"),
		WithPatterns("./model", "./api"),
		WithTests(),
		WithSuffix("View"),
		WithOriginalSuffix("Model"),
		WithJSONTags(" Camel "),
		WithListAlias(),
		WithWorkers(3),
		WithoutManifest(),
		WithMarkers(annotation.MarkerSet{Property: "view"}),
		WithOpaquePackages(" example.com/vendor "),
		WithCollections("github.com/emirpasic/gods/v2/sets/hashset.Set"),
	)
	require.NoError(t, err)

	o := p.Opts
	abs, _ := filepath.Abs("testdata")
	assert.Equal(t, abs, o.InDir)
	assert.Equal(t, []string{"./model", "./api"}, o.Patterns)
	assert.True(t, o.Tests)
	assert.Equal(t, "View", o.Suffix)
	assert.Equal(t, "Model", o.OriginalSuffix)
	assert.Equal(t, "camel", o.JSONTags)
	assert.True(t, o.ListAlias)
	assert.Equal(t, 3, o.Workers)
	assert.False(t, o.ManifestEnabled())
	assert.Equal(t, "view", o.Markers.Property)
	assert.Equal(t, annotation.DefaultChildProperty, o.Markers.ChildProperty)
	assert.Equal(t, []string{"example.com/vendor"}, o.OpaquePackages)

	shapes, err := o.collectionShapes()
	require.NoError(t, err)
	assert.Equal(t, []classify.Shape{{Namespace: "github.com/emirpasic/gods/v2/sets/hashset", Name: "Set"}}, shapes)
}

func TestNormalize(t *testing.T) {
	o := &Options{}
	o.Normalize()
	assert.True(t, filepath.IsAbs(o.InDir))
	assert.Equal(t, []string{"./..."}, o.Patterns)
	assert.Equal(t, "Dto", o.Suffix)
	assert.Equal(t, "none", o.JSONTags)
	assert.Positive(t, o.Workers)
	assert.Equal(t, manifest.DefaultFile, o.Manifest)
	assert.Equal(t, annotation.DefaultMarkers(), o.Markers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr string
	}{
		{name: "json tags", opt: WithJSONTags("kebab"), wantErr: "unsupported json tag casing"},
		{name: "collection", opt: WithCollections("Set"), wantErr: "invalid collection type"},
		{
			name:    "marker names",
			opt:     WithMarkers(annotation.MarkerSet{Property: "dto", ChildProperty: "dto"}),
			wantErr: `markers property and child_property share the name "dto"`,
		},
		{
			name:    "marker clashes with a default",
			opt:     WithMarkers(annotation.MarkerSet{Conversion: annotation.DefaultTransfer}),
			wantErr: `markers transfer and conversion share the name "dtogen:transfer"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
