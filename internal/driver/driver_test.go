package driver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/dtogen/internal/builder"
	"github.com/cmmoran/dtogen/pkg/model"
)

const (
	nsModel   = "example.com/app/model"
	nsLegacy  = "example.com/app/legacy"
	nsAPI     = "example.com/app/api"
	nsMapping = "example.com/app/mapping"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newDriver(workers int) *Driver {
	return New(Options{
		Builder: builder.Options{PackageNames: model.PackageNames{nsModel: "model", nsAPI: "api", nsLegacy: "legacy"}},
		Workers: workers,
		Logger:  discard,
	})
}

func member(name string, typ model.TypeRef, line int, markers ...model.Marker) model.Member {
	return model.Member{
		Name:     name,
		Type:     typ,
		Mutable:  true,
		Location: model.Location{File: "model/types.go", Line: line, Column: 2},
		Markers:  markers,
	}
}

func marked(name string, typ model.TypeRef, line int) model.Member {
	return member(name, typ, line, model.Marker{Name: "dto"})
}

func decl(ns, name string, line int, members ...model.Member) model.Declaration {
	return model.Declaration{
		Name:      name,
		Namespace: ns,
		Package:   model.DerivePackageName(ns),
		Location:  model.Location{File: model.DerivePackageName(ns) + "/types.go", Line: line, Column: 6},
		Members:   members,
	}
}

func conversion(behavior string) model.Marker {
	return model.Marker{Name: "dtogen:conversion", Named: []model.NamedArgument{
		{Key: "GenerationBehavior", Value: model.String(behavior)},
	}}
}

func transferTo(ns string) model.Marker {
	return model.Marker{Name: "dtogen:transfer", Named: []model.NamedArgument{
		{Key: "Namespace", Value: model.String(ns)},
	}}
}

func conversionTo(ns string) model.Marker {
	return model.Marker{Name: "dtogen:conversion", Named: []model.NamedArgument{
		{Key: "Namespace", Value: model.String(ns)},
	}}
}

func person() model.Declaration {
	return decl(nsModel, "Person", 10,
		marked("FirstName", model.Builtin("string"), 11),
		marked("LastName", model.Builtin("string"), 12),
		member("Secret", model.Builtin("string"), 13),
	)
}

func hints(arts []model.Artifact) []string {
	out := make([]string, 0, len(arts))
	for _, a := range arts {
		out = append(out, a.Key())
	}
	return out
}

func codes(diags []model.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestRunDefaults(t *testing.T) {
	res, err := newDriver(2).Run(context.Background(), []model.Declaration{person()})
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
	require.Len(t, res.Models, 1)

	assert.Equal(t, []string{
		nsModel + "/PersonDto.g.go",
		nsModel + "/PersonExtensions.g.go",
	}, hints(res.Artifacts))

	dto := string(res.Artifacts[0].Content)
	assert.Contains(t, dto, "type PersonDto struct")
	assert.Contains(t, dto, "FirstName string")
	assert.NotContains(t, dto, "Secret")
}

func TestRunIsIdempotent(t *testing.T) {
	decls := []model.Declaration{
		person(),
		decl(nsModel, "Order", 20, marked("Total", model.Builtin("float64"), 21)),
		decl(nsLegacy, "Customer", 5, marked("Name", model.Builtin("string"), 6)),
	}
	first, err := newDriver(1).Run(context.Background(), decls)
	require.NoError(t, err)

	reversed := []model.Declaration{decls[2], decls[1], decls[0]}
	second, err := newDriver(8).Run(context.Background(), reversed)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("artifacts differ between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{
		nsLegacy + "/CustomerDto.g.go",
		nsLegacy + "/CustomerExtensions.g.go",
		nsModel + "/OrderDto.g.go",
		nsModel + "/OrderExtensions.g.go",
		nsModel + "/PersonDto.g.go",
		nsModel + "/PersonExtensions.g.go",
	}, hints(first.Artifacts))
}

func TestRunBehaviorGating(t *testing.T) {
	tests := []struct {
		behavior string
		present  []string
		absent   []string
	}{
		{"Full", []string{"ToDto(", "FromDto(", "ToPoco(", "FromPoco("}, nil},
		{"OnlyTransferFunctions", []string{"ToDto(", "FromPoco("}, []string{"FromDto(", "ToPoco("}},
		{"OnlyOriginalFunctions", []string{"FromDto(", "ToPoco("}, []string{"ToDto(", "FromPoco("}},
		{"OnlyToFunctions", []string{"ToDto(", "ToPoco("}, []string{"FromDto(", "FromPoco("}},
		{"OnlyFromFunctions", []string{"FromDto(", "FromPoco("}, []string{"ToDto(", "ToPoco("}},
	}
	for _, tt := range tests {
		t.Run(tt.behavior, func(t *testing.T) {
			d := person()
			d.Markers = []model.Marker{conversion(tt.behavior)}

			res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
			require.NoError(t, err)
			require.Len(t, res.Artifacts, 2)
			src := string(res.Artifacts[1].Content)
			for _, p := range tt.present {
				assert.Contains(t, src, ") "+p)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, src, ") "+a)
			}
		})
	}

	d := person()
	d.Markers = []model.Marker{conversion("NoGeneration")}
	res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Equal(t, []string{nsModel + "/PersonDto.g.go"}, hints(res.Artifacts))
}

func TestRunReadOnlyProperty(t *testing.T) {
	d := person()
	d.Members[0].Mutable = false

	res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Equal(t, []string{"AS001"}, codes(res.Diagnostics))
	require.Len(t, res.Artifacts, 2)
	dto := string(res.Artifacts[0].Content)
	assert.NotContains(t, dto, "FirstName")
	assert.Contains(t, dto, "LastName")
}

func TestRunAbstract(t *testing.T) {
	d := person()
	d.Abstract = true

	res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Equal(t, []string{"AS002"}, codes(res.Diagnostics))
	assert.Empty(t, res.Artifacts)
	assert.True(t, res.HasErrors())
}

func TestRunChildProperty(t *testing.T) {
	child := member("Details", model.SliceOf(model.Named(nsModel, "Detail")), 14, model.Marker{
		Name:     "dtochild",
		TypeArgs: []model.TypeRef{model.SliceOf(model.Named(nsModel, "DetailDto"))},
	})

	d := person()
	d.Members = append(d.Members, child)
	res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Equal(t, []string{"AS003"}, codes(res.Diagnostics))
	assert.Empty(t, res.Artifacts)

	d.Markers = []model.Marker{conversion("NoGeneration")}
	res, err = newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Equal(t, []string{nsModel + "/PersonDto.g.go"}, hints(res.Artifacts))
	assert.Contains(t, string(res.Artifacts[0].Content), "[]DetailDto")
}

func TestRunQualifiesCollectionElements(t *testing.T) {
	d := decl(nsModel, "Catalog", 30,
		marked("Items", model.MapOf(model.Builtin("string"), model.SliceOf(model.PointerTo(model.Named(nsModel, "Item")))), 31),
		marked("Tags", model.SliceOf(model.Named(nsLegacy, "Tag")), 32),
	)
	d.Markers = []model.Marker{transferTo(nsAPI), conversionTo(nsMapping)}

	res, err := newDriver(1).Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Models, 1)

	p := res.Models[0].Properties[0]
	assert.Equal(t, model.ClassCollection, p.Class)
	require.Len(t, p.CollectionElementTypes, 2)
	assert.Equal(t, nsModel+".Item", p.CollectionElementTypes[1].QualifiedName())

	require.Equal(t, nsAPI+"/CatalogDto.g.go", res.Artifacts[0].Key())
	dto := string(res.Artifacts[0].Content)
	assert.Contains(t, dto, "package api")
	assert.Contains(t, dto, "map[string][]*model.Item")
	assert.Contains(t, dto, "[]legacy.Tag")
	assert.Contains(t, dto, `"example.com/app/model"`)
	assert.Contains(t, dto, `"example.com/app/legacy"`)
}

func TestRunImportCycle(t *testing.T) {
	catalog := func(markers ...model.Marker) model.Declaration {
		d := decl(nsModel, "Catalog", 30,
			marked("Items", model.SliceOf(model.Named(nsModel, "Item")), 31),
		)
		d.Markers = markers
		return d
	}
	// model already imports mapping through an unmarked member
	order := decl(nsModel, "Order", 10,
		marked("Number", model.Builtin("string"), 11),
		member("Ref", model.Named(nsMapping, "Ref"), 12),
	)
	order.Markers = []model.Marker{conversionTo(nsMapping)}

	tests := []struct {
		name    string
		decls   []model.Declaration
		want    []string
		wantMsg string
	}{
		{
			name:    "holder in source namespace",
			decls:   []model.Declaration{catalog(transferTo(nsAPI))},
			wantMsg: nsAPI + " -> " + nsModel + " -> " + nsAPI,
		},
		{
			name:  "holder next to transfer",
			decls: []model.Declaration{catalog(transferTo(nsAPI), conversionTo(nsAPI))},
			want:  []string{nsAPI + "/CatalogDto.g.go", nsAPI + "/CatalogExtensions.g.go"},
		},
		{
			name:  "no holder",
			decls: []model.Declaration{catalog(transferTo(nsAPI), conversion("NoGeneration"))},
			want:  []string{nsAPI + "/CatalogDto.g.go"},
		},
		{
			name:    "source already imports the holder namespace",
			decls:   []model.Declaration{order},
			wantMsg: nsMapping + " -> " + nsModel + " -> " + nsMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newDriver(2).Run(context.Background(), tt.decls)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(hints(res.Artifacts)))
			if tt.wantMsg == "" {
				assert.Empty(t, res.Diagnostics)
				return
			}
			require.Equal(t, []string{"AS005"}, codes(res.Diagnostics))
			assert.Equal(t, tt.decls[0].Location, res.Diagnostics[0].Location)
			assert.Contains(t, res.Diagnostics[0].Message, tt.wantMsg)
			assert.Empty(t, res.Models)
		})
	}
}

func TestRunImportCycleAcrossModels(t *testing.T) {
	// Widget's holder in model imports api, so a later model whose transfer in
	// api needs model closes a cycle even with its own holder in api
	widget := decl(nsModel, "Widget", 10, marked("Name", model.Builtin("string"), 11))
	widget.Markers = []model.Marker{transferTo(nsAPI)}
	zone := decl(nsModel, "Zone", 20, marked("Owner", model.Named(nsModel, "Widget"), 21))
	zone.Markers = []model.Marker{transferTo(nsAPI), conversionTo(nsAPI)}

	res, err := newDriver(4).Run(context.Background(), []model.Declaration{zone, widget})
	require.NoError(t, err)
	require.Equal(t, []string{"AS005"}, codes(res.Diagnostics))
	assert.Equal(t, zone.Location, res.Diagnostics[0].Location)
	assert.Equal(t, []string{
		nsAPI + "/WidgetDto.g.go",
		nsModel + "/WidgetExtensions.g.go",
	}, hints(res.Artifacts))
}

func TestRunImportsOverrideMemberTypes(t *testing.T) {
	d := decl(nsModel, "Order", 10,
		marked("Number", model.Builtin("string"), 11),
		member("Ref", model.Named(nsMapping, "Ref"), 12),
	)
	d.Markers = []model.Marker{conversionTo(nsMapping)}

	drv := New(Options{
		Builder: builder.Options{PackageNames: model.PackageNames{nsModel: "model", nsMapping: "mapping"}},
		Logger:  discard,
		Imports: model.Imports{nsModel: {"time"}},
	})
	res, err := drv.Run(context.Background(), []model.Declaration{d})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Len(t, res.Artifacts, 2)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestRunDuplicateGenerationTarget(t *testing.T) {
	a := decl(nsLegacy, "Person", 3, marked("Name", model.Builtin("string"), 4))
	a.Markers = []model.Marker{transferTo(nsAPI)}
	b := decl(nsModel, "Person", 10, marked("Name", model.Builtin("string"), 11))
	b.Markers = []model.Marker{transferTo(nsAPI)}

	res, err := newDriver(4).Run(context.Background(), []model.Declaration{b, a})
	require.NoError(t, err)
	require.Equal(t, []string{"AS004"}, codes(res.Diagnostics))
	assert.Equal(t, b.Location, res.Diagnostics[0].Location)
	assert.Contains(t, res.Diagnostics[0].Message, "'example.com/app/model.Person'")
	assert.Contains(t, res.Diagnostics[0].Message, "'example.com/app/legacy.Person'")

	// the losing model is dropped with its conversion holder
	require.Len(t, res.Models, 1)
	assert.Equal(t, nsLegacy, res.Models[0].SourceNamespace)
	assert.Equal(t, []string{
		nsAPI + "/PersonDto.g.go",
		nsLegacy + "/PersonExtensions.g.go",
	}, hints(res.Artifacts))
}

func TestCandidates(t *testing.T) {
	drv := newDriver(1)
	p := person()
	unmarked := decl(nsModel, "Plain", 1, member("Name", model.Builtin("string"), 2))
	typeOnly := decl(nsModel, "TypeOnly", 1, member("Name", model.Builtin("string"), 2))
	typeOnly.Markers = []model.Marker{conversion("Full")}
	order := decl(nsModel, "Order", 20, marked("Total", model.Builtin("float64"), 21))

	got := drv.Candidates([]model.Declaration{p, unmarked, order, typeOnly, p})
	names := make([]string, 0, len(got))
	for _, d := range got {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Order", "Person"}, names)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newDriver(1).Run(ctx, []model.Declaration{person()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestRunEmpty(t *testing.T) {
	res, err := newDriver(0).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Empty(t, res.Diagnostics)
}

func TestRunManyDeclarations(t *testing.T) {
	var decls []model.Declaration
	for i := 0; i < 40; i++ {
		name := "T" + strings.Repeat("x", i)
		decls = append(decls, decl(nsModel, name, i+1, marked("Value", model.Builtin("int"), i+2)))
	}
	res, err := newDriver(3).Run(context.Background(), decls)
	require.NoError(t, err)
	assert.Len(t, res.Models, 40)
	assert.Len(t, res.Artifacts, 80)
}
