package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/dtogen/pkg/model"
)

func TestDescriptorsAreStable(t *testing.T) {
	codes := make([]string, 0, len(Descriptors))
	for _, d := range Descriptors {
		codes = append(codes, d.Code)
		assert.Equal(t, Category, d.Category, d.Code)
		assert.NotEmpty(t, d.Title, d.Code)
	}
	assert.Equal(t, []string{"AS001", "AS002", "AS003", "AS004", "AS005"}, codes)
}

func TestNew(t *testing.T) {
	loc := model.Location{File: "model/person.go", Line: 7, Column: 2}

	d := New(ReadOnlyProperty, loc, "ID")
	assert.Equal(t, "AS001", d.Code)
	assert.Equal(t, model.SeverityError, d.Severity)
	assert.Equal(t, "The property 'ID' is readonly and cannot be used in the DTO class.", d.Message)
	assert.Equal(t, loc, d.Location)

	d = New(UnsupportedExtensionsClassGenerationWithChildProperty, loc, "dtogen:conversion", "Order")
	assert.Contains(t, d.Message, "Set the dtogen:conversion marker with GenerationBehavior to NoGeneration.")
	assert.Contains(t, d.Message, "in the class 'Order'")

	d = New(AbstractClass, loc)
	assert.Contains(t, d.Message, "%!s(MISSING)")
}

func TestBagSorted(t *testing.T) {
	var b Bag
	b.Report(New(AbstractClass, model.Location{File: "b.go", Line: 1}, "B"))
	b.Report(New(ReadOnlyProperty, model.Location{File: "a.go", Line: 9}, "Z"))
	b.Report(New(ReadOnlyProperty, model.Location{File: "a.go", Line: 9}, "A"))
	b.Report(New(AbstractClass, model.Location{File: "a.go", Line: 2}, "C"))

	got := b.Sorted()
	require.Len(t, got, 4)
	assert.Equal(t, "a.go:2", got[0].Location.String())
	assert.Contains(t, got[1].Message, "'A'")
	assert.Contains(t, got[2].Message, "'Z'")
	assert.Equal(t, "b.go", got[3].Location.File)

	got[0].Code = "mutated"
	assert.NotEqual(t, "mutated", b.Sorted()[0].Code)
}

func TestBagConcurrentReport(t *testing.T) {
	var (
		b  Bag
		wg sync.WaitGroup
	)
	r := Reporter(&b)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(line int) {
			defer wg.Done()
			r.Report(New(ReadOnlyProperty, model.Location{File: "x.go", Line: line}, "P"))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, b.Len())
	got := b.Sorted()
	for i := range got {
		assert.Equal(t, i, got[i].Location.Line)
	}
}

func TestReporterFunc(t *testing.T) {
	var seen []string
	r := ReporterFunc(func(d model.Diagnostic) { seen = append(seen, d.Code) })
	r.Report(New(DuplicateGenerationTarget, model.Location{}, "A", "B", "C"))
	assert.Equal(t, []string{"AS004"}, seen)
}
