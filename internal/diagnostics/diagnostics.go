// Package diagnostics builds stable-coded configuration diagnostics and collects
// them from concurrent workers.
package diagnostics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cmmoran/dtogen/pkg/model"
)

// Category shared by every DTO generator diagnostic.
const Category = "DTO generator"

// Descriptor is the stable definition of one diagnostic. Codes are part of the
// external contract and are never renumbered.
type Descriptor struct {
	Code     string
	Title    string
	Message  string // fmt template
	Category string
}

var (
	ReadOnlyProperty = Descriptor{
		Code:     "AS001",
		Title:    "Read only property",
		Message:  "The property '%s' is readonly and cannot be used in the DTO class.",
		Category: Category,
	}
	AbstractClass = Descriptor{
		Code:     "AS002",
		Title:    "Abstract class",
		Message:  "The class '%s' is an abstract class and cannot be used in the DTO Generation.",
		Category: Category,
	}
	UnsupportedExtensionsClassGenerationWithChildProperty = Descriptor{
		Code:  "AS003",
		Title: "Unsupported feature",
		Message: "Extensions class generation does not support child properties. " +
			"Set the %s marker with GenerationBehavior to NoGeneration. " +
			"You still can use the DtoGenerator in the class '%s', but the mapping should be managed " +
			"in a different way, or using an existing mapper tool.",
		Category: Category,
	}
	DuplicateGenerationTarget = Descriptor{
		Code:     "AS004",
		Title:    "Duplicate generation target",
		Message:  "The class '%s' would generate '%s', which is already generated for '%s'.",
		Category: Category,
	}
	CyclicNamespaceConfiguration = Descriptor{
		Code:  "AS005",
		Title: "Cyclic namespace configuration",
		Message: "The class '%s' would generate code with the import cycle %s. " +
			"Move the transfer type or the conversion holder to another namespace.",
		Category: Category,
	}
)

// Descriptors lists every known descriptor in code order.
var Descriptors = []Descriptor{
	ReadOnlyProperty,
	AbstractClass,
	UnsupportedExtensionsClassGenerationWithChildProperty,
	DuplicateGenerationTarget,
	CyclicNamespaceConfiguration,
}

// New creates a diagnostic from d. It never fails; a template/argument mismatch
// shows up in the message text.
func New(d Descriptor, loc model.Location, args ...any) model.Diagnostic {
	return model.Diagnostic{
		Code:     d.Code,
		Title:    d.Title,
		Category: d.Category,
		Severity: model.SeverityError,
		Message:  fmt.Sprintf(d.Message, args...),
		Location: loc,
	}
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(model.Diagnostic)
}

// Bag is an append-only, concurrency-safe diagnostic collector.
type Bag struct {
	mu    sync.Mutex
	items []model.Diagnostic
}

// Report appends d.
func (b *Bag) Report(d model.Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, d)
	b.mu.Unlock()
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Sorted returns a copy ordered by location, then code, then message.
func (b *Bag) Sorted() []model.Diagnostic {
	b.mu.Lock()
	out := append([]model.Diagnostic(nil), b.items...)
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.Location != c.Location {
			return a.Location.Less(c.Location)
		}
		if a.Code != c.Code {
			return a.Code < c.Code
		}
		return a.Message < c.Message
	})
	return out
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(model.Diagnostic)

func (f ReporterFunc) Report(d model.Diagnostic) { f(d) }
