// Package tools holds the static catalog of spatial operations: per-tool
// geometry applicability, selection arity, parameter schemas and the formula
// templates that turn geometry references into ST_* expressions.
//
// The catalog is a pure templating layer. It performs no escaping of
// interpolated parameter values; callers forwarding untrusted text into a
// formula are responsible for validating it first. Execution of the produced
// expressions is an external concern.
package tools

import (
	"fmt"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

type Category string

const (
	CategoryMeasurement    Category = "measurement"
	CategoryTransformation Category = "transformation"
	CategoryOverlay        Category = "overlay"
	CategorySpatialQuery   Category = "spatial_query"
	CategoryConversion     Category = "conversion"
	CategoryValidation     Category = "validation"
)

type ResultType string

const (
	ResultGeometry  ResultType = "geometry"
	ResultNumeric   ResultType = "numeric"
	ResultText      ResultType = "text"
	ResultBoolean   ResultType = "boolean"
	ResultSelection ResultType = "selection"
)

type ParamType string

const (
	ParamNumber         ParamType = "number"
	ParamChoice         ParamType = "choice"
	ParamGeometryPicker ParamType = "geometry_picker"
)

// Param describes one named tool parameter, in declaration order.
type Param struct {
	Name    string
	Type    ParamType
	Default any
	Min     *float64 // numbers only
	Max     *float64
	Options []string // choices only
}

// Arity constrains how many selected features a tool accepts. When
// MultiSelect is false the tool takes exactly one feature and Min/Max are
// ignored. Min/Max of 0 mean unbounded on that side.
type Arity struct {
	MultiSelect bool
	Min, Max    int
}

// FormulaFunc builds a complete ST_* expression from positional geometry
// references and a parameter map. Implementations must be referentially
// pure and must not mutate their inputs.
type FormulaFunc func(refs []string, p Params) string

// Tool is one static catalog entry. Exactly one of Formula or Predicate is
// set; Predicate marks boolean-valued expressions.
type Tool struct {
	ID       string
	Label    string
	Category Category
	// Kinds restricts applicable geometry kinds; nil means all kinds.
	Kinds     []model.Kind
	Arity     Arity
	Params    []Param
	Result    ResultType
	Formula   FormulaFunc
	Predicate FormulaFunc
}

// Expression invokes whichever of Formula or Predicate is set.
func (t *Tool) Expression(refs []string, p Params) string {
	if t.Predicate != nil {
		return t.Predicate(refs, p)
	}
	return t.Formula(refs, p)
}

// AcceptsKind reports whether the tool applies to the given kind.
func (t *Tool) AcceptsKind(k model.Kind) bool {
	if len(t.Kinds) == 0 {
		return true
	}
	for _, tk := range t.Kinds {
		if tk == k {
			return true
		}
	}
	return false
}

// AcceptsCount reports whether the tool accepts a selection of n features.
func (t *Tool) AcceptsCount(n int) bool {
	if !t.Arity.MultiSelect {
		return n == 1
	}
	if t.Arity.Min > 0 && n < t.Arity.Min {
		return false
	}
	if t.Arity.Max > 0 && n > t.Arity.Max {
		return false
	}
	return true
}

type categoryDef struct {
	Category Category
	Tools    []Tool
}

var toolIndex map[string]*Tool

func init() {
	toolIndex = make(map[string]*Tool)
	for ci := range catalog {
		for ti := range catalog[ci].Tools {
			t := &catalog[ci].Tools[ti]
			t.Category = catalog[ci].Category
			if _, dup := toolIndex[t.ID]; dup {
				panic(fmt.Sprintf("tools: duplicate tool id %q", t.ID))
			}
			if (t.Formula == nil) == (t.Predicate == nil) {
				panic(fmt.Sprintf("tools: tool %q must set exactly one of formula/predicate", t.ID))
			}
			toolIndex[t.ID] = t
		}
	}
}

// Categories lists the catalog categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(catalog))
	for i, c := range catalog {
		out[i] = c.Category
	}
	return out
}

// All flattens the catalog: category declaration order, then tool
// declaration order within each category.
func All() []Tool {
	var out []Tool
	for _, c := range catalog {
		out = append(out, c.Tools...)
	}
	return out
}

// ByID returns the tool with the given id, or nil when absent.
func ByID(id string) *Tool {
	return toolIndex[id]
}

// Available returns the tools applicable to a selection, grouped by
// category. The selection is given as one kind per selected feature, so the
// slice length is the selection count.
//
// Kind compatibility is ANY-overlap: a tool is offered as soon as one
// selected feature matches, and rejecting mismatched individual features is
// the executor's job. Categories with no passing tools are omitted.
func Available(selected []model.Kind) map[Category][]Tool {
	out := map[Category][]Tool{}
	if len(selected) == 0 {
		return out
	}

	distinct := map[model.Kind]struct{}{}
	for _, k := range selected {
		distinct[k] = struct{}{}
	}

	for _, c := range catalog {
		for _, t := range c.Tools {
			if !t.AcceptsCount(len(selected)) {
				continue
			}
			matched := false
			for k := range distinct {
				if t.AcceptsKind(k) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			out[c.Category] = append(out[c.Category], t)
		}
	}
	return out
}
