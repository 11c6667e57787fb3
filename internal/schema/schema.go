// Package schema loads and queries the declarative field catalogue (the
// otoole config.yaml grammar): every set, parameter, and result the model may
// carry, its indices, scalar dtype, and optional short-name alias.
package schema

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the schema document does not exist.
// There is no synthesized default schema; callers must halt.
var ErrConfigNotFound = errors.New("schema document not found")

// Kind classifies a field.
type Kind string

const (
	KindSet    Kind = "set"
	KindParam  Kind = "param"
	KindResult Kind = "result"
)

// FieldSpec describes one declared field. Immutable once loaded.
type FieldSpec struct {
	Name      string
	Kind      Kind
	Indices   []string
	DType     string
	ShortName string
}

// DependsOn reports whether the field indexes by the given set.
func (f FieldSpec) DependsOn(set string) bool {
	for _, idx := range f.Indices {
		if idx == set {
			return true
		}
	}
	return false
}

// Schema maps field name to its spec.
type Schema map[string]FieldSpec

type fieldDoc struct {
	Type      string   `yaml:"type"`
	Indices   []string `yaml:"indices,omitempty,flow"`
	DType     string   `yaml:"dtype"`
	ShortName string   `yaml:"short_name,omitempty"`
}

// Load reads a schema document. A missing file surfaces ErrConfigNotFound.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read schema document: %w", err)
	}
	docs := map[string]fieldDoc{}
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	sch := make(Schema, len(docs))
	for name, doc := range docs {
		sch[name] = FieldSpec{
			Name:      name,
			Kind:      Kind(doc.Type),
			Indices:   append([]string(nil), doc.Indices...),
			DType:     doc.DType,
			ShortName: doc.ShortName,
		}
	}
	return sch, nil
}

// Save writes the schema back out in the same document grammar.
func Save(path string, sch Schema) error {
	docs := make(map[string]fieldDoc, len(sch))
	for name, spec := range sch {
		docs[name] = fieldDoc{
			Type:      string(spec.Kind),
			Indices:   spec.Indices,
			DType:     spec.DType,
			ShortName: spec.ShortName,
		}
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode schema document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema document: %w", err)
	}
	return nil
}

// OfKind returns a filtered copy holding only fields of the given kinds.
func (s Schema) OfKind(kinds ...Kind) Schema {
	want := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		want[k] = struct{}{}
	}
	out := Schema{}
	for name, spec := range s {
		if _, ok := want[spec.Kind]; ok {
			out[name] = spec
		}
	}
	return out
}

// DependingOn returns every field of the requested kinds whose indices
// contain the given set, sorted by name for deterministic output. This is
// the single "who depends on X" query used throughout.
func (s Schema) DependingOn(set string, kinds ...Kind) []string {
	want := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		want[k] = struct{}{}
	}
	var names []string
	for name, spec := range s {
		if _, ok := want[spec.Kind]; !ok {
			continue
		}
		if spec.DependsOn(set) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Without returns a pruned copy with the named fields removed. The receiver
// is not modified.
func (s Schema) Without(names []string) Schema {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := make(Schema, len(s))
	for name, spec := range s {
		if _, ok := drop[name]; ok {
			continue
		}
		out[name] = spec
	}
	return out
}

// Names returns the sorted field names.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Removable computes the fields the given source data does not need: any
// declared set or param absent from the active roster, plus every param or
// result that indexes by one of the removed sets (its index domain no longer
// exists). The dependency graph is one level deep, so a single pass closes
// it.
func Removable(s Schema, active []string) []string {
	present := make(map[string]struct{}, len(active))
	for _, f := range active {
		present[f] = struct{}{}
	}

	removable := map[string]struct{}{}
	var removedSets []string
	for name, spec := range s {
		if spec.Kind != KindSet && spec.Kind != KindParam {
			continue
		}
		if _, ok := present[name]; ok {
			continue
		}
		removable[name] = struct{}{}
		if spec.Kind == KindSet {
			removedSets = append(removedSets, name)
		}
	}

	for _, set := range removedSets {
		for _, dep := range s.DependingOn(set, KindParam, KindResult) {
			removable[dep] = struct{}{}
		}
	}

	out := make([]string, 0, len(removable))
	for name := range removable {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
