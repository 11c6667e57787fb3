package sand

import (
	"github.com/eperlab/sandtool/internal/schema"
	"github.com/eperlab/sandtool/internal/table"
)

// Columns that appear in the set roster but never name a derivable set.
var ignoredRosterColumns = map[string]struct{}{
	valueColumn:   {},
	yearSet:       {},
	regionRColumn: {},
}

// Dependencies maps each parameter to the candidate sets it indexes by,
// according to the schema's declarations. Parameters depending on none of
// the candidates are absent from the result.
func Dependencies(sch schema.Schema, params, sets []string) map[string][]string {
	deps := map[string][]string{}
	for _, p := range params {
		spec, ok := sch[p]
		if !ok {
			continue
		}
		for _, s := range sets {
			if spec.DependsOn(s) {
				deps[p] = append(deps[p], s)
			}
		}
	}
	return deps
}

// ImplicitSetNames lists the roster entries that are declared as sets in the
// schema but were not enumerated on the SETS sheet: not an explicit model
// entry, not VALUE/YEAR/REGIONR.
func ImplicitSetNames(sch schema.Schema, model table.Model, roster []string) []string {
	var implicit []string
	for _, s := range roster {
		if _, ok := ignoredRosterColumns[s]; ok {
			continue
		}
		if _, ok := model[s]; ok {
			continue
		}
		if spec, ok := sch[s]; !ok || spec.Kind != schema.KindSet {
			continue
		}
		implicit = append(implicit, s)
	}
	return implicit
}

// DeriveImplicitSets resolves each implicit set's membership by unioning its
// column across every surviving parameter table that depends on it, with the
// dependency relation supplied by Dependencies. Only observed input
// parameters seed membership, never results; parameters named in removed are
// excluded. When parameters disagree the union wins. The result is
// deduplicated and sorted ascending under the set's declared dtype.
func DeriveImplicitSets(sch schema.Schema, model table.Model, roster []string, removed []string) map[string]*table.SetTable {
	dropped := make(map[string]struct{}, len(removed))
	for _, r := range removed {
		dropped[r] = struct{}{}
	}

	implicit := ImplicitSetNames(sch, model, roster)

	// Candidate parameters: of kind param, observed in the model, not
	// pruned, and dependent on at least one implicit set.
	var candidates []string
	seen := map[string]struct{}{}
	for _, name := range implicit {
		for _, param := range sch.DependingOn(name, schema.KindParam) {
			if _, ok := dropped[param]; ok {
				continue
			}
			if _, ok := model.Param(param); !ok {
				continue
			}
			if _, ok := seen[param]; ok {
				continue
			}
			seen[param] = struct{}{}
			candidates = append(candidates, param)
		}
	}
	deps := Dependencies(sch, candidates, implicit)

	derived := make(map[string]*table.SetTable, len(implicit))
	for _, name := range implicit {
		var values []string
		for _, param := range candidates {
			if !containsSet(deps[param], name) {
				continue
			}
			tbl, _ := model.Param(param)
			values = append(values, tbl.Column(name)...)
		}
		raw := &table.SetTable{Name: name, DType: sch[name].DType, Values: values}
		derived[name] = raw.Sorted()
	}
	return derived
}

func containsSet(sets []string, name string) bool {
	for _, s := range sets {
		if s == name {
			return true
		}
	}
	return false
}
