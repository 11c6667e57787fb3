package schema

import (
	"errors"
	"fmt"
)

// ErrAliasCollision is returned when two fields share a short name; the alias
// table must be a bijection over the active schema.
var ErrAliasCollision = errors.New("short name collision")

// Aliases is the bidirectional short-name/full-name mapping. Fields without a
// declared short name alias to themselves.
type Aliases struct {
	fullByShort map[string]string
	shortByFull map[string]string
}

// BuildAliases derives the alias table from the schema's short_name
// declarations.
func BuildAliases(sch Schema) (Aliases, error) {
	a := Aliases{
		fullByShort: make(map[string]string, len(sch)),
		shortByFull: make(map[string]string, len(sch)),
	}
	for name, spec := range sch {
		short := spec.ShortName
		if short == "" {
			short = name
		}
		if prior, ok := a.fullByShort[short]; ok {
			return Aliases{}, fmt.Errorf("%w: %q maps to both %s and %s", ErrAliasCollision, short, prior, name)
		}
		a.fullByShort[short] = name
		a.shortByFull[name] = short
	}
	return a, nil
}

// Full resolves a (possibly short) sheet name to the full field name.
func (a Aliases) Full(short string) (string, bool) {
	full, ok := a.fullByShort[short]
	return full, ok
}

// Short resolves a full field name to its sheet name.
func (a Aliases) Short(full string) (string, bool) {
	short, ok := a.shortByFull[full]
	return short, ok
}

// Len reports the number of mapped fields.
func (a Aliases) Len() int {
	return len(a.shortByFull)
}
