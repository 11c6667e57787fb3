package sand

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/eperlab/sandtool/internal/config"
	"github.com/eperlab/sandtool/internal/schema"
	"github.com/eperlab/sandtool/internal/table"
	"github.com/eperlab/sandtool/internal/workbook"
)

// ErrStageNotRun is returned when a pipeline accessor is queried before the
// stage that populates it has run. Stage ordering is a caller bug, not a
// recoverable condition.
var ErrStageNotRun = errors.New("pipeline stage has not run")

// Pipeline threads the normalization stages over one clicSAND workbook:
// LoadSchema, ReadInput, Normalize. Each stage validates its prerequisites
// explicitly instead of relying on attribute presence.
type Pipeline struct {
	cfg config.Run

	sch    schema.Schema
	model  table.Model
	sets   []string
	params []string

	removed []string
	pruned  schema.Schema
}

// NewPipeline builds a pipeline over the given run configuration.
func NewPipeline(cfg config.Run) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// LoadSchema loads the declarative field catalogue. Missing document is
// fatal; there is no fallback schema.
func (p *Pipeline) LoadSchema() error {
	sch, err := schema.Load(p.cfg.SchemaPath)
	if err != nil {
		return err
	}
	p.sch = sch
	return nil
}

// ReadInput reads the SETS and Parameters sheets from the input workbook and
// builds the raw data model: four explicit sets plus one table per observed
// parameter.
func (p *Pipeline) ReadInput() error {
	if p.sch == nil {
		return fmt.Errorf("%w: LoadSchema before ReadInput", ErrStageNotRun)
	}
	sheets, err := workbook.ReadSheets(p.cfg.InputPath, sheetSets, sheetParameters)
	if err != nil {
		return err
	}
	return p.ReadTables(sheets[sheetSets], sheets[sheetParameters])
}

// ReadTables is ReadInput over pre-read sheet rows.
func (p *Pipeline) ReadTables(setsRows, paramRows [][]string) error {
	if p.sch == nil {
		return fmt.Errorf("%w: LoadSchema before ReadTables", ErrStageNotRun)
	}
	tech, fuel, emission, region, err := ExplicitSets(setsRows)
	if err != nil {
		return err
	}
	tables, params, sets, err := SplitParameters(paramRows)
	if err != nil {
		return err
	}

	model := table.Model{
		tech.Name:     tech,
		fuel.Name:     fuel,
		emission.Name: emission,
		region.Name:   region,
	}
	for name, tbl := range tables {
		model[name] = tbl
	}
	p.model = model
	p.sets = sets
	p.params = params
	log.Printf("[pipeline] read input: %d parameters, set roster %v", len(params), sets)
	return nil
}

// Normalize prunes the schema against the observed rosters, derives the
// implicit sets from the surviving parameter tables, and synthesizes the
// YEAR set from the configured inclusive range. YEAR is never read from a
// sheet.
func (p *Pipeline) Normalize() error {
	if p.model == nil {
		return fmt.Errorf("%w: ReadInput before Normalize", ErrStageNotRun)
	}

	active := append(append([]string(nil), p.sets...), p.params...)
	p.removed = schema.Removable(p.sch, active)
	p.pruned = p.sch.Without(p.removed)

	for name, derived := range DeriveImplicitSets(p.sch, p.model, p.sets, p.removed) {
		p.model[name] = derived
	}

	years := make([]string, 0, p.cfg.ToYear-p.cfg.FromYear+1)
	for y := p.cfg.FromYear; y <= p.cfg.ToYear; y++ {
		years = append(years, strconv.Itoa(y))
	}
	p.model[yearSet] = &table.SetTable{Name: yearSet, DType: "int", Values: years}

	log.Printf("[pipeline] normalized: %d fields pruned, model holds %d entries", len(p.removed), len(p.model))
	return nil
}

// Run executes all stages in order.
func (p *Pipeline) Run() error {
	if err := p.LoadSchema(); err != nil {
		return err
	}
	if err := p.ReadInput(); err != nil {
		return err
	}
	return p.Normalize()
}

// Schema returns the full loaded schema.
func (p *Pipeline) Schema() (schema.Schema, error) {
	if p.sch == nil {
		return nil, fmt.Errorf("%w: LoadSchema", ErrStageNotRun)
	}
	return p.sch, nil
}

// Model returns the normalized data model.
func (p *Pipeline) Model() (table.Model, error) {
	if p.model == nil {
		return nil, fmt.Errorf("%w: ReadInput", ErrStageNotRun)
	}
	return p.model, nil
}

// Rosters returns the observed set and parameter rosters.
func (p *Pipeline) Rosters() (sets, params []string, err error) {
	if p.model == nil {
		return nil, nil, fmt.Errorf("%w: ReadInput", ErrStageNotRun)
	}
	return p.sets, p.params, nil
}

// PrunedSchema returns the schema reduced to the fields the model needs.
func (p *Pipeline) PrunedSchema() (schema.Schema, error) {
	if p.pruned == nil {
		return nil, fmt.Errorf("%w: Normalize", ErrStageNotRun)
	}
	return p.pruned, nil
}

// Removed returns the fields the pruning step dropped.
func (p *Pipeline) Removed() ([]string, error) {
	if p.pruned == nil {
		return nil, fmt.Errorf("%w: Normalize", ErrStageNotRun)
	}
	return p.removed, nil
}

// WritePrunedSchema persists the pruned schema document and removes the
// per-field csv artifacts of every pruned field.
func (p *Pipeline) WritePrunedSchema() error {
	pruned, err := p.PrunedSchema()
	if err != nil {
		return err
	}
	if err := schema.Save(p.cfg.PrunedSchemaPath, pruned); err != nil {
		return err
	}
	PruneArtifacts(p.cfg.DataDir, p.removed)
	return nil
}

// PruneArtifacts deletes the <field>.csv artifact of each removed field.
// Best effort: a missing file is not an error.
func PruneArtifacts(dir string, removed []string) {
	deleted := 0
	for _, name := range removed {
		path := filepath.Join(dir, name+".csv")
		if err := os.Remove(path); err == nil {
			deleted++
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[pipeline] could not remove artifact %s: %v", path, err)
		}
	}
	if deleted > 0 {
		log.Printf("[pipeline] removed %d stale csv artifacts from %s", deleted, dir)
	}
}
