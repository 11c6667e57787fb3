package sand

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eperlab/sandtool/internal/config"
)

const pipelineSchemaDoc = `
REGION:
  dtype: str
  type: set
TECHNOLOGY:
  dtype: str
  type: set
FUEL:
  dtype: str
  type: set
EMISSION:
  dtype: str
  type: set
YEAR:
  dtype: int
  type: set
MODE_OF_OPERATION:
  dtype: int
  type: set
STORAGE:
  dtype: str
  type: set
VariableCost:
  indices: [REGION, TECHNOLOGY, MODE_OF_OPERATION, YEAR]
  dtype: float
  type: param
EmissionActivityRatio:
  indices: [REGION, TECHNOLOGY, EMISSION, MODE_OF_OPERATION, YEAR]
  dtype: float
  type: param
CapacityToActivityUnit:
  indices: [REGION, TECHNOLOGY]
  dtype: float
  type: param
TechnologyToStorage:
  indices: [REGION, TECHNOLOGY, STORAGE, MODE_OF_OPERATION]
  dtype: float
  type: param
StorageLevelStart:
  indices: [REGION, STORAGE]
  dtype: float
  type: result
AnnualEmissions:
  indices: [REGION, EMISSION, YEAR]
  dtype: float
  type: result
`

func pipelineSetsRows() [][]string {
	return [][]string{
		{"Technologies", "Commodities", "Emissions"},
		{"Code", "Code", "Code"},
		{"T1", "F1", "CO2"},
		{"T2", "F2", "Region"},
		{"", "", "RE1"},
		{"", "", "ResultsPath/model"},
	}
}

func pipelineParamRows() [][]string {
	return [][]string{
		{"Parameter", "REGION", "TECHNOLOGY", "FUEL", "EMISSION", "MODE_OF_OPERATION", "REGION2", "Time indipendent variables", "2015", "2016", "2017"},
		{"VariableCost", "RE1", "T1", "", "", "1", "", "", "4.1", "4.2", "4.3"},
		{"VariableCost", "RE1", "T2", "", "", "3", "", "", "5.1", "5.2", "5.3"},
		{"EmissionActivityRatio", "RE1", "T1", "", "CO2", "2", "", "", "1.0", "1.0", "1.0"},
		{"CapacityToActivityUnit", "RE1", "T1", "", "", "", "", "31.536", "", "", ""},
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(schemaPath, []byte(pipelineSchemaDoc), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	cfg := config.Run{
		FromYear:         2015,
		ToYear:           2017,
		SchemaPath:       schemaPath,
		PrunedSchemaPath: filepath.Join(dir, "sand_config.yaml"),
		DataDir:          filepath.Join(dir, "data_csv"),
	}
	p := NewPipeline(cfg)
	if err := p.LoadSchema(); err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if err := p.ReadTables(pipelineSetsRows(), pipelineParamRows()); err != nil {
		t.Fatalf("read tables: %v", err)
	}
	if err := p.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return p
}

func TestPipelineDerivesImplicitSetsAsSortedUnion(t *testing.T) {
	p := newTestPipeline(t)
	model, err := p.Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}

	// MODE_OF_OPERATION is never enumerated on the SETS sheet; its membership
	// is the union of the surviving parameter columns: VariableCost {1,3} and
	// EmissionActivityRatio {2}. TechnologyToStorage also indexes by it but
	// was pruned, so it must not contribute.
	mode, ok := model.Set("MODE_OF_OPERATION")
	if !ok {
		t.Fatalf("MODE_OF_OPERATION not derived")
	}
	if !reflect.DeepEqual(mode.Values, []string{"1", "2", "3"}) {
		t.Fatalf("expected union {1,2,3}, got %v", mode.Values)
	}
	if mode.DType != "int" {
		t.Fatalf("derived set should carry the schema dtype, got %s", mode.DType)
	}
}

func TestPipelineSynthesizesYearRange(t *testing.T) {
	p := newTestPipeline(t)
	model, _ := p.Model()
	year, ok := model.Set("YEAR")
	if !ok {
		t.Fatalf("YEAR not synthesized")
	}
	if !reflect.DeepEqual(year.Values, []string{"2015", "2016", "2017"}) {
		t.Fatalf("expected inclusive range 2015..2017, got %v", year.Values)
	}
}

func TestPipelinePrunesUnusedFields(t *testing.T) {
	p := newTestPipeline(t)
	removed, err := p.Removed()
	if err != nil {
		t.Fatalf("removed: %v", err)
	}
	want := []string{"STORAGE", "StorageLevelStart", "TechnologyToStorage"}
	if !reflect.DeepEqual(removed, want) {
		t.Fatalf("expected %v removed, got %v", want, removed)
	}
	pruned, err := p.PrunedSchema()
	if err != nil {
		t.Fatalf("pruned schema: %v", err)
	}
	for _, name := range want {
		if _, ok := pruned[name]; ok {
			t.Fatalf("%s still present after pruning", name)
		}
	}
	if _, ok := pruned["AnnualEmissions"]; !ok {
		t.Fatalf("result over surviving sets must be kept")
	}
}

func TestPipelineWritePrunedSchemaRemovesArtifacts(t *testing.T) {
	p := newTestPipeline(t)
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(p.cfg.DataDir, "TechnologyToStorage.csv")
	kept := filepath.Join(p.cfg.DataDir, "CapacityToActivityUnit.csv")
	for _, f := range []string{stale, kept} {
		if err := os.WriteFile(f, []byte("REGION\n"), 0o644); err != nil {
			t.Fatalf("seed artifact: %v", err)
		}
	}

	if err := p.WritePrunedSchema(); err != nil {
		t.Fatalf("write pruned schema: %v", err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale artifact should be deleted")
	}
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("surviving artifact should remain: %v", err)
	}
	if _, err := os.Stat(p.cfg.PrunedSchemaPath); err != nil {
		t.Fatalf("pruned schema document not written: %v", err)
	}
}

func TestPipelineStageOrderingIsEnforced(t *testing.T) {
	p := NewPipeline(config.Run{FromYear: 2015, ToYear: 2016})

	if err := p.ReadTables(pipelineSetsRows(), pipelineParamRows()); !errors.Is(err, ErrStageNotRun) {
		t.Fatalf("expected ErrStageNotRun before LoadSchema, got %v", err)
	}
	if err := p.Normalize(); !errors.Is(err, ErrStageNotRun) {
		t.Fatalf("expected ErrStageNotRun before ReadInput, got %v", err)
	}
	if _, err := p.Model(); !errors.Is(err, ErrStageNotRun) {
		t.Fatalf("expected ErrStageNotRun from Model, got %v", err)
	}
	if _, err := p.PrunedSchema(); !errors.Is(err, ErrStageNotRun) {
		t.Fatalf("expected ErrStageNotRun from PrunedSchema, got %v", err)
	}
}

func TestDependencies(t *testing.T) {
	p := newTestPipeline(t)
	sch, _ := p.Schema()
	deps := Dependencies(sch, []string{"VariableCost", "CapacityToActivityUnit"}, []string{"MODE_OF_OPERATION", "STORAGE"})
	want := map[string][]string{"VariableCost": {"MODE_OF_OPERATION"}}
	if !reflect.DeepEqual(deps, want) {
		t.Fatalf("expected %v, got %v", want, deps)
	}
}
