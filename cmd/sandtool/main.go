package main

import (
	"flag"
	"log"

	"github.com/google/uuid"

	"github.com/eperlab/sandtool/internal/config"
	"github.com/eperlab/sandtool/internal/otoole"
	"github.com/eperlab/sandtool/internal/sand"
	"github.com/eperlab/sandtool/internal/schema"
)

func main() {
	configDir := flag.String("config", ".", "directory holding sandtool.yaml")
	flag.Parse()

	runID := uuid.New()
	log.Printf("[sandtool] run %s starting", runID)

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("[sandtool] invalid configuration: %v", err)
	}

	// clicSAND side: read, prune, derive implicit sets, synthesize YEAR.
	pipeline := sand.NewPipeline(cfg)
	if err := pipeline.Run(); err != nil {
		log.Fatalf("[sandtool] normalization failed: %v", err)
	}
	if err := pipeline.WritePrunedSchema(); err != nil {
		log.Fatalf("[sandtool] could not persist pruned schema: %v", err)
	}

	pruned, err := pipeline.PrunedSchema()
	if err != nil {
		log.Fatalf("[sandtool] %v", err)
	}
	aliases, err := schema.BuildAliases(pruned)
	if err != nil {
		log.Fatalf("[sandtool] alias table is not a bijection: %v", err)
	}
	model, err := pipeline.Model()
	if err != nil {
		log.Fatalf("[sandtool] %v", err)
	}

	// otoole side: fill the template and write it back under short names.
	tpl, err := otoole.ReadTemplate(cfg.TemplatePath, aliases)
	if err != nil {
		log.Fatalf("[sandtool] could not read template: %v", err)
	}
	if err := otoole.Populate(tpl, model); err != nil {
		log.Fatalf("[sandtool] population failed: %v", err)
	}
	if err := otoole.Write(cfg.OutputPath, tpl, aliases); err != nil {
		log.Fatalf("[sandtool] could not write output workbook: %v", err)
	}

	log.Printf("[sandtool] run %s completed: %d sheets written to %s", runID, len(tpl.Order), cfg.OutputPath)
}
