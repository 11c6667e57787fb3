package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/viper"
)

// Run holds everything one migration run needs: the modelled year range and
// the file locations on both sides of the transform.
type Run struct {
	FromYear int
	ToYear   int

	SchemaPath       string // otoole config.yaml
	InputPath        string // clicSAND workbook
	TemplatePath     string // empty otoole template workbook
	OutputPath       string // populated workbook (defaults to TemplatePath)
	PrunedSchemaPath string // written pruned schema document
	DataDir          string // per-field csv artifacts pruned alongside
}

// Default mirrors the conventional clicSAND hands-on layout.
func Default() Run {
	return Run{
		FromYear:         2015,
		ToYear:           2070,
		SchemaPath:       "./config.yaml",
		InputPath:        "./InputSand.xlsm",
		TemplatePath:     "./sandtool.xlsx",
		PrunedSchemaPath: "./sand_config.yaml",
		DataDir:          "./data_csv",
	}
}

// Load reads sandtool.yaml from the given directory, overridable through
// SANDTOOL_-prefixed environment variables. Absent file means defaults.
func Load(configPath string) (Run, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("sandtool")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SANDTOOL")

	v.BindEnv("years.from")
	v.BindEnv("years.to")
	v.BindEnv("paths.schema")
	v.BindEnv("paths.input")
	v.BindEnv("paths.template")
	v.BindEnv("paths.output")
	v.BindEnv("paths.pruned_schema")
	v.BindEnv("paths.data_dir")

	if err := v.ReadInConfig(); err != nil {
		log.Println("[config] no sandtool.yaml found, using defaults and env vars")
	} else {
		log.Println("[config] loaded sandtool.yaml")
	}

	if v.IsSet("years.from") {
		cfg.FromYear = v.GetInt("years.from")
	}
	if v.IsSet("years.to") {
		cfg.ToYear = v.GetInt("years.to")
	}
	if v.IsSet("paths.schema") {
		cfg.SchemaPath = v.GetString("paths.schema")
	}
	if v.IsSet("paths.input") {
		cfg.InputPath = v.GetString("paths.input")
	}
	if v.IsSet("paths.template") {
		cfg.TemplatePath = v.GetString("paths.template")
	}
	if v.IsSet("paths.output") {
		cfg.OutputPath = v.GetString("paths.output")
	}
	if v.IsSet("paths.pruned_schema") {
		cfg.PrunedSchemaPath = v.GetString("paths.pruned_schema")
	}
	if v.IsSet("paths.data_dir") {
		cfg.DataDir = v.GetString("paths.data_dir")
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.TemplatePath
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(cfg.SchemaPath), "data_csv")
	}
	if cfg.FromYear > cfg.ToYear {
		return Run{}, fmt.Errorf("years.from %d is after years.to %d", cfg.FromYear, cfg.ToYear)
	}
	return cfg, nil
}
