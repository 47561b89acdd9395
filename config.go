package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jalad-shrimali/contact-gen/sink"
	"github.com/jalad-shrimali/contact-gen/synth"
)

/* ──────────── run configuration ──────────── */

type Config struct {
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Target        int    `yaml:"target"`
	Format        string `yaml:"format"`
	CRLF          bool   `yaml:"crlf"`
	ProgressEvery int    `yaml:"progress_every"`

	// service mode
	Listen    string `yaml:"listen"`
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
	MaxTarget int    `yaml:"max_target"`
}

func defaultConfig() Config {
	return Config{
		Input:         "contacts.csv",
		Output:        "contacts_1M.csv",
		Target:        synth.DefaultTarget,
		CRLF:          false,
		ProgressEvery: 100_000,
		UploadDir:     "uploads",
		OutputDir:     "generated",
		MaxTarget:     synth.DefaultTarget,
	}
}

// loadConfig overlays the YAML file at path on the defaults. Unknown keys
// are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// format resolves the output format, falling back to the output extension.
func (c Config) format() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	return sink.FormatFor(c.Output)
}

func (c Config) validate() error {
	if c.Target < 1 {
		return fmt.Errorf("target must be at least 1, got %d", c.Target)
	}
	if !slices.Contains(sink.Formats, c.format()) {
		return fmt.Errorf("unsupported format %q (want one of %s)", c.Format, strings.Join(sink.Formats, ", "))
	}
	if c.format() == sink.FormatXLSX && c.Target > sink.MaxXLSXRows {
		return fmt.Errorf("xlsx holds at most %d rows, target is %d", sink.MaxXLSXRows, c.Target)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must not be negative")
	}
	if c.Listen != "" && c.MaxTarget < 1 {
		return fmt.Errorf("max_target must be at least 1")
	}
	return nil
}

/* ──────────── command line ──────────── */

// parseArgs reads -config first, then lets explicitly set flags win.
func parseArgs(args []string) (Config, error) {
	def := defaultConfig()
	fs := flag.NewFlagSet("contact-gen", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	in := fs.String("in", def.Input, "template CSV or XLSX file")
	out := fs.String("out", def.Output, "output file")
	n := fs.Int("n", def.Target, "number of contacts to generate")
	format := fs.String("format", "", "output format: csv, xlsx or sqlite (default: from -out extension)")
	crlf := fs.Bool("crlf", def.CRLF, "terminate CSV records with \\r\\n (rewrites line breaks inside fields)")
	progress := fs.Int("progress", def.ProgressEvery, "log progress every N rows (0 disables)")
	listen := fs.String("serve", "", "serve the upload API on this address instead of a one-shot run")
	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg := def
	if *cfgPath != "" {
		var err error
		if cfg, err = loadConfig(*cfgPath); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input = *in
		case "out":
			cfg.Output = *out
		case "n":
			cfg.Target = *n
		case "format":
			cfg.Format = *format
		case "crlf":
			cfg.CRLF = *crlf
		case "progress":
			cfg.ProgressEvery = *progress
		case "serve":
			cfg.Listen = *listen
		}
	})
	return cfg, cfg.validate()
}
