// Package config holds export configuration and the paginated-layout
// presets. Built-in presets are always available; a YAML file may add or
// override presets for deployments that need different handout grids.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the CLI and the facade.
const (
	BackendDeck    = "pptx"
	BackendPages   = "pdf"
	BackendOutline = "outline"
)

// Orientation of a physical page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// PagePreset is a named slides-per-page configuration for the paginated
// document backend.
type PagePreset struct {
	ID          string      `json:"id" yaml:"id"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
	Columns     int         `json:"columns" yaml:"columns"`
	Rows        int         `json:"rows" yaml:"rows"`
}

// SlidesPerPage returns the preset's slot capacity.
func (p PagePreset) SlidesPerPage() int {
	return p.Columns * p.Rows
}

// DefaultPresetID is used when a requested preset is unknown.
const DefaultPresetID = "1up"

// builtinPresets are always registered.
func builtinPresets() map[string]PagePreset {
	return map[string]PagePreset{
		"1up": {ID: "1up", Orientation: Landscape, Columns: 1, Rows: 1},
		"2up": {ID: "2up", Orientation: Portrait, Columns: 1, Rows: 2},
		"3up": {ID: "3up", Orientation: Portrait, Columns: 1, Rows: 3},
		"4up": {ID: "4up", Orientation: Landscape, Columns: 2, Rows: 2},
	}
}

// Presets is a named preset registry.
type Presets struct {
	byID map[string]PagePreset
}

// NewPresets returns a registry holding only the built-in presets.
func NewPresets() *Presets {
	return &Presets{byID: builtinPresets()}
}

// LoadPresets reads extra presets from a YAML file and merges them over the
// built-ins. A missing path returns the built-ins unchanged.
func LoadPresets(path string) (*Presets, error) {
	p := NewPresets()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("config: read presets: %w", err)
	}
	var doc struct {
		Presets []PagePreset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse presets: %w", err)
	}
	for _, pp := range doc.Presets {
		if pp.ID == "" || pp.Columns < 1 || pp.Rows < 1 {
			return nil, fmt.Errorf("config: preset %q has invalid grid %dx%d", pp.ID, pp.Columns, pp.Rows)
		}
		if pp.Orientation != Portrait && pp.Orientation != Landscape {
			pp.Orientation = Landscape
		}
		p.byID[pp.ID] = pp
	}
	return p, nil
}

// Get resolves a preset by id, falling back to the default preset for
// unknown ids. The second return reports whether the id was known.
func (p *Presets) Get(id string) (PagePreset, bool) {
	if pp, ok := p.byID[id]; ok {
		return pp, true
	}
	return p.byID[DefaultPresetID], false
}

// ExportConfig carries the caller-facing knobs of one export run.
type ExportConfig struct {
	Backend      string `json:"backend"`
	Preset       string `json:"preset,omitempty"`
	IncludeNotes bool   `json:"includeNotes,omitempty"`
	// Quality is the JPEG quality (1-100) used when compositing rasterized
	// slides into the paginated document. 0 selects lossless PNG.
	Quality  int    `json:"quality,omitempty"`
	Filename string `json:"filename,omitempty"`
	// FontPath/FontName embed a TTF for paginated text (labels, notes).
	// Without a font, text stamping is skipped silently.
	FontPath string `json:"fontPath,omitempty"`
	FontName string `json:"fontName,omitempty"`
	// Workers bounds concurrent slide rasterization. Values <= 1 keep the
	// strictly sequential baseline pipeline.
	Workers int `json:"workers,omitempty"`
}

// Normalize clamps out-of-range values and fills defaults.
func (c ExportConfig) Normalize() ExportConfig {
	if c.Quality < 0 {
		c.Quality = 0
	}
	if c.Quality > 100 {
		c.Quality = 100
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Preset == "" {
		c.Preset = DefaultPresetID
	}
	if c.FontName == "" && c.FontPath != "" {
		c.FontName = "embedded"
	}
	return c
}
