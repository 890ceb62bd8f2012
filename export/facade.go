package export

import (
	"context"
	"fmt"
	"strings"

	"slideforge/canvas"
	"slideforge/config"
)

// RenderFactory builds a slide renderer bound to a deck's template. The
// paginated backend needs one; the others do not.
type RenderFactory func(tpl *canvas.Template) RenderSlideFunc

// Facade is the single entry point over the three export backends, keyed by
// config.Backend.
type Facade struct {
	loader    AssetLoader
	newRender RenderFactory
	presets   *config.Presets
	logger    func(string)
}

// NewFacade wires the facade. loader and presets may be nil; newRender may
// be nil if the paginated backend is never requested.
func NewFacade(loader AssetLoader, newRender RenderFactory, presets *config.Presets, logger func(string)) *Facade {
	if loader == nil {
		loader = &ChainLoader{}
	}
	if presets == nil {
		presets = config.NewPresets()
	}
	return &Facade{loader: loader, newRender: newRender, presets: presets, logger: logger}
}

// Export runs the backend selected by cfg.Backend over the deck. An empty
// backend selects the slide deck.
func (f *Facade) Export(ctx context.Context, deck *canvas.Deck, cfg config.ExportConfig, onProgress ProgressFunc) (*Result, error) {
	if deck == nil {
		return nil, fmt.Errorf("export: nil deck")
	}
	cfg = cfg.Normalize()

	switch cfg.Backend {
	case config.BackendDeck, "":
		svc := NewDeckService(f.loader, f.logger)
		svc.Title = deck.Title
		return svc.Export(ctx, deck.Slides, deck.Template, onProgress)
	case config.BackendPages:
		if f.newRender == nil {
			return nil, fmt.Errorf("export: paginated backend requires a renderer")
		}
		svc := NewPageService(f.newRender(deck.Template), f.presets, f.logger)
		return svc.Export(ctx, deck.Slides, cfg, onProgress)
	case config.BackendOutline:
		svc := NewOutlineService(f.logger)
		svc.Title = deck.Title
		return svc.Export(ctx, deck.Slides, onProgress)
	default:
		return nil, fmt.Errorf("export: unknown backend %q", cfg.Backend)
	}
}

// SuggestFilename derives an output filename from the config or the deck
// title, with the backend's extension.
func SuggestFilename(cfg config.ExportConfig, title string) string {
	ext := ".pptx"
	switch cfg.Backend {
	case config.BackendPages, config.BackendOutline:
		ext = ".pdf"
	}
	if cfg.Filename != "" {
		name := cfg.Filename
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			name += ext
		}
		return name
	}
	slug := slugify(title)
	if slug == "" {
		slug = "presentation"
	}
	return slug + ext
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
