// Command slideforge exports a canvas deck document to a slide deck (PPTX),
// a paginated handout (PDF) or a text outline (PDF).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slideforge/canvas"
	"slideforge/config"
	"slideforge/export"
	"slideforge/logger"
	"slideforge/render"
)

func main() {
	var (
		deckPath    = flag.String("deck", "", "path to the deck JSON document (required)")
		format      = flag.String("format", config.BackendDeck, "output backend: pptx, pdf or outline")
		preset      = flag.String("preset", config.DefaultPresetID, "paginated layout preset (1up, 2up, 3up, 4up or custom)")
		presetsPath = flag.String("presets", "", "optional YAML file with extra layout presets")
		notes       = flag.Bool("notes", false, "include speaker notes in the paginated document")
		quality     = flag.Int("quality", 0, "JPEG quality 1-100 for rasterized slides; 0 keeps lossless PNG")
		workers     = flag.Int("workers", 0, "concurrent slide rasterizers; <=1 renders sequentially")
		width       = flag.Int("width", render.DefaultWidth, "raster width in pixels for the paginated document")
		fontPath    = flag.String("font", "", "TTF font for paginated labels and notes")
		fontName    = flag.String("font-name", "", "font name registered for -font")
		out         = flag.String("out", "", "output file; defaults to a name derived from the deck title")
		logDir      = flag.String("log-dir", "", "directory for run logs; empty disables file logging")
		quiet       = flag.Bool("quiet", false, "suppress progress output")
	)
	flag.Parse()

	if *deckPath == "" {
		fmt.Fprintln(os.Stderr, "slideforge: -deck is required")
		flag.Usage()
		os.Exit(2)
	}

	log := logger.NewLogger()
	if *logDir != "" {
		if err := log.Init(*logDir); err != nil {
			fmt.Fprintf(os.Stderr, "slideforge: %v\n", err)
			os.Exit(1)
		}
		defer log.Close()
	}

	if err := run(*deckPath, config.ExportConfig{
		Backend:      *format,
		Preset:       *preset,
		IncludeNotes: *notes,
		Quality:      *quality,
		Workers:      *workers,
		FontPath:     *fontPath,
		FontName:     *fontName,
		Filename:     *out,
	}, *presetsPath, *width, *quiet, log); err != nil {
		log.Logf("export failed: %v", err)
		fmt.Fprintf(os.Stderr, "slideforge: %v\n", err)
		os.Exit(1)
	}
}

func run(deckPath string, cfg config.ExportConfig, presetsPath string, width int, quiet bool, log *logger.Logger) error {
	data, err := os.ReadFile(deckPath)
	if err != nil {
		return fmt.Errorf("read deck: %w", err)
	}
	deck, err := canvas.ParseDeck(data)
	if err != nil {
		return err
	}
	if deck.Template != nil {
		if verr := deck.Template.Validate(); verr != nil {
			log.Logf("template validation: %v", verr)
			fmt.Fprintf(os.Stderr, "warning: %v\n", verr)
		}
	}

	presets, err := config.LoadPresets(presetsPath)
	if err != nil {
		return err
	}

	loader := &export.ChainLoader{}
	newRender := func(tpl *canvas.Template) export.RenderSlideFunc {
		r := render.NewRasterizer(tpl, loader)
		if width > 0 {
			r.Width = width
		}
		return r.RenderSlide
	}
	facade := export.NewFacade(loader, newRender, presets, log.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var onProgress export.ProgressFunc
	if !quiet {
		onProgress = func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\rexporting... %3.0f%%", fraction*100)
			if fraction >= 1 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	result, err := facade.Export(ctx, deck, cfg, onProgress)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		log.Logf("warning: %s", w.Message)
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}

	outPath := export.SuggestFilename(cfg, deck.Title)
	if err := os.WriteFile(outPath, result.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	log.Logf("wrote %s (%d bytes, %d warnings)", outPath, len(result.Data), len(result.Warnings))
	if !quiet {
		fmt.Printf("wrote %s (%d bytes)\n", outPath, len(result.Data))
	}
	return nil
}
