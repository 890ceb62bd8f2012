package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"slideforge/canvas"
	"slideforge/config"
)

func testDeck() *canvas.Deck {
	return &canvas.Deck{
		Title: "Quarterly Review",
		Slides: []*canvas.Slide{
			titleSlide("s1", 0, "Welcome"),
			titleSlide("s2", 10, "Numbers"),
		},
	}
}

func TestFacadeDispatchesDeckBackend(t *testing.T) {
	f := NewFacade(nil, nil, nil, nil)
	for _, backend := range []string{config.BackendDeck, ""} {
		res, err := f.Export(context.Background(), testDeck(), config.ExportConfig{Backend: backend}, nil)
		if err != nil {
			t.Fatalf("backend %q: %v", backend, err)
		}
		if !bytes.HasPrefix(res.Data, []byte("PK")) {
			t.Fatalf("backend %q did not produce a zip container", backend)
		}
	}
}

func TestFacadeDispatchesPagesBackend(t *testing.T) {
	factory := func(_ *canvas.Template) RenderSlideFunc { return stubRender }
	f := NewFacade(nil, factory, nil, nil)
	res, err := f.Export(context.Background(), testDeck(), config.ExportConfig{Backend: config.BackendPages}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Fatal("pages backend did not produce a PDF")
	}
}

func TestFacadePagesWithoutRendererFails(t *testing.T) {
	f := NewFacade(nil, nil, nil, nil)
	_, err := f.Export(context.Background(), testDeck(), config.ExportConfig{Backend: config.BackendPages}, nil)
	if err == nil || !strings.Contains(err.Error(), "renderer") {
		t.Fatalf("err = %v", err)
	}
}

func TestFacadeDispatchesOutlineBackend(t *testing.T) {
	f := NewFacade(nil, nil, nil, nil)
	res, err := f.Export(context.Background(), testDeck(), config.ExportConfig{Backend: config.BackendOutline}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Fatal("outline backend did not produce a PDF")
	}
}

func TestFacadeRejectsUnknownBackend(t *testing.T) {
	f := NewFacade(nil, nil, nil, nil)
	_, err := f.Export(context.Background(), testDeck(), config.ExportConfig{Backend: "docx"}, nil)
	if err == nil || !strings.Contains(err.Error(), `unknown backend "docx"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestFacadeRejectsNilDeck(t *testing.T) {
	if _, err := NewFacade(nil, nil, nil, nil).Export(context.Background(), nil, config.ExportConfig{}, nil); err == nil {
		t.Fatal("expected error for nil deck")
	}
}

func TestSuggestFilename(t *testing.T) {
	cases := []struct {
		name  string
		cfg   config.ExportConfig
		title string
		want  string
	}{
		{"explicit name gets extension", config.ExportConfig{Filename: "handout"}, "x", "handout.pptx"},
		{"explicit name keeps extension", config.ExportConfig{Filename: "Handout.PPTX"}, "x", "Handout.PPTX"},
		{"pdf backend extension", config.ExportConfig{Backend: config.BackendPages, Filename: "handout"}, "x", "handout.pdf"},
		{"outline uses pdf", config.ExportConfig{Backend: config.BackendOutline}, "Q3 Review", "q3-review.pdf"},
		{"title slugified", config.ExportConfig{}, "Q3 Review: Deep Dive!", "q3-review-deep-dive.pptx"},
		{"empty title fallback", config.ExportConfig{}, "   ", "presentation.pptx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SuggestFilename(tc.cfg, tc.title); got != tc.want {
				t.Fatalf("SuggestFilename = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":     "hello-world",
		"  trim  me  ":    "trim-me",
		"already-slugged": "already-slugged",
		"***":             "",
		"ÄÖÜ plan 9":      "plan-9",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
