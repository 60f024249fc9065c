package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docquiz/internal/config"
)

// ErrNoImage is returned by a Renderer that found nothing to render for a page.
var ErrNoImage = errors.New("no page image")

// Renderer turns one PDF page into an image file inside dir.
type Renderer interface {
	Render(ctx context.Context, pdfPath string, pageNr, dpi int, dir string) (string, error)
	Name() string
}

// Engine extracts plain text from a page image.
type Engine interface {
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
	Name() string
}

// Service renders scanned pages and recognizes their text.
type Service struct {
	Renderers []Renderer // tried in order until one produces an image
	Engine    Engine
	DPI       int
	Lang      string
	Log       *slog.Logger
}

// New builds the OCR service selected by cfg.OCREngine. It returns nil, nil
// when OCR is disabled.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Service, error) {
	var engine Engine
	switch cfg.OCREngine {
	case "none", "":
		return nil, nil
	case "tesseract":
		t, err := NewTesseractEngine()
		if err != nil {
			return nil, err
		}
		engine = t
	case "vision":
		v, err := NewVisionEngine(ctx, cfg.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		engine = v
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCREngine)
	}

	var renderers []Renderer
	if r, err := NewPdftoppmRenderer(); err == nil {
		renderers = append(renderers, r)
	} else {
		log.Warn("pdftoppm unavailable, using embedded page images only", "error", err)
	}
	renderers = append(renderers, &PDFCPURenderer{})

	return &Service{
		Renderers: renderers,
		Engine:    engine,
		DPI:       cfg.OCRDPI,
		Lang:      cfg.OCRLang,
		Log:       log,
	}, nil
}

// PageText renders page pageNr of the PDF at pdfPath and returns its recognized text.
func (s *Service) PageText(ctx context.Context, pdfPath string, pageNr int) (string, error) {
	if len(s.Renderers) == 0 {
		return "", fmt.Errorf("ocr page %d: no renderer configured", pageNr)
	}

	dir, err := os.MkdirTemp("", "docquiz-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var img string
	var renderErr error
	for _, r := range s.Renderers {
		img, renderErr = r.Render(ctx, pdfPath, pageNr, s.DPI, dir)
		if renderErr == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if s.Log != nil {
			s.Log.Debug("page render failed", "renderer", r.Name(), "page", pageNr, "error", renderErr)
		}
	}
	if renderErr != nil {
		return "", fmt.Errorf("render page %d: %w", pageNr, renderErr)
	}

	text, err := s.Engine.Recognize(ctx, img, s.Lang)
	if err != nil {
		return "", fmt.Errorf("%s page %d: %w", s.Engine.Name(), pageNr, err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the engine's client, if it holds one.
func (s *Service) Close() error {
	if c, ok := s.Engine.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
