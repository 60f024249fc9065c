package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/rpc/status"
)

type fakeRenderer struct {
	name  string
	err   error
	calls int
}

func (r *fakeRenderer) Name() string { return r.name }

func (r *fakeRenderer) Render(ctx context.Context, pdfPath string, pageNr, dpi int, dir string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	out := filepath.Join(dir, r.name+".png")
	if err := os.WriteFile(out, []byte("img"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type fakeEngine struct {
	text     string
	err      error
	gotImage string
	gotLang  string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	e.gotImage = imagePath
	e.gotLang = lang
	return e.text, e.err
}

func TestPageTextFallsBackToNextRenderer(t *testing.T) {
	first := &fakeRenderer{name: "first", err: ErrNoImage}
	second := &fakeRenderer{name: "second"}
	engine := &fakeEngine{text: "  Chapter 1\nCells divide.\n"}
	svc := &Service{Renderers: []Renderer{first, second}, Engine: engine, DPI: 300, Lang: "eng"}

	text, err := svc.PageText(context.Background(), "doc.pdf", 2)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if text != "Chapter 1\nCells divide." {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("expected both renderers tried once, got %d and %d", first.calls, second.calls)
	}
	if filepath.Base(engine.gotImage) != "second.png" {
		t.Errorf("expected engine to read second.png, got %q", engine.gotImage)
	}
	if engine.gotLang != "eng" {
		t.Errorf("expected lang eng, got %q", engine.gotLang)
	}
}

func TestPageTextErrors(t *testing.T) {
	t.Run("all renderers fail", func(t *testing.T) {
		svc := &Service{
			Renderers: []Renderer{&fakeRenderer{name: "a", err: errors.New("boom")}},
			Engine:    &fakeEngine{},
		}
		_, err := svc.PageText(context.Background(), "doc.pdf", 1)
		if err == nil || !strings.Contains(err.Error(), "render page 1") {
			t.Errorf("expected render error, got %v", err)
		}
	})

	t.Run("no renderers", func(t *testing.T) {
		svc := &Service{Engine: &fakeEngine{}}
		if _, err := svc.PageText(context.Background(), "doc.pdf", 1); err == nil {
			t.Error("expected error without renderers")
		}
	})

	t.Run("engine fails", func(t *testing.T) {
		svc := &Service{
			Renderers: []Renderer{&fakeRenderer{name: "a"}},
			Engine:    &fakeEngine{err: errors.New("unreadable")},
		}
		_, err := svc.PageText(context.Background(), "doc.pdf", 3)
		if err == nil || !strings.Contains(err.Error(), "fake page 3") {
			t.Errorf("expected engine error, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := &Service{
			Renderers: []Renderer{&fakeRenderer{name: "a", err: context.Canceled}, &fakeRenderer{name: "b"}},
			Engine:    &fakeEngine{},
		}
		if _, err := svc.PageText(ctx, "doc.pdf", 1); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestVisionRecognize(t *testing.T) {
	img := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(img, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got *visionpb.BatchAnnotateImagesRequest
	e := &VisionEngine{annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		got = req
		return &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{
				FullTextAnnotation: &visionpb.TextAnnotation{Text: "Xin chào"},
			}},
		}, nil
	}}

	text, err := e.Recognize(context.Background(), img, "vie")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Xin chào" {
		t.Errorf("expected text, got %q", text)
	}
	req := got.GetRequests()[0]
	if string(req.GetImage().GetContent()) != "png-bytes" {
		t.Errorf("expected image content sent, got %q", req.GetImage().GetContent())
	}
	if req.GetFeatures()[0].GetType() != visionpb.Feature_DOCUMENT_TEXT_DETECTION {
		t.Errorf("expected DOCUMENT_TEXT_DETECTION, got %v", req.GetFeatures()[0].GetType())
	}
	if hints := req.GetImageContext().GetLanguageHints(); len(hints) != 1 || hints[0] != "vi" {
		t.Errorf("expected [vi] hint, got %v", hints)
	}
}

func TestVisionAnnotateError(t *testing.T) {
	img := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(img, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := &VisionEngine{annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{Error: &status.Status{Message: "bad image"}}},
		}, nil
	}}
	_, err := e.Recognize(context.Background(), img, "eng")
	if err == nil || !strings.Contains(err.Error(), "bad image") {
		t.Errorf("expected annotate error, got %v", err)
	}
}

func TestLanguageHint(t *testing.T) {
	tests := []struct{ in, want string }{
		{"eng", "en"},
		{"vie+eng", "vi"},
		{" ENG ", "en"},
		{"ja", "ja"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := languageHint(tt.in); got != tt.want {
			t.Errorf("languageHint(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestServiceClose(t *testing.T) {
	closed := false
	svc := &Service{Engine: &VisionEngine{close: func() error { closed = true; return nil }}}
	if err := svc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !closed {
		t.Error("expected vision client to be closed")
	}

	svc = &Service{Engine: &fakeEngine{}}
	if err := svc.Close(); err != nil {
		t.Errorf("expected nil for engine without Close, got %v", err)
	}
}
