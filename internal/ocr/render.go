package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PdftoppmRenderer rasterizes a page with poppler's pdftoppm.
type PdftoppmRenderer struct {
	bin string
}

// NewPdftoppmRenderer fails when pdftoppm is not on PATH.
func NewPdftoppmRenderer() (*PdftoppmRenderer, error) {
	bin, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	return &PdftoppmRenderer{bin: bin}, nil
}

func (r *PdftoppmRenderer) Name() string { return "pdftoppm" }

func (r *PdftoppmRenderer) Render(ctx context.Context, pdfPath string, pageNr, dpi int, dir string) (string, error) {
	prefix := filepath.Join(dir, "page-"+strconv.Itoa(pageNr))
	page := strconv.Itoa(pageNr)
	cmd := exec.CommandContext(ctx, r.bin,
		"-png", "-r", strconv.Itoa(dpi),
		"-f", page, "-l", page,
		"-singlefile",
		pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(stderr.String(), 200))
	}
	out := prefix + ".png"
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	return out, nil
}

// PDFCPURenderer writes out the largest image embedded in a page. Scanned PDFs
// normally carry one full-page image, so no rasterizer is needed.
type PDFCPURenderer struct{}

func (r *PDFCPURenderer) Name() string { return "pdfcpu" }

func (r *PDFCPURenderer) Render(ctx context.Context, pdfPath string, pageNr, dpi int, dir string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}
	if pageNr < 1 || pageNr > pctx.PageCount {
		return "", fmt.Errorf("page %d out of range (1-%d)", pageNr, pctx.PageCount)
	}

	imgs, err := pdfcpu.ExtractPageImages(pctx, pageNr, false)
	if err != nil {
		return "", fmt.Errorf("pdfcpu extract images: %w", err)
	}

	var best *model.Image
	for _, img := range imgs {
		if best == nil || img.Width*img.Height > best.Width*best.Height {
			best = &img
		}
	}
	if best == nil || best.Reader == nil {
		return "", ErrNoImage
	}

	ext := best.FileType
	if ext == "" {
		ext = "png"
	}
	out := filepath.Join(dir, fmt.Sprintf("page-%d.%s", pageNr, ext))
	w, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, best.Reader); err != nil {
		w.Close()
		return "", fmt.Errorf("write page image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
