package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// TesseractEngine runs the tesseract CLI in automatic page segmentation mode.
type TesseractEngine struct {
	bin string
}

func NewTesseractEngine() (*TesseractEngine, error) {
	bin, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("tesseract not found: %w", err)
	}
	return &TesseractEngine{bin: bin}, nil
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	if lang == "" {
		lang = "eng"
	}
	cmd := exec.CommandContext(ctx, e.bin, imagePath, "stdout", "-l", lang, "--psm", "3")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(stderr.String(), 200))
	}
	return stdout.String(), nil
}
