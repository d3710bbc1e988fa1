package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/billerpro/billerpro/constants"
	"github.com/billerpro/billerpro/internal/common"
)

// ImageText runs optical character recognition over the whole image and
// returns the recognized text as one normalized string. The image bytes stay
// on device; only text continues downstream.
func (e *Extractor) ImageText(ctx context.Context, data []byte, ext string) (string, error) {
	start := time.Now()

	if err := e.bootstrapOCR(ctx); err != nil {
		return "", common.OcrError("recognition engine unavailable", err)
	}

	tmpDir, err := os.MkdirTemp("", "bp-ocr-*")
	if err != nil {
		return "", common.OcrError("could not stage image for recognition", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.cleanup.failed", "dir", tmpDir, "error", err)
		}
	}()

	ext = constants.NormalizeExt(ext)
	if ext == "" {
		ext = "png"
	}
	in := filepath.Join(tmpDir, "bill."+ext)
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return "", common.OcrError("could not stage image for recognition", err)
	}

	txt, err := e.tesseractOCR(ctx, in)
	if err != nil {
		return "", common.OcrError("could not read text from this image", err)
	}
	txt = Normalize(txt)

	e.logger.Info("image.ocr.ok",
		"text_len", len(txt),
		"lang", e.cfg.Lang,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// "quiet" suppresses the per-page progress chatter on stderr
	args = append(args, "quiet")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
