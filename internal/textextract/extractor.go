// Package textextract turns user-supplied bill files into raw text, entirely
// on device. The PDF adapter parses text content in-process; the image
// adapter shells out to tesseract. Neither sends bytes anywhere.
package textextract

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Lang        string // default "eng"
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	// one-time OCR engine bootstrap; concurrent callers must not double-load
	ocrBoot    sync.Once
	ocrBootErr error
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// bootstrapOCR resolves the recognition engine once. Idempotent: every
// caller after the first gets the cached result.
func (e *Extractor) bootstrapOCR(_ context.Context) error {
	e.ocrBoot.Do(func() {
		path, err := exec.LookPath(e.cfg.Tesseract)
		if err != nil {
			e.logger.Error("ocr.bootstrap.failed", "binary", e.cfg.Tesseract, "error", err)
			e.ocrBootErr = err
			return
		}
		e.logger.Info("ocr.bootstrap.ok", "binary", path, "lang", e.cfg.Lang)
	})
	return e.ocrBootErr
}
