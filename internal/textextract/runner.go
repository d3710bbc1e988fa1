package textextract

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner is the seam between the OCR adapter and the host system; tests stub
// it so no recognition binary is needed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) execRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		r.logger.Error("ocr.exec.failed",
			"binary", name,
			"error", err,
			"stderr", truncate(errb.String(), 4<<10),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return out.Bytes(), errb.Bytes(), err
	}

	r.logger.Debug("ocr.exec.ok",
		"binary", name,
		"stdout_bytes", out.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
