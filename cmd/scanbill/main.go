// Command scanbill runs the capture pipeline once against a local file and
// prints the extracted draft. Useful for checking masking and extraction
// without starting the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/llm"
	"github.com/billerpro/billerpro/internal/llm/openai"
	"github.com/billerpro/billerpro/internal/mask"
	"github.com/billerpro/billerpro/internal/textextract"
	"github.com/billerpro/billerpro/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	maskOnly := flag.Bool("mask-only", false, "stop after masking, don't call the extraction service")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scanbill [flags] <bill.pdf|bill.jpg>")
		os.Exit(2)
	}
	file := flag.Arg(0)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}

	extractor := textextract.NewExtractor(textextract.Config{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Lang:        cfg.OCR.Lang,
	}, logger)

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	var rawText string
	if ext == "pdf" {
		rawText, err = extractor.PDFText(ctx, data)
	} else {
		rawText, err = extractor.ImageText(ctx, data, ext)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", common.UserMessage(err))
		os.Exit(1)
	}

	maskedText, maskedFields := mask.Mask(rawText)
	fmt.Println("--- masked text ---")
	fmt.Println(maskedText)
	fmt.Println("--- masked fields:", strings.Join(maskedFields, ", "))

	if *maskOnly {
		return
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	fields, err := client.ExtractFields(ctx, llm.ExtractRequest{MaskedText: maskedText})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fields:", common.UserMessage(err))
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(fields, "", "  ")
	fmt.Println("--- extracted fields ---")
	fmt.Println(string(out))
}
