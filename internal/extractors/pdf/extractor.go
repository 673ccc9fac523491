// Package pdf extracts text from PDF files with poppler's pdftotext,
// falling back to OCR for scanned documents without a text layer.
package pdf

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/command"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// SamplePages is how many leading pages are probed for a text layer.
const SamplePages = 5

// InstallInstructions returns platform-specific installation instructions.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext and pdfinfo (poppler-utils).

Install:
  macOS:   brew install poppler
  Ubuntu:  sudo apt install poppler-utils
  Fedora:  sudo dnf install poppler-utils
  Windows: choco install poppler`
}

// Extractor handles PDF documents.
type Extractor struct {
	runner command.Runner
	ocr    driven.OCREngine
}

// New creates a PDF extractor. ocr may be nil, in which case scanned
// documents fail to extract.
func New(ocr driven.OCREngine) *Extractor {
	return NewWithRunner(command.ExecRunner{}, ocr)
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner command.Runner, ocr driven.OCREngine) *Extractor {
	return &Extractor{runner: runner, ocr: ocr}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{string(domain.FileTypePDF)}
}

// CheckAvailable reports whether the poppler tools are installed.
func (e *Extractor) CheckAvailable() error {
	return command.Require(e.runner, InstallInstructions(), "pdfinfo", "pdftotext")
}

// Extract samples the first pages for a text layer. When one is found the
// whole document is extracted page by page; otherwise the file is handed to
// the OCR engine.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if err := e.CheckAvailable(); err != nil {
		return "", err
	}

	ws, err := command.NewWorkspace("docqa-pdf-")
	if err != nil {
		return "", err
	}
	defer ws.Close()

	path, err := ws.WriteFile(raw.Content, ".pdf")
	if err != nil {
		return "", err
	}

	pages, err := PageCount(ctx, e.runner, path)
	if err != nil {
		return "", err
	}
	logger.Debug("PDF %s has %d pages", raw.Name(), pages)

	sample := min(SamplePages, pages)
	var b strings.Builder
	withText := 0
	for page := 1; page <= sample; page++ {
		text, err := e.pageText(ctx, path, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Warn("PDF %s page %d: %v", raw.Name(), page, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		withText++
		b.WriteString(text)
		b.WriteString("\n")
	}

	if withText == 0 {
		return e.recognize(ctx, raw, pages)
	}

	for page := sample + 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.pageText(ctx, path, page)
		if err != nil {
			logger.Warn("PDF %s page %d: %v", raw.Name(), page, err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	logger.Debug("PDF %s: text layer on %d/%d sampled pages, %d characters", raw.Name(), withText, sample, b.Len())
	return b.String(), nil
}

func (e *Extractor) recognize(ctx context.Context, raw *domain.RawFile, pages int) (string, error) {
	if e.ocr == nil {
		return "", fmt.Errorf("%w: %s has no text layer and OCR is disabled", domain.ErrExtraction, raw.Name())
	}
	logger.Info("PDF %s has no text layer in the first %d pages, running OCR", raw.Name(), min(SamplePages, pages))
	return e.ocr.Recognize(ctx, raw)
}

func (e *Extractor) pageText(ctx context.Context, path string, page int) (string, error) {
	n := strconv.Itoa(page)
	out, err := e.runner.Run(ctx, "pdftotext", "-f", n, "-l", n, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

var pagesLine = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

// PageCount returns the number of pages reported by pdfinfo.
func PageCount(ctx context.Context, runner command.Runner, path string) (int, error) {
	out, err := runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed: %w", err)
	}
	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("%w: pdfinfo reported no page count", domain.ErrInvalidInput)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: page count %q", domain.ErrInvalidInput, m[1])
	}
	return n, nil
}
