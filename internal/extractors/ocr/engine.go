// Package ocr recognises text in scanned PDFs by rendering pages with
// pdftoppm and reading them with tesseract.
package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/command"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Defaults for Config fields left at zero.
const (
	DefaultMaxPages = 215
	DefaultDPI      = 200
	DefaultLanguage = "eng"
)

// InstallInstructions returns platform-specific installation instructions.
func InstallInstructions() string {
	return `OCR requires tesseract and pdftoppm (poppler-utils).

Install:
  macOS:   brew install tesseract poppler
  Ubuntu:  sudo apt install tesseract-ocr poppler-utils
  Fedora:  sudo dnf install tesseract poppler-utils
  Windows: choco install tesseract poppler`
}

// Config controls an OCR run.
type Config struct {
	// MaxPages bounds how many leading pages are recognised.
	MaxPages int

	// DPI is the rendering resolution.
	DPI int

	// Language is the tesseract language code.
	Language string

	// PagesPerSecond paces page recognition. Zero means unlimited.
	PagesPerSecond float64
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	return c
}

// Engine is a tesseract-backed OCR engine.
type Engine struct {
	runner  command.Runner
	cfg     Config
	limiter *rate.Limiter
}

// New creates an OCR engine using the installed tools.
func New(cfg Config) *Engine {
	return NewWithRunner(command.ExecRunner{}, cfg)
}

// NewWithRunner creates an OCR engine with a custom command runner.
func NewWithRunner(runner command.Runner, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	limit := rate.Inf
	if cfg.PagesPerSecond > 0 {
		limit = rate.Limit(cfg.PagesPerSecond)
	}
	return &Engine{
		runner:  runner,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// CheckAvailable reports whether the OCR tools are installed.
func (e *Engine) CheckAvailable() error {
	return command.Require(e.runner, InstallInstructions(), "pdfinfo", "pdftoppm", "tesseract")
}

// Recognize renders and reads up to MaxPages pages. Pages that fail are
// skipped. Cancellation returns ctx.Err() and discards any text read so far.
func (e *Engine) Recognize(ctx context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if err := e.CheckAvailable(); err != nil {
		return "", err
	}

	ws, err := command.NewWorkspace("docqa-ocr-")
	if err != nil {
		return "", err
	}
	defer ws.Close()

	path, err := ws.WriteFile(raw.Content, ".pdf")
	if err != nil {
		return "", err
	}

	total, err := pdf.PageCount(ctx, e.runner, path)
	if err != nil {
		return "", &domain.ExtractionError{Path: raw.Path, Err: err}
	}
	pages := min(total, e.cfg.MaxPages)
	logger.Info("Running OCR on %s (%d of %d pages)", raw.Name(), pages, total)

	var body strings.Builder
	ok := 0
	for page := 1; page <= pages; page++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", ctxErrOr(ctx, err)
		}

		text, err := e.recognizePage(ctx, ws, path, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Warn("OCR %s page %d: %v", raw.Name(), page, err)
			continue
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(&body, "\n=== Page %d ===\n%s\n", page, text)
		ok++
		if page%10 == 0 {
			logger.Debug("OCR progress %s: %d/%d pages", raw.Name(), page, pages)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ok == 0 {
		return "", &domain.ExtractionError{
			Path: raw.Path,
			Err:  fmt.Errorf("OCR found no readable text in %d pages", pages),
		}
	}

	logger.Info("OCR completed for %s: %d/%d pages", raw.Name(), ok, pages)
	return Header(raw.Name(), ok, pages) + body.String(), nil
}

// Header is the preamble placed before recognised pages.
func Header(name string, ok, total int) string {
	return fmt.Sprintf("OCR-Extracted Text from %s\nSource: Scanned PDF processed with OCR\nPages processed: %d/%d\n", name, ok, total)
}

// recognizePage renders one page to PNG and returns its trimmed text.
func (e *Engine) recognizePage(ctx context.Context, ws *command.Workspace, path string, page int) (string, error) {
	n := strconv.Itoa(page)
	prefix := ws.Path("page-" + n)

	_, err := e.runner.Run(ctx, "pdftoppm",
		"-r", strconv.Itoa(e.cfg.DPI), "-png", "-f", n, "-l", n, "-singlefile", path, prefix)
	if err != nil {
		return "", fmt.Errorf("rendering: %w", err)
	}

	out, err := e.runner.Run(ctx, "tesseract", prefix+".png", "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func ctxErrOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
