package ocr

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRunner fakes pdfinfo, pdftoppm and tesseract. Page texts are keyed
// by the page number encoded in the rendered image name.
type mockRunner struct {
	mu         sync.Mutex
	missing    map[string]bool
	totalPages int
	texts      map[int]string
	failPages  map[int]bool
	onPage     func(page int)
	rendered   []int
	lastArgs   map[string][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastArgs == nil {
		m.lastArgs = make(map[string][]string)
	}
	m.lastArgs[name] = args

	switch name {
	case "pdfinfo":
		return []byte("Pages: " + strconv.Itoa(m.totalPages) + "\n"), nil
	case "pdftoppm":
		page, _ := strconv.Atoi(args[4])
		m.rendered = append(m.rendered, page)
		if m.onPage != nil {
			m.onPage(page)
		}
		return nil, nil
	case "tesseract":
		image := args[0]
		n := strings.TrimSuffix(image[strings.LastIndex(image, "page-")+len("page-"):], ".png")
		page, _ := strconv.Atoi(n)
		if m.failPages[page] {
			return nil, errors.New("tesseract crashed")
		}
		return []byte(m.texts[page]), nil
	}
	return nil, errors.New("unexpected command " + name)
}

func (m *mockRunner) LookPath(name string) (string, error) {
	if m.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func scanned() *domain.RawFile {
	return &domain.RawFile{Path: "/docs/scan.pdf", Content: []byte("%PDF-1.4 scanned")}
}

func TestNew_Defaults(t *testing.T) {
	cfg := New(Config{}).Config()

	assert.Equal(t, DefaultMaxPages, cfg.MaxPages)
	assert.Equal(t, DefaultDPI, cfg.DPI)
	assert.Equal(t, "eng", cfg.Language)
}

func TestRecognize_FormatsPages(t *testing.T) {
	runner := &mockRunner{
		totalPages: 3,
		texts:      map[int]string{1: "  Invoice 42\n", 2: "   ", 3: "Total due"},
	}

	got, err := NewWithRunner(runner, Config{}).Recognize(context.Background(), scanned())

	require.NoError(t, err)
	want := "OCR-Extracted Text from scan.pdf\nSource: Scanned PDF processed with OCR\nPages processed: 2/3\n" +
		"\n=== Page 1 ===\nInvoice 42\n" +
		"\n=== Page 3 ===\nTotal due\n"
	assert.Equal(t, want, got)
}

func TestRecognize_PassesRenderingOptions(t *testing.T) {
	runner := &mockRunner{totalPages: 1, texts: map[int]string{1: "x"}}

	_, err := NewWithRunner(runner, Config{DPI: 300, Language: "deu"}).Recognize(context.Background(), scanned())

	require.NoError(t, err)
	assert.Equal(t, "300", runner.lastArgs["pdftoppm"][1])
	assert.Equal(t, []string{"-l", "deu"}, runner.lastArgs["tesseract"][2:])
}

func TestRecognize_MaxPages(t *testing.T) {
	texts := map[int]string{}
	for i := 1; i <= 10; i++ {
		texts[i] = "page " + strconv.Itoa(i)
	}
	runner := &mockRunner{totalPages: 10, texts: texts}

	got, err := NewWithRunner(runner, Config{MaxPages: 4}).Recognize(context.Background(), scanned())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, runner.rendered)
	assert.Contains(t, got, "Pages processed: 4/4")
	assert.NotContains(t, got, "=== Page 5 ===")
}

func TestRecognize_FailedPageSkipped(t *testing.T) {
	runner := &mockRunner{
		totalPages: 2,
		texts:      map[int]string{1: "one", 2: "two"},
		failPages:  map[int]bool{1: true},
	}

	got, err := NewWithRunner(runner, Config{}).Recognize(context.Background(), scanned())

	require.NoError(t, err)
	assert.Contains(t, got, "Pages processed: 1/2")
	assert.Contains(t, got, "=== Page 2 ===\ntwo")
}

func TestRecognize_NoText(t *testing.T) {
	runner := &mockRunner{totalPages: 2, texts: map[int]string{}}

	_, err := NewWithRunner(runner, Config{}).Recognize(context.Background(), scanned())

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestRecognize_CancelDiscardsPartialOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &mockRunner{
		totalPages: 5,
		texts:      map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"},
		onPage: func(page int) {
			if page == 2 {
				cancel()
			}
		},
	}

	got, err := NewWithRunner(runner, Config{}).Recognize(ctx, scanned())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.LessOrEqual(t, len(runner.rendered), 3)
}

func TestRecognize_ToolsMissing(t *testing.T) {
	runner := &mockRunner{missing: map[string]bool{"tesseract": true}}

	_, err := NewWithRunner(runner, Config{}).Recognize(context.Background(), scanned())

	assert.ErrorIs(t, err, domain.ErrToolNotFound)
	assert.Contains(t, err.Error(), "tesseract")
}

func TestRecognize_RateLimited(t *testing.T) {
	runner := &mockRunner{totalPages: 2, texts: map[int]string{1: "a", 2: "b"}}
	engine := NewWithRunner(runner, Config{PagesPerSecond: 1000})

	got, err := engine.Recognize(context.Background(), scanned())

	require.NoError(t, err)
	assert.Contains(t, got, "Pages processed: 2/2")
}

func TestHeader(t *testing.T) {
	assert.Equal(t,
		"OCR-Extracted Text from a.pdf\nSource: Scanned PDF processed with OCR\nPages processed: 3/7\n",
		Header("a.pdf", 3, 7))
}
