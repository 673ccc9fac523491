// Package docx extracts paragraph text from Word (.docx) files.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// maxPartSize bounds the decompressed size of document.xml.
const maxPartSize = 64 << 20

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{string(domain.FileTypeDOCX)}
}

// Extract returns the document's body paragraphs, one per line.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip archive: %v", domain.ErrInvalidInput, err)
	}

	content, err := readPart(reader, documentPart)
	if err != nil {
		return "", err
	}
	return parseDocumentXML(content)
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

// run holds the text-bearing children of a w:r element in document order.
type run struct {
	Parts []runPart `xml:",any"`
}

type runPart struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts paragraph text from the document XML.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, documentPart, err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, part := range r.Parts {
				switch part.XMLName.Local {
				case "t":
					result.WriteString(part.Content)
				case "tab":
					result.WriteString("\t")
				case "br", "cr":
					result.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}
