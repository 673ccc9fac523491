package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// dedupPrefixLen is the number of leading content runes used to identify
// a document across retrieval rounds.
const dedupPrefixLen = 100

// FileType is a supported source file extension, including the dot.
type FileType string

// Supported file types.
const (
	FileTypePDF      FileType = ".pdf"
	FileTypeDOCX     FileType = ".docx"
	FileTypeText     FileType = ".txt"
	FileTypeMarkdown FileType = ".md"
	FileTypeHTML     FileType = ".html"
)

// FileTypes returns every supported file type.
func FileTypes() []FileType {
	return []FileType{FileTypeDOCX, FileTypeHTML, FileTypeMarkdown, FileTypePDF, FileTypeText}
}

// ParseFileType maps a file extension to a FileType.
// Matching is case-insensitive and ".htm" is accepted as HTML.
func ParseFileType(ext string) (FileType, error) {
	ext = strings.ToLower(ext)
	if ext == ".htm" {
		return FileTypeHTML, nil
	}
	for _, ft := range FileTypes() {
		if FileType(ext) == ft {
			return ft, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

// String returns the extension.
func (t FileType) String() string {
	return string(t)
}

// Document is the extracted text of one source file.
// Documents are values: construct them with NewDocument or FailedDocument
// and never mutate them afterwards.
type Document struct {
	// FileName is the display identifier, unique within one load.
	FileName string `json:"file_name"`

	// FilePath is the source location used for cache keys.
	FilePath string `json:"file_path"`

	// FileType is the extension the document was loaded as.
	FileType FileType `json:"file_type"`

	// Content is the extracted plain text. It is never empty.
	Content string `json:"content"`
}

// NewDocument validates its inputs and builds a Document.
// Content that is empty after trimming is replaced by a placeholder
// so the document still occupies a retrievable slot.
func NewDocument(path string, fileType FileType, content string) (Document, error) {
	if strings.TrimSpace(path) == "" {
		return Document{}, fmt.Errorf("%w: document path is empty", ErrInvalidInput)
	}
	if _, err := ParseFileType(string(fileType)); err != nil {
		return Document{}, err
	}

	name := filepath.Base(path)
	if strings.TrimSpace(content) == "" {
		content = EmptyContentPlaceholder(name)
	}

	return Document{
		FileName: name,
		FilePath: path,
		FileType: fileType,
		Content:  content,
	}, nil
}

// FailedDocument builds a placeholder Document for a file whose
// extraction failed. The content names the failure.
func FailedDocument(path string, fileType FileType, cause error) Document {
	name := filepath.Base(path)
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return Document{
		FileName: name,
		FilePath: path,
		FileType: fileType,
		Content:  fmt.Sprintf("Error loading %s: %s", name, reason),
	}
}

// EmptyContentPlaceholder is the content used when a file has no
// extractable text.
func EmptyContentPlaceholder(name string) string {
	return fmt.Sprintf("This file could not be processed. File: %s\n"+
		"Reason: No extractable text content found.", name)
}

// DocumentKey identifies a document across retrieval rounds.
type DocumentKey struct {
	FileName string
	Prefix   string
}

// Key returns the file name plus the first 100 runes of content.
func (d Document) Key() DocumentKey {
	prefix := d.Content
	if r := []rune(prefix); len(r) > dedupPrefixLen {
		prefix = string(r[:dedupPrefixLen])
	}
	return DocumentKey{FileName: d.FileName, Prefix: prefix}
}

// RawFile is the unprocessed content of a source file.
type RawFile struct {
	// Path is the file location on disk.
	Path string

	// Content is the raw bytes.
	Content []byte
}

// Name returns the base name of the file.
func (r *RawFile) Name() string {
	return filepath.Base(r.Path)
}
