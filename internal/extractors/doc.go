// Package extractors holds the per-format text extractors used by the
// document store. Each subpackage implements driven.Extractor for a fixed
// set of file extensions; the ocr subpackage implements driven.OCREngine.
//
// Extractors are registered with the ExtractorRegistry at startup.
package extractors
