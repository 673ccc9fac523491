// Package connectors provides the document sources docqa reads from.
//
// The filesystem connector lists and reads files from a local document
// directory and can watch it for changes.
package connectors
