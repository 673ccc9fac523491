// Package filesystem implements driven.DocumentSource over a local directory
// and watches that directory with fsnotify.
//
// Only the top level of the directory is scanned. Hidden files are skipped.
package filesystem
