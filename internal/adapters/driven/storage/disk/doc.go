// Package disk provides a directory-backed implementation of driven.BlobStore.
//
// Each entry is one JSON file addressed by the SHA-256 of its key and
// sharded by the first two hex characters:
//
//	<root>/objects/ab/cdef....json
//
// Writes go to a temporary file in the target directory which is synced
// and then renamed over the destination, so a reader never observes a
// partially written entry. Entries are independent files; deleting one
// leaves every other entry intact.
package disk
