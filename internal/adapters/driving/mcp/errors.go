// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants retrieve ranked documents and ready-made answer
// context from the local document library.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
