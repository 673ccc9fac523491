package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RetrievalResult
	context   string
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, k int) []domain.RetrievalResult {
	m.lastQuery = query
	m.lastK = k
	return m.results
}

func (m *mockRetrievalService) Context(_ context.Context, query string, k int) string {
	m.lastQuery = query
	m.lastK = k
	return m.context
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	snapshot *domain.Snapshot
	err      error
}

func (m *mockLibraryService) Dir() string {
	return "/docs"
}

func (m *mockLibraryService) Refresh(_ context.Context) (*domain.Snapshot, error) {
	return m.snapshot, m.err
}

func (m *mockLibraryService) Prewarm(ctx context.Context) (*domain.Snapshot, error) {
	return m.Refresh(ctx)
}

func (m *mockLibraryService) Current() *domain.Snapshot {
	return m.snapshot
}

func (m *mockLibraryService) Documents() []domain.Document {
	if m.snapshot == nil {
		return nil
	}
	return m.snapshot.Documents
}
