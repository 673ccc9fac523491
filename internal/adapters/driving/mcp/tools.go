package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultLimit is used when a tool call does not set a limit.
const defaultLimit = 3

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to find documents for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []RetrieveResultOutput `json:"results"`
	Count   int                    `json:"count"`
}

// RetrieveResultOutput represents a single ranked document.
type RetrieveResultOutput struct {
	FileName  string  `json:"file_name"`
	FilePath  string  `json:"file_path"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	MatchKind string  `json:"match_kind"`
}

// ContextOutput is the output schema for the context tool.
type ContextOutput struct {
	Context string `json:"context"`
}

// RefreshInput is the input schema for the refresh tool.
type RefreshInput struct{}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	SnapshotID  string `json:"snapshot_id"`
	Documents   int    `json:"documents"`
	IndexCached bool   `json:"index_cached"`
	IndexError  string `json:"index_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the documents most relevant to a question, ranked by score",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "context",
		Description: "Return the most relevant documents formatted as context for answering a question",
	}, s.handleContext)

	if s.ports.Library != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "refresh",
			Description: "Reload the document directory and rebuild the index",
		}, s.handleRefresh)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.Query == "" {
		return nil, RetrieveOutput{}, errors.New("query is required")
	}

	results := s.ports.Retrieval.Retrieve(ctx, input.Query, limitOrDefault(input.Limit))

	output := RetrieveOutput{
		Results: make([]RetrieveResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = RetrieveResultOutput{
			FileName:  results[i].Document.FileName,
			FilePath:  results[i].Document.FilePath,
			Content:   results[i].Document.Content,
			Score:     results[i].Score,
			MatchKind: results[i].MatchKind.String(),
		}
	}

	return nil, output, nil
}

// handleContext handles the context tool invocation.
func (s *Server) handleContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, ContextOutput, error) {
	if input.Query == "" {
		return nil, ContextOutput{}, errors.New("query is required")
	}

	text := s.ports.Retrieval.Context(ctx, input.Query, limitOrDefault(input.Limit))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, ContextOutput{Context: text}, nil
}

// handleRefresh handles the refresh tool invocation.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	snap, err := s.ports.Library.Refresh(ctx)
	if err != nil {
		return nil, RefreshOutput{}, err
	}

	output := RefreshOutput{
		SnapshotID:  snap.ID,
		Documents:   snap.Len(),
		IndexCached: snap.IndexCached,
	}
	if snap.IndexErr != nil {
		output.IndexError = snap.IndexErr.Error()
	}
	return nil, output, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
