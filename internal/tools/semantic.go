package tools

import (
	"context"
	"fmt"
	"strings"

	"squire/internal/vector"
)

// Searcher finds indexed documents similar to a query.
type Searcher interface {
	Search(ctx context.Context, query, kind string, topK int) ([]vector.Match, error)
}

// SemanticSearchTool searches past conversations by meaning.
type SemanticSearchTool struct {
	Index Searcher
}

func (t *SemanticSearchTool) Name() string { return "semantic_search" }

func (t *SemanticSearchTool) Description() string {
	return "Search past conversations by meaning rather than exact keywords"
}

func (t *SemanticSearchTool) Params() []Param {
	return []Param{
		{Name: "query", Type: "string", Description: "What to look for", Required: true},
		{Name: "top_k", Type: "integer", Description: "Number of results (default 5)"},
	}
}

func (t *SemanticSearchTool) Execute(ctx context.Context, args Args) Result {
	query, err := args.RequiredString("query")
	if err != nil {
		return Errorf("%v", err)
	}
	topK, err := args.OptionalInt("top_k")
	if err != nil {
		return Errorf("%v", err)
	}
	limit := 5
	if topK != nil && *topK > 0 {
		limit = *topK
	}

	matches, err := t.Index.Search(ctx, query, vector.KindConversation, limit)
	if err != nil {
		return Errorf("Semantic search failed: %v", err)
	}
	if len(matches) == 0 {
		return Ok("No relevant conversations found.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant conversations:\n\n", len(matches))
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. (similarity: %.2f)\n   %s\n\n", i+1, match.Similarity(), snippet(match.Content, 200))
	}
	return Ok(strings.TrimSpace(b.String()))
}

// SearchCodeTool searches the indexed workspace code by meaning.
type SearchCodeTool struct {
	Index Searcher
}

func (t *SearchCodeTool) Name() string { return "search_code" }

func (t *SearchCodeTool) Description() string {
	return "Search indexed workspace code by meaning rather than exact keywords"
}

func (t *SearchCodeTool) Params() []Param {
	return []Param{
		{Name: "query", Type: "string", Description: "What the code should do", Required: true},
		{Name: "top_k", Type: "integer", Description: "Number of results (default 5)"},
	}
}

func (t *SearchCodeTool) Execute(ctx context.Context, args Args) Result {
	query, err := args.RequiredString("query")
	if err != nil {
		return Errorf("%v", err)
	}
	topK, err := args.OptionalInt("top_k")
	if err != nil {
		return Errorf("%v", err)
	}
	limit := 5
	if topK != nil && *topK > 0 {
		limit = *topK
	}

	matches, err := t.Index.Search(ctx, query, vector.KindCode, limit)
	if err != nil {
		return Errorf("Code search failed: %v", err)
	}
	if len(matches) == 0 {
		return Ok("No matching code found. Index the workspace first with 'squire index'.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d code matches:\n\n", len(matches))
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. %s (chunk %d, similarity: %.2f)\n   %s\n\n",
			i+1, match.Path, match.Chunk, match.Similarity(), snippet(match.Content, 200))
	}
	return Ok(strings.TrimSpace(b.String()))
}

// snippet flattens text to a single line and clips it for display.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
