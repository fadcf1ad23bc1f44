package research

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// WebSearch queries Google Programmable Search.
type WebSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewWebSearch creates a search client for the engine cx. Extra options are
// passed to the service, for example option.WithEndpoint in tests.
func NewWebSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*WebSearch, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("web search requires an API key and engine id")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebSearch{svc: svc, cx: cx}, nil
}

// Search returns up to num results for query.
func (w *WebSearch) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if num <= 0 || num > 10 {
		num = 10
	}
	resp, err := w.svc.Cse.List().Cx(w.cx).Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
