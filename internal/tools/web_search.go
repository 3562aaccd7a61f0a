package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearchResult is one hit from the search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

const defaultSearchEndpoint = "https://duckduckgo.com/html/"

// WebSearchTool queries a web search endpoint and returns title/url/snippet
// tuples. The default backend is the DuckDuckGo HTML endpoint, which needs
// no API key; a JSON endpoint can be configured instead.
type WebSearchTool struct {
	client     *http.Client
	endpoint   string
	maxResults int
}

// NewWebSearchTool creates a WebSearchTool. Empty endpoint selects the
// default backend; non-positive maxResults defaults to 5.
func NewWebSearchTool(endpoint string, maxResults int) *WebSearchTool {
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{
		client:     &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		maxResults: maxResults,
	}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return `Searches the web and returns result titles, URLs, and snippets.

PARAMETERS:
- query (required): the search query
- num_results (optional): how many results to return`
}

func (t *WebSearchTool) Validate(args map[string]any) error {
	query, ok := GetString(args, "query")
	if !ok || query == "" {
		return NewValidationError("query", "is required")
	}
	return nil
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	query, _ := GetString(args, "query")
	limit := GetIntDefault(args, "num_results", t.maxResults)
	if limit < 1 || limit > t.maxResults {
		limit = t.maxResults
	}

	results, err := t.search(ctx, query, limit)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return NewSuccessResult("(no results)"), nil
	}

	var builder strings.Builder
	for i, r := range results {
		fmt.Fprintf(&builder, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&builder, "   %s\n", r.Snippet)
		}
	}
	return NewSuccessResultWithData(builder.String(), results), nil
}

func (t *WebSearchTool) search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	u := t.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pointer/1.0")
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from search backend", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return parseJSONResults(body, limit)
	}
	return parseHTMLResults(string(body), limit)
}

// parseJSONResults handles configured backends returning
// {"results": [{"title","url","snippet"}, ...]}.
func parseJSONResults(body []byte, limit int) ([]SearchResult, error) {
	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}
	if len(payload.Results) > limit {
		payload.Results = payload.Results[:limit]
	}
	return payload.Results, nil
}

// parseHTMLResults scrapes the DuckDuckGo HTML result page.
func parseHTMLResults(body string, limit int) ([]SearchResult, error) {
	var results []SearchResult
	for _, chunk := range strings.Split(body, `class="result__a"`)[1:] {
		if len(results) >= limit {
			break
		}
		href := extractAttr(chunk, "href")
		title := extractText(chunk)
		if href == "" || title == "" {
			continue
		}
		results = append(results, SearchResult{Title: title, URL: href})
	}
	return results, nil
}

func extractAttr(chunk, attr string) string {
	marker := attr + `="`
	start := strings.Index(chunk, marker)
	if start < 0 {
		return ""
	}
	rest := chunk[start+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func extractText(chunk string) string {
	start := strings.Index(chunk, ">")
	if start < 0 {
		return ""
	}
	rest := chunk[start+1:]
	end := strings.Index(rest, "</a>")
	if end < 0 {
		return ""
	}
	text := rest[:end]
	text = strings.NewReplacer("<b>", "", "</b>", "", "&amp;", "&", "&quot;", `"`).Replace(text)
	return strings.TrimSpace(text)
}
