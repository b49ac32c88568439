package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// browserUserAgent mimics a desktop browser; the search endpoint serves
// a stripped page to unknown agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Default endpoints for the web tools.
const (
	defaultSearchBaseURL = "https://html.duckduckgo.com/html/"
	defaultAnswerBaseURL = "https://api.duckduckgo.com/"
)

// HTTPDoer abstracts HTTP clients used by web tools.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pacer bounds outbound request rate.
type Pacer interface {
	Allow() error
}

// searchResult is one parsed search hit.
type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearchTool searches the internet through DuckDuckGo's HTML endpoint.
type WebSearchTool struct {
	HTTP       HTTPDoer
	Pacer      Pacer
	BaseURL    string
	MaxResults int
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the internet for information"
}

func (t *WebSearchTool) Params() []Param {
	return []Param{
		{Name: "query", Type: "string", Description: "Search query (e.g. 'Go context cancellation')", Required: true},
		{Name: "num_results", Type: "integer", Description: "Number of results to return (default: 5, max: 10)"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args Args) Result {
	query, err := args.RequiredString("query")
	if err != nil {
		return Errorf("%v", err)
	}
	numResults, err := args.OptionalInt("num_results")
	if err != nil {
		return Errorf("%v", err)
	}
	limit := t.MaxResults
	if limit <= 0 {
		limit = 5
	}
	if numResults != nil && *numResults > 0 {
		limit = *numResults
	}
	if limit > 10 {
		limit = 10
	}

	if err := allow(t.Pacer); err != nil {
		return Errorf("search %v", err)
	}

	base := t.BaseURL
	if base == "" {
		base = defaultSearchBaseURL
	}
	endpoint := base + "?q=" + url.QueryEscape(query)
	doc, result := fetchHTML(ctx, t.HTTP, endpoint)
	if doc == nil {
		return result
	}

	results := parseSearchResults(doc, limit)
	if len(results) == 0 {
		return Errorf("No results found. Try a different query.")
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Search results for '%s':\n\n", query)
	for i, hit := range results {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, hit.Title)
		fmt.Fprintf(&builder, "   URL: %s\n", hit.URL)
		if hit.Snippet != "" {
			fmt.Fprintf(&builder, "   %s\n", hit.Snippet)
		}
		builder.WriteString("\n")
	}
	return Ok(strings.TrimSpace(builder.String()))
}

// parseSearchResults extracts hits from the result page.
func parseSearchResults(doc *html.Node, limit int) []searchResult {
	containers := findAll(doc, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "result")
	})
	results := make([]searchResult, 0, limit)
	for _, container := range containers {
		if len(results) >= limit {
			break
		}
		title := findFirst(container, func(n *html.Node) bool {
			return n.Data == "a" && hasClass(n, "result__a")
		})
		if title == nil {
			continue
		}
		hit := searchResult{
			Title: nodeText(title),
			URL:   cleanResultURL(attr(title, "href")),
		}
		if snippet := findFirst(container, func(n *html.Node) bool {
			return hasClass(n, "result__snippet")
		}); snippet != nil {
			hit.Snippet = nodeText(snippet)
		}
		results = append(results, hit)
	}
	return results
}

// cleanResultURL unwraps the redirect the result links point through.
func cleanResultURL(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// FetchURLTool fetches a page and extracts its readable text.
type FetchURLTool struct {
	HTTP      HTTPDoer
	Pacer     Pacer
	MaxLength int
}

func (t *FetchURLTool) Name() string { return "fetch_url" }

func (t *FetchURLTool) Description() string {
	return "Fetch and extract text content from a URL"
}

func (t *FetchURLTool) Params() []Param {
	return []Param{
		{Name: "url", Type: "string", Description: "URL to fetch (e.g. 'https://example.com/article')", Required: true},
		{Name: "max_length", Type: "integer", Description: "Maximum characters to return (default: 5000)"},
	}
}

func (t *FetchURLTool) Execute(ctx context.Context, args Args) Result {
	target, err := args.RequiredString("url")
	if err != nil {
		return Errorf("%v", err)
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return Errorf("Invalid URL. Must start with http:// or https://")
	}
	maxLength, err := args.OptionalInt("max_length")
	if err != nil {
		return Errorf("%v", err)
	}
	limit := t.MaxLength
	if limit <= 0 {
		limit = 5000
	}
	if maxLength != nil && *maxLength > 0 {
		limit = *maxLength
	}

	if err := allow(t.Pacer); err != nil {
		return Errorf("fetch %v", err)
	}

	doc, result := fetchHTML(ctx, t.HTTP, target)
	if doc == nil {
		return result
	}

	text := extractReadableText(doc)
	total := len(text)
	if total > limit {
		text = text[:limit] + fmt.Sprintf("\n\n[Content truncated. Total length: %d characters]", total)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Title: %s\n", documentTitle(doc))
	fmt.Fprintf(&builder, "URL: %s\n", target)
	fmt.Fprintf(&builder, "Content length: %d characters\n\n", len(text))
	builder.WriteString(text)
	return Ok(builder.String())
}

// QuickAnswerTool asks DuckDuckGo's instant answer API.
type QuickAnswerTool struct {
	HTTP    HTTPDoer
	Pacer   Pacer
	BaseURL string
}

func (t *QuickAnswerTool) Name() string { return "quick_answer" }

func (t *QuickAnswerTool) Description() string {
	return "Get a quick factual answer for a question or topic"
}

func (t *QuickAnswerTool) Params() []Param {
	return []Param{
		{Name: "query", Type: "string", Description: "Question or topic (e.g. 'What is Go?')", Required: true},
	}
}

// instantAnswer is the subset of the instant answer payload we read.
type instantAnswer struct {
	AbstractText   string `json:"AbstractText"`
	Answer         string `json:"Answer"`
	Definition     string `json:"Definition"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
}

func (t *QuickAnswerTool) Execute(ctx context.Context, args Args) Result {
	query, err := args.RequiredString("query")
	if err != nil {
		return Errorf("%v", err)
	}
	if err := allow(t.Pacer); err != nil {
		return Errorf("answer %v", err)
	}

	base := t.BaseURL
	if base == "" {
		base = defaultAnswerBaseURL
	}
	endpoint := base + "?q=" + url.QueryEscape(query) + "&format=json&no_html=1&skip_disambig=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Errorf("create request: %v", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := doRequest(t.HTTP, req)
	if err != nil {
		return webFailure("answer", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Errorf("HTTP error: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var decoded instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Errorf("decode answer: %v", err)
	}

	answer := decoded.AbstractText
	if answer == "" {
		answer = decoded.Answer
	}
	if answer == "" {
		answer = decoded.Definition
	}
	if answer == "" {
		return Errorf("No instant answer found. Try web_search for more results.")
	}

	source := decoded.AbstractSource
	if source == "" {
		source = "DuckDuckGo"
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Answer: %s\n\n", answer)
	fmt.Fprintf(&builder, "Source: %s\n", source)
	if decoded.AbstractURL != "" {
		fmt.Fprintf(&builder, "More info: %s", decoded.AbstractURL)
	}
	return Ok(strings.TrimSpace(builder.String()))
}

// allow consults the pacer when one is configured.
func allow(pacer Pacer) error {
	if pacer == nil {
		return nil
	}
	return pacer.Allow()
}

// doRequest dispatches through the configured client or the default.
func doRequest(client HTTPDoer, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// fetchHTML GETs a page and parses it, folding failures into a Result.
// The second return carries the failure when the document is nil.
func fetchHTML(ctx context.Context, client HTTPDoer, endpoint string) (*html.Node, Result) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Errorf("create request: %v", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := doRequest(client, req)
	if err != nil {
		return nil, webFailure("fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, Errorf("HTTP error: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, Errorf("parse page: %v", err)
	}
	return doc, Result{}
}

// webFailure maps transport errors to tool failures with a timeout hint.
func webFailure(verb string, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return Errorf("%s request timed out", verb)
	}
	return Errorf("%s failed: %v", verb, err)
}
