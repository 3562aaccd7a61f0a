package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultFetchMaxBytes = 1024 * 1024

// WebFetchTool fetches a URL and converts HTML to markdown-like text.
type WebFetchTool struct {
	client  *http.Client
	maxSize int64
}

// NewWebFetchTool creates a WebFetchTool. maxSize caps the response body;
// non-positive means the default.
func NewWebFetchTool(maxSize int64) *WebFetchTool {
	if maxSize <= 0 {
		maxSize = defaultFetchMaxBytes
	}
	return &WebFetchTool{
		client:  &http.Client{Timeout: 30 * time.Second},
		maxSize: maxSize,
	}
}

func (t *WebFetchTool) Name() string {
	return "web_fetch"
}

func (t *WebFetchTool) Description() string {
	return `Fetches a URL and returns its content as text. HTML pages are
converted to a markdown-like rendering.

PARAMETERS:
- url (required): http or https URL to fetch`
}

func (t *WebFetchTool) Validate(args map[string]any) error {
	urlStr, ok := GetString(args, "url")
	if !ok || urlStr == "" {
		return NewValidationError("url", "is required")
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return NewValidationError("url", fmt.Sprintf("invalid URL: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewValidationError("url", "only http and https URLs are supported")
	}
	return nil
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	urlStr, _ := GetString(args, "url")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot build request: %v", err)), nil
	}
	req.Header.Set("User-Agent", "pointer/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewErrorResult(fmt.Sprintf("HTTP %d fetching %s", resp.StatusCode, urlStr)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxSize))
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read response: %v", err)), nil
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	var content string
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		content, err = htmlToText(string(body))
		if err != nil {
			return NewErrorResult(fmt.Sprintf("cannot parse HTML: %v", err)), nil
		}
	} else {
		content = string(body)
	}

	return NewSuccessResultWithData(content, map[string]any{
		"url":          urlStr,
		"content_type": contentType,
		"length":       len(content),
	}), nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// htmlToText walks the document and renders a rough markdown view: headings,
// list items, links, and code fences survive; chrome like nav and script is
// dropped.
func htmlToText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	skipTags := map[string]bool{
		"script": true, "style": true, "nav": true, "footer": true,
		"header": true, "aside": true, "noscript": true, "iframe": true,
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skipTags[tag] {
				return
			}
			switch tag {
			case "h1":
				out.WriteString("\n# ")
			case "h2":
				out.WriteString("\n## ")
			case "h3", "h4", "h5", "h6":
				out.WriteString("\n### ")
			case "li":
				out.WriteString("\n- ")
			case "br":
				out.WriteString("\n")
			case "pre":
				out.WriteString("\n```\n")
			case "code":
				out.WriteString("`")
			case "p", "div", "section", "article", "blockquote", "tr":
				out.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				out.WriteString(whitespaceRun.ReplaceAllString(text, " "))
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "pre":
				out.WriteString("\n```\n")
			case "code":
				out.WriteString("`")
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && attr.Val != "" &&
						!strings.HasPrefix(attr.Val, "#") && !strings.HasPrefix(attr.Val, "javascript:") {
						fmt.Fprintf(&out, "(%s) ", attr.Val)
						break
					}
				}
			}
		}
	}
	walk(doc)

	// Collapse the blank-line runs the walk leaves behind.
	text := regexp.MustCompile(`\n{3,}`).ReplaceAllString(out.String(), "\n\n")
	return strings.TrimSpace(text), nil
}
