package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const SearchTopic = "search"

// Searcher looks up related coverage through an RSS news-search endpoint
// (Google News style: q, hl, gl, ceid query parameters).
type Searcher struct {
	baseURL    string
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	maxResults int
}

func NewSearcher(baseURL string, httpClient *http.Client, parser *Parser, userAgent string) *Searcher {
	return &Searcher{
		baseURL:    baseURL,
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		maxResults: 15,
	}
}

// Search returns articles for the query. Any failure yields an empty result;
// related coverage is best effort.
func (s *Searcher) Search(ctx context.Context, query string) []Article {
	query = strings.TrimSpace(query)
	if query == "" || s.baseURL == "" {
		return nil
	}

	data, err := s.fetch(ctx, query)
	if err != nil {
		slog.Warn("News search failed", "query", query, "error", err)
		return nil
	}

	_, items, err := s.parser.Run(data)
	if err != nil {
		slog.Warn("Failed to parse news search results", "query", query, "error", err)
		return nil
	}

	articles := make([]Article, 0, min(len(items), s.maxResults))
	for _, item := range items {
		if len(articles) == s.maxResults {
			break
		}
		if item.Link == "" {
			continue
		}

		title, source := splitSourceSuffix(item.Title)
		item.Title = title

		article := NewArticle(SearchTopic, source, item)
		if article.Body == title {
			article.Body = fmt.Sprintf("%s. Read more at %s.", title, article.Source)
			article.Summary = article.Body
		}
		articles = append(articles, article)
	}

	slog.Debug("News search completed", "query", query, "results", len(articles))
	return articles
}

func (s *Searcher) fetch(ctx context.Context, query string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// splitSourceSuffix turns "Headline - Publisher" into ("Headline", "Publisher").
func splitSourceSuffix(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
