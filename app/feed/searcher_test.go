package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchResultsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"OpenAI GPT-5" - Google News</title>
    <item>
      <title>OpenAI unveils GPT-5 to developers - The Verge</title>
      <link>https://news.example.com/articles/1</link>
      <pubDate>Tue, 07 Jan 2025 09:00:00 GMT</pubDate>
      <description>OpenAI unveils GPT-5 to developers</description>
    </item>
    <item>
      <title>Headline without source</title>
      <link>https://news.example.com/articles/2</link>
    </item>
    <item>
      <title>Dropped because it has no link - Wire</title>
    </item>
  </channel>
</rss>`

func TestSearcher_Search(t *testing.T) {
	var gotQuery string
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(searchResultsRSS))
	}))
	defer server.Close()

	searcher := NewSearcher(server.URL, server.Client(), NewParser(), "Test Agent")

	articles := searcher.Search(context.Background(), "OpenAI GPT-5")

	if gotQuery != "OpenAI GPT-5" {
		t.Errorf("Expected query 'OpenAI GPT-5', got '%s'", gotQuery)
	}
	if gotAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", gotAgent)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "OpenAI unveils GPT-5 to developers" {
		t.Errorf("Expected source suffix stripped, got '%s'", first.Title)
	}
	if first.Source != "The Verge" {
		t.Errorf("Expected source 'The Verge', got '%s'", first.Source)
	}
	if first.Topic != SearchTopic {
		t.Errorf("Expected topic '%s', got '%s'", SearchTopic, first.Topic)
	}
	if first.ID != ArticleID("https://news.example.com/articles/1") {
		t.Errorf("Expected ID derived from link, got %s", first.ID)
	}

	second := articles[1]
	if second.Source != "news.example.com" {
		t.Errorf("Expected source from host, got '%s'", second.Source)
	}
	if second.Body == second.Title {
		t.Error("Expected synthesized body for title-only results")
	}
}

func TestSearcher_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	searcher := NewSearcher(server.URL, server.Client(), NewParser(), "Test Agent")

	if articles := searcher.Search(context.Background(), "anything"); len(articles) != 0 {
		t.Errorf("Expected no articles on HTTP error, got %d", len(articles))
	}
	if articles := searcher.Search(context.Background(), "   "); len(articles) != 0 {
		t.Errorf("Expected no articles for blank query, got %d", len(articles))
	}
}

func TestSplitSourceSuffix(t *testing.T) {
	testCases := []struct {
		input  string
		title  string
		source string
	}{
		{"Headline - Reuters", "Headline", "Reuters"},
		{"Spider-Man returns - Variety", "Spider-Man returns", "Variety"},
		{"A - B - C", "A - B", "C"},
		{"No suffix", "No suffix", ""},
	}

	for _, tc := range testCases {
		title, source := splitSourceSuffix(tc.input)
		if title != tc.title || source != tc.source {
			t.Errorf("splitSourceSuffix(%q) = (%q, %q), expected (%q, %q)", tc.input, title, source, tc.title, tc.source)
		}
	}
}
