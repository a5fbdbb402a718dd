package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/related"
)

func replyWith(t *testing.T, text string, captured *messagesRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header, got '%s'", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("Expected anthropic-version %s, got '%s'", apiVersion, r.Header.Get("anthropic-version"))
		}

		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}
}

func TestAnalyze_Rich(t *testing.T) {
	reply := `Here is the analysis:
{
  "exactEvent": "OpenAI announces GPT-4 Turbo",
  "companyNames": ["OpenAI", "openai"],
  "productNames": ["GPT-4 Turbo"],
  "specificEntities": ["Sam Altman"],
  "dates": ["November 6"],
  "searchTerms": ["gpt-4 turbo", "openai devday"]
}
Hope this helps.`

	var captured messagesRequest
	server := httptest.NewServer(replyWith(t, reply, &captured))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", server.Client())
	article := feed.Article{ID: "a1", Title: "OpenAI DevDay", Body: strings.Repeat("x", 3000)}

	analysis := client.Analyze(context.Background(), article)

	if analysis.Kind != related.Rich {
		t.Errorf("Expected rich analysis, got %s", analysis.Kind)
	}
	if analysis.ExactEvent != "OpenAI announces GPT-4 Turbo" {
		t.Errorf("Expected exact event, got '%s'", analysis.ExactEvent)
	}
	if len(analysis.CompanyNames) != 1 {
		t.Errorf("Expected duplicate companies collapsed, got %v", analysis.CompanyNames)
	}
	if len(analysis.SearchTerms) != 2 {
		t.Errorf("Expected 2 search terms, got %v", analysis.SearchTerms)
	}

	if captured.Model != "test-model" || captured.MaxTokens != analysisMaxTokens {
		t.Errorf("Expected model and max tokens in request, got %+v", captured)
	}
	if len(captured.Messages) != 1 || strings.Contains(captured.Messages[0].Content, strings.Repeat("x", 1501)) {
		t.Error("Expected article body truncated to 1500 characters in prompt")
	}
}

func TestAnalyze_MissingFieldsTolerated(t *testing.T) {
	server := httptest.NewServer(replyWith(t, `{"searchTerms": "devday"}`, nil))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "m", server.Client())
	analysis := client.Analyze(context.Background(), feed.Article{ID: "a1", Title: "t"})

	if analysis.Kind != related.Poor {
		t.Errorf("Expected poor analysis, got %s", analysis.Kind)
	}
	if len(analysis.SearchTerms) != 1 || analysis.SearchTerms[0] != "devday" {
		t.Errorf("Expected single search term, got %v", analysis.SearchTerms)
	}
}

func TestAnalyze_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"no json object", replyWith(t, "I cannot help with that.", nil)},
		{"malformed json", replyWith(t, `{"productNames": [1, 2}`, nil)},
		{"not a messages payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "test-key", "m", server.Client())
			analysis := client.Analyze(context.Background(), feed.Article{ID: "a1"})

			if analysis.Kind != related.Unavailable {
				t.Errorf("Expected unavailable analysis, got %s", analysis.Kind)
			}
		})
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "m", server.Client())
	if client.Enabled() {
		t.Error("Expected client without key to be disabled")
	}

	analysis := client.Analyze(context.Background(), feed.Article{ID: "a1"})
	if analysis.Kind != related.Unavailable {
		t.Errorf("Expected unavailable analysis, got %s", analysis.Kind)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Expected no request without an API key")
	}
}

func TestSummarize(t *testing.T) {
	var captured messagesRequest
	server := httptest.NewServer(replyWith(t, "  Two sentences. Exactly two.  ", &captured))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "m", server.Client())
	summary := client.Summarize(context.Background(), "Title", "Body text")

	if summary != "Two sentences. Exactly two." {
		t.Errorf("Expected trimmed summary, got '%s'", summary)
	}
	if !strings.Contains(captured.Messages[0].Content, "Title: Title") {
		t.Errorf("Expected title in prompt, got '%s'", captured.Messages[0].Content)
	}
}

func TestSummarize_Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "m", server.Client())
	body := strings.Repeat("a", 200)

	summary := client.Summarize(context.Background(), "Big News", body)
	expected := `This article discusses "Big News". ` + strings.Repeat("a", 150) + "..."

	if summary != expected {
		t.Errorf("Expected fallback summary, got '%s'", summary)
	}
}

func TestFallbackSummary_ShortBody(t *testing.T) {
	summary := FallbackSummary("Title", "Short.")
	if summary != `This article discusses "Title". Short....` {
		t.Errorf("Unexpected fallback summary: '%s'", summary)
	}
}
