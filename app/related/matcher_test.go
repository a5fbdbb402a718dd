package related

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
)

var matchNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestMatcher() *Matcher {
	return NewMatcher(DefaultLimit, func() time.Time { return matchNow })
}

func gptAnalysis() Analysis {
	return NewAnalysis("OpenAI releases GPT-4 Turbo", []string{"GPT-4 Turbo"}, []string{"OpenAI"}, nil, nil, nil)
}

func TestMatcher_CompanyHitScenario(t *testing.T) {
	matcher := newTestMatcher()

	candidate := feed.Article{
		ID:    "c1",
		Title: "OpenAI hires new research lead",
		Body:  "The company announced the hire on Monday.",
	}

	evaluation := matcher.Evaluate(gptAnalysis(), candidate)

	if evaluation.Score != 8 {
		t.Errorf("Expected gating score 8, got %d", evaluation.Score)
	}
	if evaluation.EntityTypes != 1 {
		t.Errorf("Expected 1 entity type hit, got %d", evaluation.EntityTypes)
	}
	if !evaluation.Accepted {
		t.Error("Expected candidate to be accepted in the rich regime")
	}
	if !slices.Equal(evaluation.Matches, []string{"Companies: OpenAI"}) {
		t.Errorf("Expected company match category, got %v", evaluation.Matches)
	}
}

func TestMatcher_TopicOnlyCandidateRejected(t *testing.T) {
	matcher := newTestMatcher()

	candidate := feed.Article{
		ID:    "c1",
		Topic: "ai",
		Title: "Weekly roundup",
		Body:  "Nothing about the story at all.",
	}

	analyses := map[string]Analysis{
		"rich": gptAnalysis(),
		"poor": NewAnalysis("", nil, nil, nil, nil, []string{"turbo", "release"}),
	}

	for name, analysis := range analyses {
		evaluation := matcher.Evaluate(analysis, candidate)
		if evaluation.Score != 0 || evaluation.Accepted {
			t.Errorf("%s: expected score 0 and rejection, got %d / %v", name, evaluation.Score, evaluation.Accepted)
		}
	}
}

func TestMatcher_Gate(t *testing.T) {
	matcher := newTestMatcher()

	rich := NewAnalysis("", nil, []string{"Nvidia"}, nil, []string{"June 3"}, []string{"earnings", "guidance", "chips"})
	poor := NewAnalysis("", nil, nil, nil, []string{"June 3"}, []string{"earnings", "guidance"})

	testCases := []struct {
		name     string
		analysis Analysis
		body     string
		score    int
		accepted bool
	}{
		{"rich entity hit", rich, "Nvidia stock rose", 8, true},
		{"rich one search term", rich, "earnings season", 3, false},
		{"rich search term and date", rich, "earnings due June 3", 5, false},
		{"rich two search terms", rich, "earnings guidance", 6, true},
		{"poor one search term", poor, "earnings season", 3, true},
		{"poor date only", poor, "due June 3", 2, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			evaluation := matcher.Evaluate(tc.analysis, feed.Article{ID: "c", Title: "Story", Body: tc.body})
			if evaluation.Score != tc.score {
				t.Errorf("Expected score %d, got %d", tc.score, evaluation.Score)
			}
			if evaluation.Accepted != tc.accepted {
				t.Errorf("Expected accepted=%v, got %v", tc.accepted, evaluation.Accepted)
			}
		})
	}
}

func TestMatcher_DistinctTermsAndCaseFolding(t *testing.T) {
	matcher := newTestMatcher()

	analysis := NewAnalysis("", []string{"iPhone", "Vision Pro"}, []string{"Apple"}, []string{"Tim Cook"}, nil, nil)
	candidate := feed.Article{
		ID:    "c1",
		Title: "APPLE shows IPHONE and vision pro",
		Body:  "tim cook on stage. iPhone iPhone iPhone.",
	}

	evaluation := matcher.Evaluate(analysis, candidate)

	if evaluation.Score != 10+10+8+6 {
		t.Errorf("Expected score 34, got %d", evaluation.Score)
	}
	if evaluation.EntityTypes != 3 {
		t.Errorf("Expected 3 entity types, got %d", evaluation.EntityTypes)
	}

	expected := []string{"Products: iPhone, Vision Pro", "Companies: Apple", "Entities: Tim Cook"}
	if !slices.Equal(evaluation.Matches, expected) {
		t.Errorf("Expected matches %v, got %v", expected, evaluation.Matches)
	}
}

func TestMatcher_Relevance(t *testing.T) {
	matcher := newTestMatcher()

	analysis := NewAnalysis("", []string{"GPT-4 Turbo"}, []string{"OpenAI"}, []string{"Sam Altman"}, []string{"November 6"}, []string{"devday"})

	testCases := []struct {
		name     string
		article  feed.Article
		expected int
	}{
		{
			name:     "title hits",
			article:  feed.Article{Title: "OpenAI GPT-4 Turbo with Sam Altman", PublishedAt: matchNow.AddDate(0, 0, -30)},
			expected: 20 + 15 + 12,
		},
		{
			name:     "body hits",
			article:  feed.Article{Title: "Announcement", Body: "OpenAI GPT-4 Turbo with Sam Altman", PublishedAt: matchNow.AddDate(0, 0, -30)},
			expected: 10 + 8 + 6,
		},
		{
			name:     "terms anywhere with fresh bonus",
			article:  feed.Article{Title: "DevDay recap", Body: "held November 6", PublishedAt: matchNow.Add(-2 * time.Hour)},
			expected: 5 + 3 + 5,
		},
		{
			name:     "this week bonus",
			article:  feed.Article{Title: "DevDay", PublishedAt: matchNow.AddDate(0, 0, -3)},
			expected: 5 + 2,
		},
		{
			name:     "no publish time",
			article:  feed.Article{Title: "DevDay"},
			expected: 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.Relevance(analysis, tc.article); got != tc.expected {
				t.Errorf("Expected relevance %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestMatcher_FindRelatedOrdersAndAnnotates(t *testing.T) {
	matcher := newTestMatcher()

	seed := feed.Article{ID: "seed", Title: "OpenAI releases GPT-4 Turbo", Body: "OpenAI GPT-4 Turbo"}
	old := matcher.now().AddDate(0, 0, -30)
	candidates := []feed.Article{
		seed,
		{ID: "body", Title: "Developer news", Body: "OpenAI shipped something", PublishedAt: old},
		{ID: "title", Title: "GPT-4 Turbo benchmarks", Body: "", PublishedAt: old},
		{ID: "unrelated", Title: "Sports", Body: "Football results", PublishedAt: old},
		{ID: "body", Title: "Duplicate ID", Body: "OpenAI GPT-4 Turbo", PublishedAt: old},
		{ID: "fresh", Title: "Developer news", Body: "OpenAI shipped something", PublishedAt: matchNow},
	}

	related := matcher.FindRelated(seed, gptAnalysis(), candidates)

	got := make([]string, 0, len(related))
	for _, article := range related {
		got = append(got, article.ID)
	}

	expected := []string{"title", "fresh", "body"}
	if !slices.Equal(got, expected) {
		t.Fatalf("Expected order %v, got %v", expected, got)
	}

	if related[0].Match == nil || related[0].Match.Score != 10 {
		t.Errorf("Expected gating score 10 on the title match, got %+v", related[0].Match)
	}
	if related[2].Match == nil || related[2].Match.Score != 8 {
		t.Errorf("Expected gating score 8 on the body match, got %+v", related[2].Match)
	}

	for _, candidate := range candidates {
		if candidate.Match != nil {
			t.Error("Expected input candidates to stay unannotated")
		}
	}
}

func TestMatcher_FindRelatedFallback(t *testing.T) {
	matcher := newTestMatcher()

	seed := feed.Article{ID: "seed", Title: "Apple unveils new iPhone at Cupertino event"}
	candidates := []feed.Article{
		{ID: "a", Title: "iPhone launch recap", Body: "A look back"},
		{ID: "b", Title: "Banana prices", Body: "Fruit markets"},
	}

	for _, analysis := range []Analysis{UnavailableAnalysis(), NewAnalysis("", nil, nil, nil, nil, nil)} {
		related := matcher.FindRelated(seed, analysis, candidates)

		if len(related) != 1 || related[0].ID != "a" {
			t.Fatalf("Expected only the iPhone article via fallback terms, got %d results", len(related))
		}
		if !slices.Equal(related[0].Match.Matches, []string{"Search terms: iphone"}) {
			t.Errorf("Expected fallback search term match, got %v", related[0].Match.Matches)
		}
	}
}

func TestMatcher_FindRelatedCapsResults(t *testing.T) {
	matcher := NewMatcher(3, func() time.Time { return matchNow })

	var candidates []feed.Article
	for i := 0; i < 10; i++ {
		candidates = append(candidates, feed.Article{ID: fmt.Sprintf("c%d", i), Title: "OpenAI update"})
	}

	related := matcher.FindRelated(feed.Article{ID: "seed"}, gptAnalysis(), candidates)
	if len(related) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(related))
	}
	if related[0].ID != "c0" || related[2].ID != "c2" {
		t.Errorf("Expected ties to keep input order, got %s..%s", related[0].ID, related[2].ID)
	}

	if len(NewMatcher(0, nil).FindRelated(feed.Article{ID: "seed"}, gptAnalysis(), append(candidates, candidates...))) != 10 {
		t.Error("Expected default limit to keep all 10 distinct candidates")
	}
}

func TestMatcher_FindRelatedEmptyPool(t *testing.T) {
	matcher := newTestMatcher()

	if related := matcher.FindRelated(feed.Article{ID: "seed", Title: "Anything"}, gptAnalysis(), nil); len(related) != 0 {
		t.Errorf("Expected no results, got %d", len(related))
	}
}

func TestMatcher_StructLiteralAnalysisGatedByContent(t *testing.T) {
	matcher := newTestMatcher()
	analysis := Analysis{
		ProductNames: []string{"Vision Pro"},
		SearchTerms:  []string{"apple"},
	}

	termOnly := feed.Article{ID: "c1", Title: "Apple earnings beat estimates", Body: "Revenue grew."}
	if evaluation := matcher.Evaluate(analysis, termOnly); evaluation.Accepted {
		t.Errorf("Expected a lone search-term hit to be rejected, got score %d", evaluation.Score)
	}

	productHit := feed.Article{ID: "c2", Title: "Vision Pro ships abroad", Body: "Apple expands sales."}
	if evaluation := matcher.Evaluate(analysis, productHit); !evaluation.Accepted {
		t.Errorf("Expected a product hit to be accepted, got score %d", evaluation.Score)
	}

	related := matcher.FindRelated(feed.Article{ID: "seed"}, analysis, []feed.Article{termOnly, productHit})
	if len(related) != 1 || related[0].ID != "c2" {
		t.Errorf("Expected only c2, got %v", related)
	}
}
