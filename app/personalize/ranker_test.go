package personalize

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
)

// fixedSource always returns the same value.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// sequenceSource replays values in order.
type sequenceSource struct {
	values []float64
	next   int
}

func (s *sequenceSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

var rankNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return rankNow }

func TestRanker_ScoreFormula(t *testing.T) {
	ranker := NewRanker(fixedSource(0.5), fixedClock)

	profile := NewProfile()
	profile.TopicScores["ai"] = 0.4
	profile.Interests = []string{"ai"}
	profile.Read = []string{"read-1"}

	testCases := []struct {
		name     string
		article  feed.Article
		expected float64
	}{
		{
			name:     "interest topic published now",
			article:  feed.Article{ID: "a1", Topic: "ai", PublishedAt: rankNow},
			expected: 4 + 5 + 5 + 1,
		},
		{
			name:     "two days old",
			article:  feed.Article{ID: "a2", Topic: "ai", PublishedAt: rankNow.Add(-48 * time.Hour)},
			expected: 4 + 5 + 3 + 1,
		},
		{
			name:     "old article gets no freshness",
			article:  feed.Article{ID: "a3", Topic: "ai", PublishedAt: rankNow.AddDate(0, 0, -30)},
			expected: 4 + 5 + 0 + 1,
		},
		{
			name:     "unknown topic",
			article:  feed.Article{ID: "a4", Topic: "sports", PublishedAt: rankNow.AddDate(0, 0, -30)},
			expected: 1,
		},
		{
			name:     "already read",
			article:  feed.Article{ID: "read-1", Topic: "sports", PublishedAt: rankNow.AddDate(0, 0, -30)},
			expected: 1 - 20,
		},
		{
			name:     "missing publish time",
			article:  feed.Article{ID: "a5", Topic: "sports"},
			expected: 1,
		},
		{
			name:     "future publish time capped",
			article:  feed.Article{ID: "a6", Topic: "sports", PublishedAt: rankNow.Add(72 * time.Hour)},
			expected: 5 + 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ranker.Score(tc.article, profile)
			if !approxEqual(got, tc.expected) {
				t.Errorf("Expected score %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRanker_RankOrdersByScore(t *testing.T) {
	ranker := NewRanker(fixedSource(0), fixedClock)

	profile := NewProfile()
	profile.TopicScores["ai"] = 0.8
	profile.TopicScores["politics"] = -0.5
	profile.Read = []string{"seen"}

	old := rankNow.AddDate(0, 0, -10)
	articles := []feed.Article{
		{ID: "politics", Topic: "politics", PublishedAt: old},
		{ID: "seen", Topic: "ai", PublishedAt: old},
		{ID: "ai", Topic: "ai", PublishedAt: old},
		{ID: "fresh", Topic: "world", PublishedAt: rankNow},
	}
	original := slices.Clone(articles)

	ranked := ranker.Rank(articles, profile)

	got := articleIDs(ranked)
	expected := []string{"ai", "fresh", "politics", "seen"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected order %v, got %v", expected, got)
	}

	if !slices.EqualFunc(articles, original, func(a, b feed.Article) bool { return a.ID == b.ID }) {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestRanker_RankIsPermutation(t *testing.T) {
	ranker := NewRanker(rand.New(rand.NewPCG(1, 2)), fixedClock)

	profile := NewProfile()
	profile.TopicScores["ai"] = 0.3
	profile.Interests = []string{"science"}

	var articles []feed.Article
	topics := []string{"ai", "science", "world", "health"}
	for i := 0; i < 50; i++ {
		articles = append(articles, feed.Article{
			ID:          fmt.Sprintf("article-%d", i),
			Topic:       topics[i%4],
			PublishedAt: rankNow.Add(-time.Duration(i) * time.Hour),
		})
	}

	ranked := ranker.Rank(articles, profile)

	if len(ranked) != len(articles) {
		t.Fatalf("Expected %d articles, got %d", len(articles), len(ranked))
	}

	want := articleIDs(articles)
	got := articleIDs(ranked)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Error("Expected ranking to be a permutation of the input")
	}
}

func TestRanker_PersonalizationDisabled(t *testing.T) {
	source := &sequenceSource{values: []float64{0.1, 0.9, 0.5}}
	ranker := NewRanker(source, fixedClock)

	profile := NewProfile()
	profile.Settings.Personalization = false
	profile.TopicScores["ai"] = 1.0
	profile.Interests = []string{"ai"}

	articles := []feed.Article{
		{ID: "first", Topic: "ai", PublishedAt: rankNow},
		{ID: "second", Topic: "world"},
		{ID: "third", Topic: "world"},
	}

	ranked := ranker.Rank(articles, profile)

	expected := []string{"second", "third", "first"}
	if got := articleIDs(ranked); !slices.Equal(got, expected) {
		t.Errorf("Expected purely random order %v, got %v", expected, got)
	}
}

func TestRanker_ReproducibleWithSeed(t *testing.T) {
	profile := NewProfile()
	articles := []feed.Article{
		{ID: "a", Topic: "ai"},
		{ID: "b", Topic: "ai"},
		{ID: "c", Topic: "ai"},
		{ID: "d", Topic: "ai"},
	}

	first := NewRanker(rand.New(rand.NewPCG(9, 9)), fixedClock).Rank(articles, profile)
	second := NewRanker(rand.New(rand.NewPCG(9, 9)), fixedClock).Rank(articles, profile)

	if !slices.Equal(articleIDs(first), articleIDs(second)) {
		t.Error("Expected identical rankings for identical seeds")
	}
}

func TestRanker_EmptyInput(t *testing.T) {
	ranker := NewRanker(fixedSource(0), fixedClock)

	if ranked := ranker.Rank(nil, NewProfile()); len(ranked) != 0 {
		t.Errorf("Expected empty ranking, got %d", len(ranked))
	}
}

func articleIDs(articles []feed.Article) []string {
	ids := make([]string, 0, len(articles))
	for _, article := range articles {
		ids = append(ids, article.ID)
	}
	return ids
}
