package personalize

import (
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
)

const (
	topicWeight      = 10.0
	interestBonus    = 5.0
	freshnessDays    = 5.0
	alreadyReadMalus = 20.0
	jitterRange      = 2.0
	hoursPerDay      = 24.0
)

// Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Ranker orders candidate articles for a profile. Randomness and the clock
// are injected so rankings can be reproduced.
type Ranker struct {
	mu   sync.Mutex
	rand Source
	now  func() time.Time
}

func NewRanker(source Source, now func() time.Time) *Ranker {
	if now == nil {
		now = time.Now
	}
	return &Ranker{rand: source, now: now}
}

// Score computes the personalized score of a single article:
// 10*affinity + 5 for an interest + freshness (5 minus age in days, floored
// at 0) - 20 when already read + jitter in [0, 2). With personalization off
// the score is a uniform random value.
func (r *Ranker) Score(article feed.Article, profile *Profile) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score(article, profile, r.now())
}

// Rank returns the articles sorted by descending score. The input slice is
// left untouched and every article appears exactly once in the result.
func (r *Ranker) Rank(articles []feed.Article, profile *Profile) []feed.Article {
	type scored struct {
		article feed.Article
		score   float64
	}

	r.mu.Lock()
	now := r.now()
	ranked := make([]scored, len(articles))
	for i, article := range articles {
		ranked[i] = scored{article: article, score: r.score(article, profile, now)}
	}
	r.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	result := make([]feed.Article, len(ranked))
	for i, s := range ranked {
		result[i] = s.article
	}
	return result
}

func (r *Ranker) score(article feed.Article, profile *Profile, now time.Time) float64 {
	if !profile.Settings.Personalization {
		return r.rand.Float64()
	}

	score := profile.TopicScore(article.Topic) * topicWeight

	if profile.HasInterest(article.Topic) {
		score += interestBonus
	}

	if !article.PublishedAt.IsZero() {
		days := max(now.Sub(article.PublishedAt).Hours()/hoursPerDay, 0)
		score += max(0, freshnessDays-days)
	}

	if profile.IsRead(article.ID) {
		score -= alreadyReadMalus
	}

	return score + r.rand.Float64()*jitterRange
}
