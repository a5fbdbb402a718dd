package related

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
	"golang.org/x/text/cases"
)

const DefaultLimit = 20

// Gate-pass weights per distinct matching term.
const (
	productWeight    = 10
	companyWeight    = 8
	entityWeight     = 6
	searchTermWeight = 3
	dateWeight       = 2
)

// Acceptance thresholds for the two analysis regimes.
const (
	richEntityMinScore = 4
	richTermsMinScore  = 6
	poorMinScore       = 3
)

// Ordering-pass weights: title hit / body hit.
const (
	productTitleWeight = 20
	productBodyWeight  = 10
	companyTitleWeight = 15
	companyBodyWeight  = 8
	entityTitleWeight  = 12
	entityBodyWeight   = 6
	searchTermAnyBonus = 5
	dateAnyBonus       = 3
	lastDayBonus       = 5
	lastWeekBonus      = 2
)

// Matcher finds candidates covering the same specific event as a seed article.
// It runs a strict gating pass over title and body, then orders the accepted
// candidates by a relevance pass that favors title hits and freshness.
type Matcher struct {
	limit int
	now   func() time.Time
}

func NewMatcher(limit int, now func() time.Time) *Matcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Matcher{limit: limit, now: now}
}

// Evaluation is the gating-pass result for one candidate.
type Evaluation struct {
	Score       int
	EntityTypes int
	Matches     []string
	Accepted    bool
}

// FindRelated returns annotated copies of the accepted candidates, best first.
// The seed and repeated candidate IDs are skipped; inputs are not modified.
// The gate follows the analysis content, so a hand-built Analysis naming
// products, companies or entities is matched as rich.
func (m *Matcher) FindRelated(seed feed.Article, analysis Analysis, candidates []feed.Article) []feed.Article {
	if analysis.IsEmpty() {
		analysis = FallbackAnalysis(seed.Title)
	}
	analysis = analysis.classified()

	terms := foldAnalysis(analysis)
	now := m.now()

	type ranked struct {
		article   feed.Article
		relevance int
	}

	seen := map[string]bool{seed.ID: true}
	var accepted []ranked

	for _, candidate := range candidates {
		if seen[candidate.ID] {
			continue
		}
		seen[candidate.ID] = true

		text := newFoldedText(candidate)
		evaluation := terms.evaluate(analysis.Kind, text)
		if !evaluation.Accepted {
			continue
		}

		annotated := candidate
		annotated.Match = &feed.MatchResult{
			Score:   evaluation.Score,
			Matches: evaluation.Matches,
		}

		accepted = append(accepted, ranked{
			article:   annotated,
			relevance: terms.relevance(text) + recencyBonus(candidate.PublishedAt, now),
		})
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].relevance > accepted[j].relevance
	})

	if len(accepted) > m.limit {
		accepted = accepted[:m.limit]
	}

	result := make([]feed.Article, len(accepted))
	for i, r := range accepted {
		result[i] = r.article
	}
	return result
}

// Evaluate runs the gating pass for a single candidate.
func (m *Matcher) Evaluate(analysis Analysis, candidate feed.Article) Evaluation {
	analysis = analysis.classified()
	return foldAnalysis(analysis).evaluate(analysis.Kind, newFoldedText(candidate))
}

// Relevance computes the ordering score for a single candidate.
func (m *Matcher) Relevance(analysis Analysis, candidate feed.Article) int {
	return foldAnalysis(analysis).relevance(newFoldedText(candidate)) + recencyBonus(candidate.PublishedAt, m.now())
}

func accepts(kind Kind, score, entityTypes int) bool {
	if kind == Rich {
		return (entityTypes >= 1 && score >= richEntityMinScore) || score >= richTermsMinScore
	}
	return score >= poorMinScore
}

func recencyBonus(publishedAt, now time.Time) int {
	if publishedAt.IsZero() {
		return 0
	}
	age := now.Sub(publishedAt)
	switch {
	case age < 24*time.Hour:
		return lastDayBonus
	case age < 7*24*time.Hour:
		return lastWeekBonus
	default:
		return 0
	}
}

type termList struct {
	original []string
	folded   []string
}

type foldedAnalysis struct {
	products    termList
	companies   termList
	entities    termList
	searchTerms termList
	dates       termList
}

type foldedText struct {
	title string
	body  string
	full  string
}

func foldAnalysis(a Analysis) foldedAnalysis {
	caser := cases.Fold()
	fold := func(terms []string) termList {
		list := termList{}
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			folded := caser.String(term)
			if slices.Contains(list.folded, folded) {
				continue
			}
			list.original = append(list.original, term)
			list.folded = append(list.folded, folded)
		}
		return list
	}

	return foldedAnalysis{
		products:    fold(a.ProductNames),
		companies:   fold(a.CompanyNames),
		entities:    fold(a.SpecificEntities),
		searchTerms: fold(a.SearchTerms),
		dates:       fold(a.Dates),
	}
}

func newFoldedText(article feed.Article) foldedText {
	caser := cases.Fold()
	title := caser.String(article.Title)
	body := caser.String(article.Body)
	return foldedText{
		title: title,
		body:  body,
		full:  title + " " + body,
	}
}

func (fa foldedAnalysis) evaluate(kind Kind, text foldedText) Evaluation {
	var evaluation Evaluation

	categories := []struct {
		label    string
		terms    termList
		weight   int
		isEntity bool
	}{
		{"Products", fa.products, productWeight, true},
		{"Companies", fa.companies, companyWeight, true},
		{"Entities", fa.entities, entityWeight, true},
		{"Search terms", fa.searchTerms, searchTermWeight, false},
		{"Dates", fa.dates, dateWeight, false},
	}

	for _, category := range categories {
		hits := category.terms.hitsIn(text.full)
		if len(hits) == 0 {
			continue
		}
		evaluation.Score += len(hits) * category.weight
		if category.isEntity {
			evaluation.EntityTypes++
		}
		evaluation.Matches = append(evaluation.Matches, fmt.Sprintf("%s: %s", category.label, strings.Join(hits, ", ")))
	}

	evaluation.Accepted = accepts(kind, evaluation.Score, evaluation.EntityTypes)
	return evaluation
}

func (fa foldedAnalysis) relevance(text foldedText) int {
	score := fa.products.titleOrBody(text, productTitleWeight, productBodyWeight)
	score += fa.companies.titleOrBody(text, companyTitleWeight, companyBodyWeight)
	score += fa.entities.titleOrBody(text, entityTitleWeight, entityBodyWeight)
	score += len(fa.searchTerms.hitsIn(text.full)) * searchTermAnyBonus
	score += len(fa.dates.hitsIn(text.full)) * dateAnyBonus
	return score
}

// hitsIn returns the original spelling of every term contained in text.
func (tl termList) hitsIn(text string) []string {
	var hits []string
	for i, folded := range tl.folded {
		if strings.Contains(text, folded) {
			hits = append(hits, tl.original[i])
		}
	}
	return hits
}

func (tl termList) titleOrBody(text foldedText, titleWeight, bodyWeight int) int {
	score := 0
	for _, folded := range tl.folded {
		if strings.Contains(text.title, folded) {
			score += titleWeight
		} else if strings.Contains(text.body, folded) {
			score += bodyWeight
		}
	}
	return score
}
