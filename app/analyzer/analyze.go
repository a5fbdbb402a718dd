package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/related"
)

const (
	analysisInputLength = 1500
	analysisMaxTokens   = 500
)

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

const analysisPrompt = `You are analyzing a news article to find VERY SPECIFIC related articles about the SAME event, product, or announcement.

Title: %s
Content: %s

Return a JSON object focusing on the MOST SPECIFIC details:

{
  "exactEvent": "precise description of the specific event or announcement",
  "companyNames": ["exact company names mentioned"],
  "productNames": ["exact product or model names with versions"],
  "specificEntities": ["specific people, locations, technologies with version numbers"],
  "dates": ["specific dates, months, or quarters mentioned"],
  "searchTerms": ["3-5 highly specific search terms that uniquely identify this story"]
}

If the article names no specific products, companies, or entities, return empty arrays for them.
Search terms must be specific to this story, not generic topic names.`

// Analyze extracts the entities describing the article's specific event. Any
// failure yields the Unavailable analysis.
func (c *Client) Analyze(ctx context.Context, article feed.Article) related.Analysis {
	prompt := fmt.Sprintf(analysisPrompt, article.Title, feed.Truncate(article.Body, analysisInputLength))

	reply, err := c.complete(ctx, prompt, analysisMaxTokens)
	if err != nil {
		slog.Warn("Entity analysis failed", "article", article.ID, "error", err)
		return related.UnavailableAnalysis()
	}

	analysis, err := ParseAnalysis(reply)
	if err != nil {
		slog.Warn("Failed to parse entity analysis", "article", article.ID, "error", err)
		return related.UnavailableAnalysis()
	}

	slog.Debug("Entity analysis completed", "article", article.ID, "kind", analysis.Kind.String())
	return analysis
}

// stringList accepts a JSON array of strings, a single string, or null.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = []string{single}
	return nil
}

type analysisPayload struct {
	ExactEvent       string     `json:"exactEvent"`
	ProductNames     stringList `json:"productNames"`
	CompanyNames     stringList `json:"companyNames"`
	SpecificEntities stringList `json:"specificEntities"`
	Dates            stringList `json:"dates"`
	SearchTerms      stringList `json:"searchTerms"`
}

// ParseAnalysis reads the first JSON object embedded in a model reply.
// Missing fields are treated as empty.
func ParseAnalysis(reply string) (related.Analysis, error) {
	raw := jsonObject.FindString(reply)
	if raw == "" {
		return related.Analysis{}, fmt.Errorf("no JSON object in reply")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return related.Analysis{}, fmt.Errorf("failed to decode analysis: %w", err)
	}

	return related.NewAnalysis(
		payload.ExactEvent,
		payload.ProductNames,
		payload.CompanyNames,
		payload.SpecificEntities,
		payload.Dates,
		payload.SearchTerms,
	), nil
}
