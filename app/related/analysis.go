package related

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tags how much an entity analysis can be trusted for matching.
type Kind int

const (
	// Unavailable means the extraction service failed or returned garbage.
	Unavailable Kind = iota
	// Poor analyses carry no product, company or entity names.
	Poor
	// Rich analyses name at least one product, company or specific entity.
	Rich
)

func (k Kind) String() string {
	switch k {
	case Rich:
		return "rich"
	case Poor:
		return "poor"
	default:
		return "unavailable"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "rich":
		*k = Rich
	case "poor":
		*k = Poor
	case "unavailable":
		*k = Unavailable
	default:
		return fmt.Errorf("unknown analysis kind %q", text)
	}
	return nil
}

type Analysis struct {
	Kind             Kind     `json:"kind"`
	ExactEvent       string   `json:"exactEvent"`
	ProductNames     []string `json:"productNames"`
	CompanyNames     []string `json:"companyNames"`
	SpecificEntities []string `json:"specificEntities"`
	Dates            []string `json:"dates"`
	SearchTerms      []string `json:"searchTerms"`
}

// NewAnalysis builds an analysis from extracted fields, dropping blank and
// duplicate terms and deriving the Kind.
func NewAnalysis(exactEvent string, products, companies, entities, dates, searchTerms []string) Analysis {
	a := Analysis{
		ExactEvent:       strings.TrimSpace(exactEvent),
		ProductNames:     cleanTerms(products),
		CompanyNames:     cleanTerms(companies),
		SpecificEntities: cleanTerms(entities),
		Dates:            cleanTerms(dates),
		SearchTerms:      cleanTerms(searchTerms),
	}

	return a.classified()
}

// classified derives Kind from the term lists. Analyses with no terms keep
// their Kind.
func (a Analysis) classified() Analysis {
	if a.IsEmpty() {
		return a
	}
	a.Kind = Poor
	if a.hasSpecificEntities() {
		a.Kind = Rich
	}
	return a
}

// UnavailableAnalysis stands in for a failed or unparsable extraction.
func UnavailableAnalysis() Analysis {
	return Analysis{Kind: Unavailable}
}

// IsEmpty reports whether none of the five term lists has content.
func (a Analysis) IsEmpty() bool {
	return len(a.ProductNames) == 0 && len(a.CompanyNames) == 0 &&
		len(a.SpecificEntities) == 0 && len(a.Dates) == 0 && len(a.SearchTerms) == 0
}

// Query is the text used to search for related coverage: the exact event, or
// the first three search terms.
func (a Analysis) Query() string {
	if a.ExactEvent != "" {
		return a.ExactEvent
	}
	return strings.Join(a.SearchTerms[:min(3, len(a.SearchTerms))], " ")
}

func (a Analysis) hasSpecificEntities() bool {
	return len(a.ProductNames) > 0 || len(a.CompanyNames) > 0 || len(a.SpecificEntities) > 0
}

const (
	fallbackMinWordLength = 4
	fallbackMaxTerms      = 5
)

// FallbackAnalysis derives search terms from the seed title: unique lowercase
// words longer than three characters, at most five, with the title itself as
// the exact event.
func FallbackAnalysis(title string) Analysis {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if utf8.RuneCountInString(word) < fallbackMinWordLength || slices.Contains(terms, word) {
			continue
		}
		terms = append(terms, word)
		if len(terms) == fallbackMaxTerms {
			break
		}
	}

	return Analysis{
		Kind:        Poor,
		ExactEvent:  strings.TrimSpace(title),
		SearchTerms: terms,
	}
}

func cleanTerms(terms []string) []string {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || slices.ContainsFunc(cleaned, func(existing string) bool {
			return strings.EqualFold(existing, term)
		}) {
			continue
		}
		cleaned = append(cleaned, term)
	}
	return cleaned
}
