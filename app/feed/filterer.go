package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var filterFields = []string{"title", "description", "content", "authors", "link", "categories"}

// Filterer applies a topic's include/exclude rules to freshly parsed items.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []Item, topicConfig *Config) []Item {
	if len(topicConfig.Filters) == 0 {
		return items
	}

	// A Caser is stateful, so each run gets its own.
	caser := cases.Fold()

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		item.IsFiltered, item.FilterReason = f.applyFilters(caser, item, topicConfig.Filters)
		filtered = append(filtered, item)
	}

	return filtered
}

// Visible drops the items Run marked as filtered.
func (f *Filterer) Visible(items []Item) []Item {
	visible := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.IsFiltered {
			visible = append(visible, item)
		}
	}
	return visible
}

func (f *Filterer) applyFilters(caser cases.Caser, item Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := caser.String(f.getFieldValue(item, filter.Field))

		for _, exclude := range filter.Excludes {
			if strings.Contains(value, caser.String(exclude)) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}

		matched := false
		for _, include := range filter.Includes {
			if strings.Contains(value, caser.String(include)) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
		}
	}

	return false, ""
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
