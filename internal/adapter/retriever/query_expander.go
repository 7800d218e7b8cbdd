// Package retriever holds query-side helpers for the retrieval assembler.
package retriever

import (
	"sort"
	"strings"
)

// MaxQueryVariants caps the total number of query strings per question,
// the original included.
const MaxQueryVariants = 8

// Expander derives alternate query strings from a question using a fixed
// keyword -> rephrasing table. Document prose often names a concept
// differently than the question does ("cost" vs the section heading
// "Financial Benefits"), and the extra variants pull in the sections a
// single embedding of the question would miss.
type Expander struct {
	mappings map[string][]string
}

// defaultMappings covers the recurring vocabulary of structured business
// and project documents. Keys are matched as substrings of the lower-cased
// question.
var defaultMappings = map[string][]string{
	"cost":        {"total implementation cost", "cost allocation", "financial benefits"},
	"budget":      {"cost allocation", "total implementation cost"},
	"timeline":    {"implementation timeline", "phase schedule"},
	"challenge":   {"implementation challenges and resolutions"},
	"resolution":  {"implementation challenges and resolutions", "resolution strategy"},
	"technology":  {"technology stack", "technology stack and cost allocation"},
	"performance": {"monthly performance trajectory", "performance analysis"},
	"financial":   {"financial benefits realization", "financial benefits"},
	"migration":   {"data migration", "migration success rate"},
	"data quality": {
		"legacy data quality",
		"data quality activities",
	},
	"lessons":  {"lessons learned"},
	"training": {"staff training", "training completion"},
	"risk":     {"risk register", "risk mitigation"},
	"vendor":   {"vendor selection", "vendor contracts"},
}

// NewExpander uses the built-in rephrasing table.
func NewExpander() *Expander {
	return &Expander{mappings: defaultMappings}
}

// NewExpanderWithMappings merges extra mappings over the built-in table.
func NewExpanderWithMappings(extra map[string][]string) *Expander {
	mappings := make(map[string][]string, len(defaultMappings)+len(extra))
	for k, v := range defaultMappings {
		mappings[k] = v
	}
	for k, v := range extra {
		mappings[strings.ToLower(k)] = v
	}
	return &Expander{mappings: mappings}
}

// Expand returns the question followed by its rephrasings, deduplicated
// case-insensitively and capped at MaxQueryVariants. The original question
// is always first so rank order favors the user's own wording.
func (e *Expander) Expand(question string) []string {
	variants := []string{question}
	lower := strings.ToLower(question)
	keywords := make([]string, 0, len(e.mappings))
	for k := range e.mappings {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords) // fixed sequence, so variant order is reproducible
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			variants = append(variants, e.mappings[keyword]...)
		}
	}

	seen := make(map[string]struct{}, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, v)
	}
	if len(unique) > MaxQueryVariants {
		unique = unique[:MaxQueryVariants]
	}
	return unique
}
