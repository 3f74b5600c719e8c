// Package entities derives named entities from a day's trend signals so they
// can be tracked across dates and regions.
package entities

import (
	"sort"
	"strings"

	"pivotnote/internal/core"
)

// Entity type labels, in order of inference priority.
const (
	TypeHashtag       = "hashtag"
	TypePerson        = "person"
	TypePolitical     = "political"
	TypeBusiness      = "business"
	TypeEntertainment = "entertainment"
	TypeSports        = "sports"
	TypeKeyword       = "keyword"
)

var categoryTypes = map[string]string{
	"politics":      TypePolitical,
	"political":     TypePolitical,
	"government":    TypePolitical,
	"business":      TypeBusiness,
	"finance":       TypeBusiness,
	"economy":       TypeBusiness,
	"technology":    TypeBusiness,
	"entertainment": TypeEntertainment,
	"music":         TypeEntertainment,
	"movies":        TypeEntertainment,
	"film":          TypeEntertainment,
	"sports":        TypeSports,
	"cricket":       TypeSports,
	"football":      TypeSports,
}

// ExtractFromSignals groups signals by normalized name and aggregates each
// group into one entity: summed mentions, the regions it appeared in, its
// dominant sentiment, and an inferred type.
func ExtractFromSignals(signals []core.TrendSignal) []core.Entity {
	type bucket struct {
		name       string
		signals    []core.TrendSignal
		keywords   map[string]bool
		regions    map[string]bool
		sentiments map[string]int64
		mentions   int64
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0, len(signals))
	for _, sig := range signals {
		name := normalizeName(sig.Keyword)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				name:       name,
				keywords:   make(map[string]bool),
				regions:    make(map[string]bool),
				sentiments: make(map[string]int64),
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.signals = append(b.signals, sig)
		b.keywords[sig.Keyword] = true
		b.regions[string(sig.Region)] = true
		if sig.Sentiment != "" {
			b.sentiments[sig.Sentiment] += weight(sig)
		}
		b.mentions += weight(sig)
	}

	out := make([]core.Entity, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		first := b.signals[0]
		out = append(out, core.Entity{
			Type:          inferType(first),
			Name:          b.name,
			Keywords:      sortedKeys(b.keywords),
			TotalMentions: b.mentions,
			Regions:       sortedKeys(b.regions),
			Context:       first.Context,
			Sentiment:     dominant(b.sentiments),
			Role:          first.Category,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalMentions > out[j].TotalMentions
	})
	return out
}

// weight is the mention contribution of one signal. Volume when present,
// otherwise a single mention so rank-only signals still count.
func weight(sig core.TrendSignal) int64 {
	if sig.Volume > 0 {
		return sig.Volume
	}
	return 1
}

func normalizeName(keyword string) string {
	name := strings.TrimSpace(keyword)
	name = strings.TrimPrefix(name, "#")
	return name
}

// inferType classifies an entity from its keyword shape and signal category.
// Hashtags win outright; a multi-word title-cased keyword reads as a person
// unless the category says otherwise.
func inferType(sig core.TrendSignal) string {
	if strings.HasPrefix(strings.TrimSpace(sig.Keyword), "#") {
		return TypeHashtag
	}
	if t, ok := categoryTypes[strings.ToLower(strings.TrimSpace(sig.Category))]; ok {
		return t
	}
	if looksLikePerson(sig.Keyword) {
		return TypePerson
	}
	return TypeKeyword
}

func looksLikePerson(keyword string) bool {
	words := strings.Fields(keyword)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func dominant(counts map[string]int64) string {
	best := ""
	var bestCount int64 = -1
	for _, sentiment := range sortedKeys(boolKeys(counts)) {
		if counts[sentiment] > bestCount {
			best = sentiment
			bestCount = counts[sentiment]
		}
	}
	return best
}

func boolKeys(m map[string]int64) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
