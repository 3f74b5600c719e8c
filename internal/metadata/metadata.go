// Package metadata derives publishing metadata from assembled scripts. The
// extractor is pure: it never calls the provider, only normalizes what the
// assembly call produced against the configured bounds.
package metadata

import (
	"fmt"
	"strings"

	"pivotnote/internal/core"
	"pivotnote/internal/schema"
)

const (
	// Hook lengths, in words. The daily hook is the verbatim first 10 words
	// of the script; the deep dive hook runs longer, 15-20 words.
	dailyHookWords       = 10
	deepDiveHookMinWords = 15
	deepDiveHookMaxWords = 20
)

// Extractor normalizes generated metadata against the configured bounds.
type Extractor struct {
	hashtagCount int
	titleMaxLen  int
}

// NewExtractor creates an extractor with the given hashtag count and title
// length bounds.
func NewExtractor(hashtagCount, titleMaxLen int) *Extractor {
	if hashtagCount <= 0 {
		hashtagCount = 3
	}
	if titleMaxLen <= 0 {
		titleMaxLen = 60
	}
	return &Extractor{hashtagCount: hashtagCount, titleMaxLen: titleMaxLen}
}

// ExtractDaily finalizes daily metadata from an assembly result. The hook is
// replaced with the verbatim script prefix regardless of what the model
// claimed, the title is clamped to the length bound, and the hashtag list is
// normalized to exactly the configured count.
func (e *Extractor) ExtractDaily(out *schema.AssemblyOutput, region core.Region) (core.YoutubeMetadata, error) {
	script := out.Assembly.FullScript()
	if strings.TrimSpace(script) == "" {
		return core.YoutubeMetadata{}, fmt.Errorf("cannot extract metadata from an empty script")
	}

	meta := out.Metadata
	meta.Hook = HookFromScript(script, dailyHookWords)
	meta.Title = ClampTitle(meta.Title, e.titleMaxLen)
	meta.Hashtags = e.normalizeHashtags(meta.Hashtags, region)
	if strings.TrimSpace(meta.PinnedComment) == "" {
		meta.PinnedComment = defaultPinnedComment(region)
	}
	if strings.TrimSpace(meta.ThumbnailPrompt) == "" {
		meta.ThumbnailPrompt = defaultThumbnailPrompt(meta.Title)
	}
	return meta, nil
}

// ExtractDeepDive finalizes deep-dive metadata. The hook is the verbatim
// opening of the flowing script, 15-20 words, cut at a sentence boundary when
// one falls inside the window.
func (e *Extractor) ExtractDeepDive(out *schema.DeepDiveScriptOutput, keyword string, region core.Region) (core.YoutubeMetadata, error) {
	if strings.TrimSpace(out.AudioScript) == "" {
		return core.YoutubeMetadata{}, fmt.Errorf("cannot extract metadata from an empty script")
	}

	meta := out.Metadata
	meta.Hook = DeepDiveHook(out.AudioScript)
	meta.Title = ClampTitle(meta.Title, e.titleMaxLen)
	meta.Hashtags = e.normalizeHashtags(meta.Hashtags, region)
	if keyword != "" {
		meta.Hashtags = ensureKeywordTag(meta.Hashtags, keyword, e.hashtagCount)
	}
	if strings.TrimSpace(meta.PinnedComment) == "" {
		meta.PinnedComment = fmt.Sprintf("Is %s a turning point or just noise? Tell us below.", keyword)
	}
	if strings.TrimSpace(meta.ThumbnailPrompt) == "" {
		meta.ThumbnailPrompt = defaultThumbnailPrompt(meta.Title)
	}
	return meta, nil
}

// HookFromScript returns the verbatim first n words of the script.
func HookFromScript(script string, n int) string {
	words := strings.Fields(script)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// DeepDiveHook returns the verbatim opening of the script, preferring a
// sentence boundary between 15 and 20 words.
func DeepDiveHook(script string) string {
	words := strings.Fields(script)
	limit := deepDiveHookMaxWords
	if len(words) < limit {
		limit = len(words)
	}
	for i := deepDiveHookMinWords; i <= limit; i++ {
		w := words[i-1]
		if strings.HasSuffix(w, ".") || strings.HasSuffix(w, "?") || strings.HasSuffix(w, "!") {
			return strings.Join(words[:i], " ")
		}
	}
	return strings.Join(words[:limit], " ")
}

// ClampTitle truncates a title to max characters, cutting at the last word
// boundary that fits rather than mid-word.
func ClampTitle(title string, max int) string {
	title = strings.TrimSpace(title)
	if len(title) <= max {
		return title
	}
	cut := title[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-")
}

// normalizeHashtags dedupes, prefixes, and pads/trims the list to exactly the
// configured count.
func (e *Extractor) normalizeHashtags(tags []string, region core.Region) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, e.hashtagCount)
	for _, tag := range tags {
		tag = canonicalTag(tag)
		if tag == "#" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
		if len(out) == e.hashtagCount {
			return out
		}
	}
	for _, tag := range fallbackTags(region) {
		if len(out) == e.hashtagCount {
			break
		}
		if seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

// ensureKeywordTag guarantees the deep-dive keyword appears as a hashtag,
// evicting the last tag if the list is already full.
func ensureKeywordTag(tags []string, keyword string, count int) []string {
	want := canonicalTag(keyword)
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return tags
		}
	}
	if len(tags) >= count && len(tags) > 0 {
		tags = tags[:len(tags)-1]
	}
	return append([]string{want}, tags...)
}

func canonicalTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "#")
	tag = strings.ReplaceAll(tag, " ", "")
	return "#" + tag
}

func fallbackTags(region core.Region) []string {
	switch region {
	case core.RegionIndia:
		return []string{"#TrendingIndia", "#PivotNote", "#Shorts"}
	case core.RegionUSA:
		return []string{"#TrendingUSA", "#PivotNote", "#Shorts"}
	default:
		return []string{"#Trending", "#PivotNote", "#Shorts"}
	}
}

func defaultPinnedComment(region core.Region) string {
	return fmt.Sprintf("Which of today's %s trends surprised you most? Drop it below.", region.Display())
}

func defaultThumbnailPrompt(title string) string {
	return fmt.Sprintf("Bold vertical thumbnail, high contrast, large readable text: %q", title)
}
