package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"pivotnote/internal/core"
	"pivotnote/internal/trends"
)

// AssemblyInput is the full parameter set for rendering a region assembly
// prompt. Both fields are required; the render rejects a zero grid or mood
// instead of silently defaulting. (The positional two-argument contract this
// replaces was the most common integration fault in the previous system.)
type AssemblyInput struct {
	Grid core.IntelligenceGrid
	Mood core.ProductionMood
	// WordNote, when set, carries the tightened word-count instruction used
	// on the single regeneration attempt.
	WordNote string
}

// RenderAnalysis renders the combined two-region grid analysis prompt.
func (s *Store) RenderAnalysis(summary trends.DataSummary) (string, error) {
	if summary.Date == "" {
		return "", fmt.Errorf("analysis prompt: data summary date is required")
	}
	return s.render(TemplateAnalysis, summary)
}

// RenderAssembly renders the region-specific script assembly prompt.
func (s *Store) RenderAssembly(region core.Region, input AssemblyInput) (string, error) {
	if !region.Valid() {
		return "", fmt.Errorf("assembly prompt: invalid region %q", region)
	}
	if len(input.Grid.Themes) == 0 {
		return "", fmt.Errorf("assembly prompt: intelligence grid is required")
	}
	if input.Mood.VibeColorHex == "" && input.Mood.VocalTone == "" {
		return "", fmt.Errorf("assembly prompt: production mood is required")
	}

	name := TemplateAssemblyIndia
	if region == core.RegionUSA {
		name = TemplateAssemblyUSA
	}

	gridJSON, err := json.MarshalIndent(input.Grid, "", "  ")
	if err != nil {
		return "", fmt.Errorf("assembly prompt: failed to encode grid: %w", err)
	}
	moodJSON, err := json.MarshalIndent(input.Mood, "", "  ")
	if err != nil {
		return "", fmt.Errorf("assembly prompt: failed to encode mood: %w", err)
	}

	tone, emotion := toneDirective(region, input.Mood.OverallSentiment)
	data := map[string]string{
		"RegionName":    region.Display(),
		"GridJSON":      string(gridJSON),
		"MoodJSON":      string(moodJSON),
		"ToneDirective": tone,
		"EmotionTag":    emotion,
		"WordNote":      input.WordNote,
	}
	return s.render(name, data)
}

// toneDirective maps production-mood sentiment to the directive and emotion
// overlay injected into assembly prompts. Thresholds follow the original
// editorial policy: below -0.6 is crisis register, above 0.4 is upbeat.
func toneDirective(region core.Region, sentiment float64) (string, string) {
	if region == core.RegionUSA {
		switch {
		case sentiment < -0.6:
			return "TONE: Urgent, data-driven, and solutions-focused. NO FLUFF.", "[EMOTION: URGENCY/SERIOUSNESS]"
		case sentiment > 0.4:
			return "TONE: Upbeat, forward-looking, and momentum-driven.", "[EMOTION: OPTIMISM/MOMENTUM]"
		default:
			return "TONE: Analytical, skeptical, and data-first. Contrast 'Expected Pattern' vs 'Actual Data'.", "[EMOTION: ANALYTICAL/QUESTIONING]"
		}
	}
	switch {
	case sentiment < -0.6:
		return "TONE: Somber, clinical, and impact-focused. ABSOLUTELY NO SATIRE.", "[EMOTION: GRAVITY/URGENCY]"
	case sentiment > 0.4:
		return "TONE: High-energy, optimistic, and fast-paced.", "[EMOTION: EXCITEMENT/VIBRANCE]"
	default:
		return "TONE: Sharp, satirical, and analytical. Contrast 'The Usual' vs 'The Shocking'.", "[EMOTION: SKEPTICAL/WITTY]"
	}
}

// ResearchInput parameterizes the deep dive research prompt.
type ResearchInput struct {
	Signal core.TrendSignal
}

// RenderDeepDiveResearch renders the strategic-clash research prompt for one
// selected trend signal.
func (s *Store) RenderDeepDiveResearch(input ResearchInput) (string, error) {
	sig := input.Signal
	if sig.Keyword == "" {
		return "", fmt.Errorf("deep dive research prompt: keyword is required")
	}
	if !sig.Region.Valid() {
		return "", fmt.Errorf("deep dive research prompt: invalid region %q", sig.Region)
	}

	data := map[string]string{
		"Keyword":     sig.Keyword,
		"RegionName":  sig.Region.Display(),
		"Context":     sig.Context,
		"WhyTrending": sig.WhyTrending,
		"Volume":      fmt.Sprintf("%d", sig.Volume),
		"Velocity":    sig.Velocity,
		"Sentiment":   sig.Sentiment,
	}
	return s.render(TemplateDeepDiveResearch, data)
}

// RenderDeepDiveScript renders the 120-second script prompt from a research
// payload. WordNote carries the tightened instruction on the retry attempt.
func (s *Store) RenderDeepDiveScript(research core.DeepDiveResearch, wordNote string) (string, error) {
	if research.Keyword == "" {
		return "", fmt.Errorf("deep dive script prompt: research payload is required")
	}

	researchJSON, err := json.MarshalIndent(research, "", "  ")
	if err != nil {
		return "", fmt.Errorf("deep dive script prompt: failed to encode research: %w", err)
	}

	data := map[string]string{
		"Keyword":        research.Keyword,
		"HashtagKeyword": strings.ReplaceAll(strings.TrimPrefix(research.Keyword, "#"), " ", ""),
		"ResearchJSON":   string(researchJSON),
		"WordNote":       wordNote,
	}
	return s.render(TemplateDeepDiveScript, data)
}

func (s *Store) render(name string, data any) (string, error) {
	text, err := s.Get(name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("template %q does not parse: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %q failed to render: %w", name, err)
	}
	return buf.String(), nil
}
