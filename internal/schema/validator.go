// Package schema validates generative output against the shapes the pipeline
// depends on: intelligence grids (2 themes, 2 anomalies, 1 production mood),
// assembly output, and the smaller deep-dive payloads. Violating output is
// rejected with field-level detail, never truncated or padded into shape.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pivotnote/internal/core"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ExtractJSON pulls the JSON object out of free-form model text, tolerating
// markdown code fences and surrounding prose.
func ExtractJSON(text string) ([]byte, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty text", ErrMalformedOutput)
	}

	if idx := strings.Index(clean, "```json"); idx != -1 {
		clean = clean[idx+len("```json"):]
		if end := strings.Index(clean, "```"); end != -1 {
			clean = clean[:end]
		}
	} else if idx := strings.Index(clean, "```"); idx != -1 {
		clean = clean[idx+3:]
		if end := strings.Index(clean, "```"); end != -1 {
			clean = clean[:end]
		}
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	candidate := []byte(clean[start : end+1])

	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: object does not parse", ErrMalformedOutput)
	}
	return candidate, nil
}

// AnalysisResult is the validated outcome of one combined analysis call.
type AnalysisResult struct {
	ExecutiveSummary string
	Grids            map[core.Region]core.IntelligenceGrid
}

type analysisEnvelope struct {
	ExecutiveSummary string       `json:"executive_summary"`
	India            regionalIntel `json:"india_intelligence"`
	USA              regionalIntel `json:"usa_intelligence"`
}

type regionalIntel struct {
	WeatherGrid    []core.ThemeSlot    `json:"weather_grid"`
	Anomalies      []core.AnomalySlot  `json:"anomalies"`
	ProductionMood core.ProductionMood `json:"production_mood"`
}

// ParseAnalysis extracts, parses, and shape-validates a combined two-region
// analysis response. Both regions must validate for the result to be usable.
func ParseAnalysis(text, analysisDate string) (*AnalysisResult, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var env analysisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(env.India.WeatherGrid) == 0 && len(env.USA.WeatherGrid) == 0 {
		return nil, violation("", "india_intelligence/usa_intelligence", 0, "both regional grids are missing")
	}

	result := &AnalysisResult{
		ExecutiveSummary: strings.TrimSpace(env.ExecutiveSummary),
		Grids:            make(map[core.Region]core.IntelligenceGrid, 2),
	}
	for region, intel := range map[core.Region]regionalIntel{
		core.RegionIndia: env.India,
		core.RegionUSA:   env.USA,
	} {
		grid := core.IntelligenceGrid{
			Region:         region,
			AnalysisDate:   analysisDate,
			Themes:         intel.WeatherGrid,
			Anomalies:      intel.Anomalies,
			ProductionMood: intel.ProductionMood,
		}
		if err := ValidateGrid(grid); err != nil {
			return nil, err
		}
		result.Grids[region] = grid
	}
	return result, nil
}

// ValidateGrid checks the fixed grid shape: exactly 2 theme slots
// numbered 1 and 2, exactly 2 anomalies ranked 1 and 2, a complete production
// mood, and no empty free-text fields.
func ValidateGrid(grid core.IntelligenceGrid) error {
	region := string(grid.Region)

	if n := len(grid.Themes); n != 2 {
		return violation(region, "weather_grid", 0, "expected exactly 2 theme slots, got %d", n)
	}
	seenSlots := map[int]bool{}
	for i, theme := range grid.Themes {
		field := fmt.Sprintf("weather_grid[%d]", i)
		if theme.Slot != 1 && theme.Slot != 2 {
			return violation(region, field+".slot", theme.Slot, "slot must be 1 or 2")
		}
		if seenSlots[theme.Slot] {
			return violation(region, field+".slot", theme.Slot, "duplicate slot")
		}
		seenSlots[theme.Slot] = true

		for name, value := range map[string]string{
			".category":     theme.Category,
			".theme":        theme.Theme,
			".mood":         theme.Mood,
			".data_signal":  theme.DataSignal,
			".context":      theme.Context,
			".deep_why":     theme.DeepWhy,
			".big_question": theme.BigQuestion,
		} {
			if strings.TrimSpace(value) == "" {
				return violation(region, field+name, theme.Slot, "required field is empty")
			}
		}
		if len(theme.Keywords) == 0 {
			return violation(region, field+".keywords", theme.Slot, "at least one keyword is required")
		}
	}

	if n := len(grid.Anomalies); n != 2 {
		return violation(region, "anomalies", 0, "expected exactly 2 anomalies, got %d", n)
	}
	seenRanks := map[int]bool{}
	for i, anomaly := range grid.Anomalies {
		field := fmt.Sprintf("anomalies[%d]", i)
		if anomaly.Rank != 1 && anomaly.Rank != 2 {
			return violation(region, field+".rank", anomaly.Rank, "rank must be 1 or 2")
		}
		if seenRanks[anomaly.Rank] {
			return violation(region, field+".rank", anomaly.Rank, "duplicate rank")
		}
		seenRanks[anomaly.Rank] = true

		for name, value := range map[string]string{
			".keyword":      anomaly.Keyword,
			".velocity":     anomaly.Velocity,
			".explanation":  anomaly.Explanation,
			".big_question": anomaly.BigQuestion,
		} {
			if strings.TrimSpace(value) == "" {
				return violation(region, field+name, anomaly.Rank, "required field is empty")
			}
		}
	}

	mood := grid.ProductionMood
	if mood.OverallSentiment < -1.0 || mood.OverallSentiment > 1.0 {
		return violation(region, "production_mood.overall_sentiment", 0, "must be within [-1, 1], got %v", mood.OverallSentiment)
	}
	if !hexColorPattern.MatchString(mood.VibeColorHex) {
		return violation(region, "production_mood.vibe_color_hex", 0, "must be a #RRGGBB hex color, got %q", mood.VibeColorHex)
	}
	if strings.TrimSpace(mood.VocalTone) == "" {
		return violation(region, "production_mood.vocal_tone", 0, "required field is empty")
	}
	if strings.TrimSpace(mood.VisualBackgroundPrompt) == "" {
		return violation(region, "production_mood.visual_background_prompt", 0, "required field is empty")
	}

	return nil
}

// PrimaryAnomaly returns the rank-1 anomaly, enforcing the outlier policy:
// missing rank 1, or two anomalies claiming the same velocity metric with
// ambiguous ranking, is an error rather than a silent fallback to rank 2.
func PrimaryAnomaly(grid core.IntelligenceGrid) (*core.AnomalySlot, error) {
	primary := grid.Anomaly(1)
	if primary == nil {
		return nil, ErrMissingPrimaryAnomaly
	}
	if secondary := grid.Anomaly(2); secondary != nil {
		if strings.EqualFold(strings.TrimSpace(primary.Velocity), strings.TrimSpace(secondary.Velocity)) &&
			primary.Velocity != "" {
			return nil, fmt.Errorf("%w: anomalies tied on velocity %q", ErrMissingPrimaryAnomaly, primary.Velocity)
		}
	}
	return primary, nil
}

// AssemblyOutput is the parsed, shape-checked result of one assembly call.
type AssemblyOutput struct {
	Metadata      core.YoutubeMetadata `json:"youtube_metadata"`
	Assembly      core.ScriptAssembly  `json:"script_assembly"`
	VisualPrompts core.VisualPrompts   `json:"visual_prompts"`
}

// ParseAssembly extracts and validates a daily assembly response: five
// non-empty script sections plus fully-populated metadata.
func ParseAssembly(text string) (*AssemblyOutput, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var out AssemblyOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for name, value := range map[string]string{
		"script_assembly.intro":     out.Assembly.Intro,
		"script_assembly.segment_1": out.Assembly.Segment1,
		"script_assembly.segment_2": out.Assembly.Segment2,
		"script_assembly.outlier":   out.Assembly.Outlier,
		"script_assembly.outro":     out.Assembly.Outro,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, violation("", name, 0, "script section is empty")
		}
	}
	if err := validateMetadata(out.Metadata, "youtube_metadata"); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateMetadata(m core.YoutubeMetadata, prefix string) error {
	if strings.TrimSpace(m.Title) == "" {
		return violation("", prefix+".title", 0, "required field is empty")
	}
	if strings.TrimSpace(m.Description) == "" {
		return violation("", prefix+".description", 0, "required field is empty")
	}
	if len(m.Hashtags) == 0 {
		return violation("", prefix+".hashtags", 0, "at least one hashtag is required")
	}
	return nil
}

// ParseDeepDiveResearch extracts and validates a strategic-clash research
// payload.
func ParseDeepDiveResearch(text string) (*core.DeepDiveResearch, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var research core.DeepDiveResearch
	if err := json.Unmarshal(raw, &research); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for name, value := range map[string]string{
		"keyword":                      research.Keyword,
		"simple_clash":                 research.SimpleClash,
		"lead_metric":                  research.LeadMetric,
		"strategic_clash.side_a_logic": research.Clash.SideALogic,
		"strategic_clash.side_b_fear":  research.Clash.SideBFear,
		"strategic_clash.the_deep_why": research.Clash.TheDeepWhy,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, violation("", name, 0, "required field is empty")
		}
	}
	if len(research.Sources) == 0 {
		return nil, violation("", "sources", 0, "at least one source is required")
	}
	return &research, nil
}

// DeepDiveScriptOutput is the parsed result of a deep-dive script call: one
// flowing script, metadata, and per-section visual prompts.
type DeepDiveScriptOutput struct {
	Metadata      core.YoutubeMetadata `json:"youtube_metadata"`
	AudioScript   string               `json:"audio_script"`
	VisualPrompts core.VisualPrompts   `json:"visual_prompts"`
}

// ParseDeepDiveScript extracts and validates a deep-dive script response.
func ParseDeepDiveScript(text string) (*DeepDiveScriptOutput, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var out DeepDiveScriptOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(out.AudioScript) == "" {
		return nil, violation("", "audio_script", 0, "script is empty")
	}
	if err := validateMetadata(out.Metadata, "youtube_metadata"); err != nil {
		return nil, err
	}
	return &out, nil
}
