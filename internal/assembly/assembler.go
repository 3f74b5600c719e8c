// Package assembly converts a validated intelligence grid and production mood
// into the timed, word-budgeted narration script. Each section has a duration
// share of the 60-second format and a word budget proportional to it; output
// outside the ±20% tolerance band earns exactly one regeneration attempt with
// a tightened word-count instruction before failing.
package assembly

import (
	"context"
	"fmt"
	"strings"

	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/intelligence"
	"pivotnote/internal/logger"
	"pivotnote/internal/prompts"
	"pivotnote/internal/schema"
)

// Section budgets for the daily 60-second format. The bridge (7s) is a
// produced transition, not narrated text, so it carries no word budget.
var dailyBudgets = []SectionBudget{
	{Name: "intro", Seconds: 4, TargetWords: 10},
	{Name: "segment_1", Seconds: 15, TargetWords: 34},
	{Name: "segment_2", Seconds: 15, TargetWords: 34},
	{Name: "outlier", Seconds: 13, TargetWords: 27},
	{Name: "outro", Seconds: 6, TargetWords: 10},
}

const (
	tolerance = 0.20

	dailyTotalTarget = 150

	deepDiveMinWords = 120
	deepDiveMaxWords = 130
)

// SectionBudget is one section's duration share and word target.
type SectionBudget struct {
	Name        string
	Seconds     int
	TargetWords int
}

// Band returns the acceptable word-count range for the section.
func (b SectionBudget) Band() (int, int) {
	min := int(float64(b.TargetWords) * (1 - tolerance))
	max := int(float64(b.TargetWords)*(1+tolerance) + 0.5)
	return min, max
}

// BudgetViolation records one section falling outside its tolerance band.
type BudgetViolation struct {
	Section string
	Words   int
	Min     int
	Max     int
}

func (v BudgetViolation) String() string {
	return fmt.Sprintf("%s: %d words (allowed %d-%d)", v.Section, v.Words, v.Min, v.Max)
}

// Error is returned when assembled output still violates its word/time
// budgets after the single regeneration attempt.
type Error struct {
	Violations []BudgetViolation
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "assembly outside word budget after retry: " + strings.Join(parts, "; ")
}

// Result bundles everything one successful assembly call produces.
type Result struct {
	Assembly      core.ScriptAssembly
	Metadata      core.YoutubeMetadata
	VisualPrompts core.VisualPrompts
	FullScript    string
}

// Assembler turns grids into scripts through the region assembly prompts.
type Assembler struct {
	llm     intelligence.TextGenerator
	prompts *prompts.Store
	tier    config.ModelTier
}

// NewAssembler creates a script assembler.
func NewAssembler(llm intelligence.TextGenerator, store *prompts.Store, tier config.ModelTier) *Assembler {
	return &Assembler{llm: llm, prompts: store, tier: tier}
}

// Assemble produces the 60-second script for one region. The outlier section
// is built from the rank-1 anomaly only; a missing or ambiguous primary
// anomaly fails before any call is made.
func (a *Assembler) Assemble(ctx context.Context, region core.Region, grid core.IntelligenceGrid, mood core.ProductionMood) (*Result, error) {
	if _, err := schema.PrimaryAnomaly(grid); err != nil {
		return nil, err
	}

	out, violations, err := a.attempt(ctx, region, grid, mood, "")
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		note := tightenNote(violations)
		logger.Warn("assembly outside budget, regenerating once", "region", string(region), "violations", len(violations))
		out, violations, err = a.attempt(ctx, region, grid, mood, note)
		if err != nil {
			return nil, err
		}
		if len(violations) > 0 {
			return nil, &Error{Violations: violations}
		}
	}

	return &Result{
		Assembly:      out.Assembly,
		Metadata:      out.Metadata,
		VisualPrompts: out.VisualPrompts,
		FullScript:    out.Assembly.FullScript(),
	}, nil
}

func (a *Assembler) attempt(ctx context.Context, region core.Region, grid core.IntelligenceGrid, mood core.ProductionMood, wordNote string) (*schema.AssemblyOutput, []BudgetViolation, error) {
	prompt, err := a.prompts.RenderAssembly(region, prompts.AssemblyInput{Grid: grid, Mood: mood, WordNote: wordNote})
	if err != nil {
		return nil, nil, err
	}

	text, err := a.llm.Generate(ctx, prompt, a.tier)
	if err != nil {
		return nil, nil, err
	}

	out, err := schema.ParseAssembly(text)
	if err != nil {
		return nil, nil, err
	}
	return out, CheckBudgets(out.Assembly), nil
}

// CheckBudgets verifies each section's word count against its band, the
// question endings on the theme and outlier sections, and the overall total.
func CheckBudgets(asm core.ScriptAssembly) []BudgetViolation {
	sections := map[string]string{
		"intro":     asm.Intro,
		"segment_1": asm.Segment1,
		"segment_2": asm.Segment2,
		"outlier":   asm.Outlier,
		"outro":     asm.Outro,
	}

	var violations []BudgetViolation
	total := 0
	for _, budget := range dailyBudgets {
		words := WordCount(sections[budget.Name])
		total += words
		min, max := budget.Band()
		if words < min || words > max {
			violations = append(violations, BudgetViolation{Section: budget.Name, Words: words, Min: min, Max: max})
		}
	}

	totalMin := int(float64(dailyTotalTarget) * (1 - tolerance))
	totalMaxF := float64(dailyTotalTarget)*(1+tolerance) + 0.5
	totalMax := int(totalMaxF)
	if total < totalMin || total > totalMax {
		violations = append(violations, BudgetViolation{Section: "total", Words: total, Min: totalMin, Max: totalMax})
	}

	// The narrative format closes the theme and outlier sections on a
	// rhetorical question.
	for _, name := range []string{"segment_1", "segment_2", "outlier"} {
		if !EndsWithQuestion(sections[name]) {
			violations = append(violations, BudgetViolation{Section: name + " (question ending)", Words: WordCount(sections[name])})
		}
	}
	return violations
}

// AssembleDeepDive produces the single flowing 120-130 word deep-dive script.
// The tolerance-and-retry policy applies to the whole script.
func (a *Assembler) AssembleDeepDive(ctx context.Context, research core.DeepDiveResearch) (*schema.DeepDiveScriptOutput, error) {
	out, words, err := a.attemptDeepDive(ctx, research, "")
	if err != nil {
		return nil, err
	}

	min := int(float64(deepDiveMinWords) * (1 - tolerance))
	maxF := float64(deepDiveMaxWords)*(1+tolerance) + 0.5
	max := int(maxF)
	if words < min || words > max {
		note := fmt.Sprintf("Your previous script was %d words. It MUST be between %d and %d words. Count every word before answering.",
			words, deepDiveMinWords, deepDiveMaxWords)
		logger.Warn("deep dive script outside budget, regenerating once", "words", words)
		out, words, err = a.attemptDeepDive(ctx, research, note)
		if err != nil {
			return nil, err
		}
		if words < min || words > max {
			return nil, &Error{Violations: []BudgetViolation{{Section: "audio_script", Words: words, Min: min, Max: max}}}
		}
	}
	return out, nil
}

func (a *Assembler) attemptDeepDive(ctx context.Context, research core.DeepDiveResearch, wordNote string) (*schema.DeepDiveScriptOutput, int, error) {
	prompt, err := a.prompts.RenderDeepDiveScript(research, wordNote)
	if err != nil {
		return nil, 0, err
	}

	text, err := a.llm.Generate(ctx, prompt, a.tier)
	if err != nil {
		return nil, 0, err
	}

	out, err := schema.ParseDeepDiveScript(text)
	if err != nil {
		return nil, 0, err
	}
	return out, WordCount(out.AudioScript), nil
}

func tightenNote(violations []BudgetViolation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Min == 0 && v.Max == 0 {
			parts = append(parts, fmt.Sprintf("%s must end on a rhetorical question", v.Section))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s was %d words, must be %d-%d", v.Section, v.Words, v.Min, v.Max))
	}
	return "Fix these violations and count words per section: " + strings.Join(parts, "; ")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// EndsWithQuestion reports whether the section's final sentence is a
// question. A trailing call-to-action after the question is allowed.
func EndsWithQuestion(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	// e.g. "Just for today, or here to stay? Comment below."
	if idx := strings.LastIndex(trimmed, "?"); idx != -1 {
		tail := strings.TrimSpace(trimmed[idx+1:])
		return WordCount(tail) <= 3
	}
	return false
}
