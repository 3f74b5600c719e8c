// Package intelligence drives the generative call that turns a day's trend
// signals into per-region intelligence grids. The generator owns the call and
// its transport-level retry policy only; shape validation is delegated to the
// schema package and happens on every path, live or manual.
package intelligence

import (
	"context"
	"fmt"

	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/logger"
	"pivotnote/internal/prompts"
	"pivotnote/internal/schema"
	"pivotnote/internal/trends"
)

// TextGenerator is the narrow slice of the LLM client the generator needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, tier config.ModelTier) (string, error)
}

// Generator produces validated intelligence grids for both regions.
type Generator struct {
	llm     TextGenerator
	prompts *prompts.Store
	tier    config.ModelTier
}

// NewGenerator creates a grid generator using the given text generator,
// prompt store, and model tier.
func NewGenerator(llm TextGenerator, store *prompts.Store, tier config.ModelTier) *Generator {
	return &Generator{llm: llm, prompts: store, tier: tier}
}

// Prompt renders the analysis prompt for the given signals without calling
// the provider. Used by the manual workflow: the operator copies the rendered
// prompt, runs it externally, and pastes the JSON back through ParseManual.
func (g *Generator) Prompt(signals []core.TrendSignal, date string) (string, error) {
	if len(signals) == 0 {
		return "", fmt.Errorf("cannot render analysis prompt without trend signals")
	}
	sorted := make([]core.TrendSignal, len(signals))
	copy(sorted, signals)
	trends.SortByVolume(sorted)

	summary := trends.PrepareSummary(sorted, date)
	return g.prompts.RenderAnalysis(summary)
}

// Generate runs one analysis call over the full signal batch and returns the
// validated grids for both regions plus the executive summary. Transient
// provider errors are retried inside the client; quota exhaustion propagates
// unwrapped so the caller can switch to the manual paste-in workflow.
func (g *Generator) Generate(ctx context.Context, signals []core.TrendSignal, date string) (*schema.AnalysisResult, error) {
	prompt, err := g.Prompt(signals, date)
	if err != nil {
		return nil, err
	}

	logger.Info("generating intelligence grids", "signals", len(signals), "date", date, "tier", string(g.tier))
	text, err := g.llm.Generate(ctx, prompt, g.tier)
	if err != nil {
		return nil, err
	}

	result, err := schema.ParseAnalysis(text, date)
	if err != nil {
		return nil, err
	}
	logger.Info("intelligence grids validated", "date", date, "regions", len(result.Grids))
	return result, nil
}

// ParseManual runs hand-pasted JSON through the same extraction and
// validation path as a live response.
func (g *Generator) ParseManual(text, date string) (*schema.AnalysisResult, error) {
	return schema.ParseAnalysis(text, date)
}
