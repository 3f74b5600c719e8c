// Package pipeline orchestrates the daily run: signals in, validated grids,
// assembled scripts, extracted metadata, and one persisted record per publish
// date. The two regions are processed independently; one region failing never
// blocks the other from being persisted as a draft.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pivotnote/internal/assembly"
	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/entities"
	"pivotnote/internal/intelligence"
	"pivotnote/internal/llm"
	"pivotnote/internal/logger"
	"pivotnote/internal/metadata"
	"pivotnote/internal/prompts"
	"pivotnote/internal/schema"
	"pivotnote/internal/store"
)

// Voice synthesizes narration from an assembled script. Optional; a nil
// voice skips synthesis entirely.
type Voice interface {
	Synthesize(ctx context.Context, script string, mood core.ProductionMood) error
}

// Pipeline wires the stages of a daily or deep-dive run together.
type Pipeline struct {
	cfg       *config.Config
	store     *store.Store
	generator *intelligence.Generator
	assembler *assembly.Assembler
	extractor *metadata.Extractor
	prompts   *prompts.Store
	llm       intelligence.TextGenerator
	voice     Voice
}

// New assembles a pipeline from its stages.
func New(cfg *config.Config, st *store.Store, promptStore *prompts.Store, client intelligence.TextGenerator) *Pipeline {
	tier := cfg.Tier()
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		generator: intelligence.NewGenerator(client, promptStore, tier),
		assembler: assembly.NewAssembler(client, promptStore, tier),
		extractor: metadata.NewExtractor(cfg.Metadata.HashtagCount, cfg.Metadata.TitleMaxLen),
		prompts:   promptStore,
		llm:       client,
	}
}

// SetVoice attaches an optional narration synthesizer.
func (p *Pipeline) SetVoice(v Voice) { p.voice = v }

// DailyResult reports what one daily run produced.
type DailyResult struct {
	Record    *core.DailyContentRecord
	Failed    map[core.Region]error
	Completed bool
}

// RunDaily executes the full automatic daily run over the given signals.
// Quota exhaustion is reported as ErrFallbackRequired so the caller can
// switch to the manual workflow; the rendered prompt is available through
// ManualPrompt.
func (p *Pipeline) RunDaily(ctx context.Context, signals []core.TrendSignal, date string) (*DailyResult, error) {
	if err := p.store.InsertTrendSignals(signals); err != nil {
		return nil, err
	}

	analysis, err := p.generator.Generate(ctx, signals, date)
	if err != nil {
		if errors.Is(err, llm.ErrQuotaExhausted) {
			return nil, fmt.Errorf("%w: %v", ErrFallbackRequired, err)
		}
		return nil, err
	}
	return p.completeRun(ctx, analysis, signals, date)
}

// ManualPrompt renders the analysis prompt for the operator to run outside
// the pipeline.
func (p *Pipeline) ManualPrompt(signals []core.TrendSignal, date string) (string, error) {
	return p.generator.Prompt(signals, date)
}

// RunDailyManual resumes a run from operator-pasted analysis JSON. The pasted
// text passes through the same validation as a live response.
func (p *Pipeline) RunDailyManual(ctx context.Context, pasted string, signals []core.TrendSignal, date string) (*DailyResult, error) {
	if err := p.store.InsertTrendSignals(signals); err != nil {
		return nil, err
	}

	analysis, err := p.generator.ParseManual(pasted, date)
	if err != nil {
		return nil, err
	}
	return p.completeRun(ctx, analysis, signals, date)
}

// completeRun drives both regions from validated grids to a persisted record.
func (p *Pipeline) completeRun(ctx context.Context, analysis *schema.AnalysisResult, signals []core.TrendSignal, date string) (*DailyResult, error) {
	record := &core.DailyContentRecord{
		PublishDate:      date,
		Regions:          make(map[core.Region]*core.RegionalContent, len(analysis.Grids)),
		ExecutiveSummary: analysis.ExecutiveSummary,
		Entities:         entities.ExtractFromSignals(signals),
		ProductionStatus: core.StatusDraft,
	}
	failed := make(map[core.Region]error)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for region, grid := range analysis.Grids {
		wg.Add(1)
		go func(region core.Region, grid core.IntelligenceGrid) {
			defer wg.Done()
			content, err := p.buildRegion(ctx, region, grid)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[region] = err
				logger.Error("region assembly failed", err, "region", string(region), "date", date)
				return
			}
			record.Regions[region] = content
		}(region, grid)
	}
	wg.Wait()

	for region, grid := range analysis.Grids {
		if err := p.store.UpsertInsights(grid, analysis.ExecutiveSummary); err != nil {
			return nil, fmt.Errorf("failed to persist %s insights: %w", region, err)
		}
	}
	if err := p.store.InsertEntities(date, record.Entities); err != nil {
		return nil, err
	}
	if err := p.store.UpsertDailyContent(record); err != nil {
		return nil, err
	}

	result := &DailyResult{Record: record, Failed: failed}
	if len(failed) == 0 && len(record.Regions) == len(analysis.Grids) {
		if err := p.store.UpdateProductionStatus(date, core.StatusCompleted); err != nil {
			return nil, err
		}
		record.ProductionStatus = core.StatusCompleted
		result.Completed = true
	}

	if p.voice != nil {
		for region, content := range record.Regions {
			if err := p.voice.Synthesize(ctx, content.Script, content.Grid.ProductionMood); err != nil {
				logger.Warn("voice synthesis failed", "region", string(region), "error", err.Error())
			}
		}
	}

	logger.Info("daily run persisted", "date", date,
		"regions", len(record.Regions), "failed", len(failed), "completed", result.Completed)
	return result, nil
}

func (p *Pipeline) buildRegion(ctx context.Context, region core.Region, grid core.IntelligenceGrid) (*core.RegionalContent, error) {
	asm, err := p.assembler.Assemble(ctx, region, grid, grid.ProductionMood)
	if err != nil {
		return nil, err
	}
	meta, err := p.extractor.ExtractDaily(&schema.AssemblyOutput{
		Metadata:      asm.Metadata,
		Assembly:      asm.Assembly,
		VisualPrompts: asm.VisualPrompts,
	}, region)
	if err != nil {
		return nil, err
	}

	return &core.RegionalContent{
		Script:        asm.FullScript,
		Grid:          grid,
		Assembly:      asm.Assembly,
		VisualPrompts: asm.VisualPrompts,
		Metadata:      meta,
	}, nil
}

// RunDeepDive researches one selected signal and produces a finalized-ready
// record in needs_finetuning status.
func (p *Pipeline) RunDeepDive(ctx context.Context, signal core.TrendSignal) (*core.DeepDiveRecord, error) {
	prompt, err := p.prompts.RenderDeepDiveResearch(prompts.ResearchInput{Signal: signal})
	if err != nil {
		return nil, err
	}

	logger.Info("running deep dive research", "keyword", signal.Keyword, "region", string(signal.Region))
	text, err := p.llm.Generate(ctx, prompt, config.TierQuality)
	if err != nil {
		if errors.Is(err, llm.ErrQuotaExhausted) {
			return nil, fmt.Errorf("%w: %v", ErrFallbackRequired, err)
		}
		return nil, err
	}
	research, err := schema.ParseDeepDiveResearch(text)
	if err != nil {
		return nil, err
	}
	research.Region = signal.Region

	scriptOut, err := p.assembler.AssembleDeepDive(ctx, *research)
	if err != nil {
		return nil, err
	}
	meta, err := p.extractor.ExtractDeepDive(scriptOut, signal.Keyword, signal.Region)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &core.DeepDiveRecord{
		ID:            uuid.NewString(),
		Keyword:       signal.Keyword,
		Region:        signal.Region,
		Platform:      signal.Platform,
		SearchVolume:  signal.Volume,
		Velocity:      signal.Velocity,
		Sentiment:     signal.Sentiment,
		Category:      signal.Category,
		Research:      research,
		Script:        scriptOut.AudioScript,
		Metadata:      meta,
		VisualPrompts: scriptOut.VisualPrompts,
		Status:        core.DeepDiveNeedsFinetuning,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.store.UpsertDeepDive(record); err != nil {
		return nil, err
	}
	logger.Info("deep dive persisted", "id", record.ID, "keyword", record.Keyword)
	return record, nil
}

// FinalizeDeepDive promotes a deep dive record to finalized.
func (p *Pipeline) FinalizeDeepDive(id string) error {
	return p.store.UpdateDeepDiveStatus(id, core.DeepDiveFinalized)
}
