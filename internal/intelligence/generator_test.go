package intelligence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/llm"
	"pivotnote/internal/prompts"
	"pivotnote/internal/schema"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, tier config.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func gridJSON() string {
	return `{
		"weather_grid": [
			{"slot": 1, "category": "Finance", "theme": "Credit Goes Digital", "keywords": ["UPI Credit"], "mood": "excited", "data_signal": "+300%", "context": "c", "deep_why": "d", "big_question": "q?"},
			{"slot": 2, "category": "Sports", "theme": "Final Fever", "keywords": ["Final"], "mood": "celebrating", "data_signal": "+180%", "context": "c", "deep_why": "d", "big_question": "q?"}
		],
		"anomalies": [
			{"rank": 1, "keyword": "Quantum Stocks", "velocity": "+5000%", "explanation": "e", "big_question": "q?"},
			{"rank": 2, "keyword": "Monsoon", "velocity": "+900%", "explanation": "e", "big_question": "q?"}
		],
		"production_mood": {"overall_sentiment": 0.5, "vibe_color_hex": "#FFBF00", "vocal_tone": "energetic", "visual_background_prompt": "neon"}
	}`
}

func analysisText() string {
	return "```json\n" +
		`{"executive_summary": "Summary.",` +
		`"india_intelligence": ` + gridJSON() + `,` +
		`"usa_intelligence": ` + gridJSON() + `}` +
		"\n```"
}

func testSignals() []core.TrendSignal {
	return []core.TrendSignal{
		{Region: core.RegionIndia, Platform: core.PlatformGoogle, Keyword: "UPI Credit", Rank: 1, Volume: 150000, Velocity: "breakout"},
	}
}

func newTestGenerator(t *testing.T, fake *fakeLLM) *Generator {
	t.Helper()
	store, err := prompts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewGenerator(fake, store, config.TierQuality)
}

func TestGenerate(t *testing.T) {
	fake := &fakeLLM{response: analysisText()}
	gen := newTestGenerator(t, fake)

	result, err := gen.Generate(context.Background(), testSignals(), "2025-07-14")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(result.Grids) != 2 {
		t.Fatalf("expected 2 grids, got %d", len(result.Grids))
	}
	if !strings.Contains(fake.prompts[0], "UPI Credit") {
		t.Error("rendered prompt should embed the signal summary")
	}
}

func TestGenerate_EmptySignals(t *testing.T) {
	gen := newTestGenerator(t, &fakeLLM{})
	if _, err := gen.Generate(context.Background(), nil, "2025-07-14"); err == nil {
		t.Error("empty signal batch should be rejected before any call")
	}
}

func TestGenerate_QuotaPropagates(t *testing.T) {
	fake := &fakeLLM{err: llm.ErrQuotaExhausted}
	gen := newTestGenerator(t, fake)

	_, err := gen.Generate(context.Background(), testSignals(), "2025-07-14")
	if !errors.Is(err, llm.ErrQuotaExhausted) {
		t.Fatalf("quota error should propagate unwrapped, got %v", err)
	}
}

func TestGenerate_InvalidShapeRejected(t *testing.T) {
	fake := &fakeLLM{response: "```json\n{\"executive_summary\": \"no grids\"}\n```"}
	gen := newTestGenerator(t, fake)

	_, err := gen.Generate(context.Background(), testSignals(), "2025-07-14")
	if err == nil {
		t.Fatal("analysis without regional grids should be rejected")
	}
	var se *schema.Error
	if !errors.As(err, &se) {
		t.Errorf("expected *schema.Error, got %T: %v", err, err)
	}
}

func TestParseManual(t *testing.T) {
	gen := newTestGenerator(t, &fakeLLM{})

	result, err := gen.ParseManual(analysisText(), "2025-07-14")
	if err != nil {
		t.Fatalf("ParseManual failed: %v", err)
	}
	if len(result.Grids) != 2 {
		t.Fatalf("expected 2 grids, got %d", len(result.Grids))
	}

	if _, err := gen.ParseManual("garbage", "2025-07-14"); !errors.Is(err, schema.ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput, got %v", err)
	}
}
