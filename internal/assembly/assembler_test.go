package assembly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/prompts"
	"pivotnote/internal/schema"
)

// fakeLLM replays canned responses in order.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, tier config.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("fakeLLM: no response for call %d", f.calls)
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

// section builds a section of exactly n words, optionally ending on a question.
func section(n int, question bool) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i+1)
	}
	out := strings.Join(words, " ")
	if question {
		out += "?"
	} else {
		out += "."
	}
	return out
}

func assemblyResponse(intro, seg1, seg2, outlier, outro int) string {
	out := schema.AssemblyOutput{
		Metadata: core.YoutubeMetadata{
			Title:         "Internet Feed: Is credit going digital?",
			Description:   "Daily India Intelligence Report.",
			Hashtags:      []string{"#PivotNote", "#InternetFeed", "#IndiaTrends"},
			PinnedComment: "Just for today, or here to stay? Comment below.",
		},
		Assembly: core.ScriptAssembly{
			Intro:    section(intro, false),
			Segment1: section(seg1, true),
			Segment2: section(seg2, true),
			Outlier:  section(outlier, true),
			Outro:    section(outro, false),
		},
		VisualPrompts: core.VisualPrompts{"thumbnail": "dashboard --ar 16:9"},
	}
	raw, _ := json.Marshal(out)
	return "```json\n" + string(raw) + "\n```"
}

func testGrid() core.IntelligenceGrid {
	return core.IntelligenceGrid{
		Region:       core.RegionIndia,
		AnalysisDate: "2025-07-14",
		Themes: []core.ThemeSlot{
			{Slot: 1, Category: "Finance", Theme: "Credit Goes Digital", Keywords: []string{"UPI Credit"}, Mood: "excited", DataSignal: "+300%", Context: "c", DeepWhy: "d", BigQuestion: "q?"},
			{Slot: 2, Category: "Sports", Theme: "Final Fever", Keywords: []string{"Final"}, Mood: "celebrating", DataSignal: "+180%", Context: "c", DeepWhy: "d", BigQuestion: "q?"},
		},
		Anomalies: []core.AnomalySlot{
			{Rank: 1, Keyword: "Quantum Stocks", Velocity: "+5000%", Explanation: "e", BigQuestion: "q?"},
			{Rank: 2, Keyword: "Monsoon", Velocity: "+900%", Explanation: "e", BigQuestion: "q?"},
		},
		ProductionMood: core.ProductionMood{OverallSentiment: 0.5, VibeColorHex: "#FFBF00", VocalTone: "energetic", VisualBackgroundPrompt: "neon"},
	}
}

func newTestAssembler(t *testing.T, llm *fakeLLM) *Assembler {
	t.Helper()
	store, err := prompts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewAssembler(llm, store, config.TierFast)
}

func TestAssemble(t *testing.T) {
	llm := &fakeLLM{responses: []string{assemblyResponse(12, 35, 35, 28, 12)}}
	asm := newTestAssembler(t, llm)
	grid := testGrid()

	result, err := asm.Assemble(context.Background(), core.RegionIndia, grid, grid.ProductionMood)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if llm.calls != 1 {
		t.Errorf("in-budget output should not trigger a retry, got %d calls", llm.calls)
	}
	if result.FullScript != result.Assembly.FullScript() {
		t.Error("full script should join the assembly sections")
	}
	if total := WordCount(result.FullScript); total < 120 || total > 180 {
		t.Errorf("total script words %d outside tolerance", total)
	}
}

func TestAssemble_RetriesOnceOnBudgetViolation(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		assemblyResponse(12, 50, 35, 28, 12), // segment_1 too long
		assemblyResponse(12, 35, 35, 28, 12),
	}}
	asm := newTestAssembler(t, llm)
	grid := testGrid()

	_, err := asm.Assemble(context.Background(), core.RegionIndia, grid, grid.ProductionMood)
	if err != nil {
		t.Fatalf("Assemble should succeed on the retry: %v", err)
	}
	if llm.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[1], "segment_1 was 50 words") {
		t.Errorf("retry prompt should carry the tightened word note, got: %s", llm.prompts[1][:200])
	}
}

func TestAssemble_FailsAfterSecondViolation(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		assemblyResponse(12, 50, 35, 28, 12),
		assemblyResponse(12, 50, 35, 28, 12),
	}}
	asm := newTestAssembler(t, llm)
	grid := testGrid()

	_, err := asm.Assemble(context.Background(), core.RegionIndia, grid, grid.ProductionMood)
	var budgetErr *Error
	if !errors.As(err, &budgetErr) {
		t.Fatalf("expected *assembly.Error after two violations, got %v", err)
	}
	if len(budgetErr.Violations) == 0 {
		t.Error("error should carry the violations")
	}
	if llm.calls != 2 {
		t.Errorf("expected exactly 2 calls (one retry), got %d", llm.calls)
	}
}

func TestAssemble_RequiresPrimaryAnomaly(t *testing.T) {
	llm := &fakeLLM{}
	asm := newTestAssembler(t, llm)

	grid := testGrid()
	grid.Anomalies = []core.AnomalySlot{{Rank: 2, Keyword: "Monsoon", Velocity: "+900%"}}

	_, err := asm.Assemble(context.Background(), core.RegionIndia, grid, grid.ProductionMood)
	if !errors.Is(err, schema.ErrMissingPrimaryAnomaly) {
		t.Fatalf("expected ErrMissingPrimaryAnomaly, got %v", err)
	}
	if llm.calls != 0 {
		t.Error("no provider call should be made without a primary anomaly")
	}
}

func TestCheckBudgets_QuestionEndings(t *testing.T) {
	asm := core.ScriptAssembly{
		Intro:    section(10, false),
		Segment1: section(34, false), // missing question ending
		Segment2: section(34, true),
		Outlier:  section(30, true),
		Outro:    section(12, false),
	}
	violations := CheckBudgets(asm)
	found := false
	for _, v := range violations {
		if strings.Contains(v.Section, "segment_1") && strings.Contains(v.Section, "question") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a question-ending violation for segment_1, got %v", violations)
	}
}

func TestEndsWithQuestion(t *testing.T) {
	if !EndsWithQuestion("Is this the end?") {
		t.Error("plain question should pass")
	}
	if !EndsWithQuestion("Just for today, or here to stay? Comment below.") {
		t.Error("question followed by a short call-to-action should pass")
	}
	if EndsWithQuestion("The data is in.") {
		t.Error("statement should fail")
	}
	if EndsWithQuestion("") {
		t.Error("empty section should fail")
	}
}

func deepDiveScriptResponse(words int) string {
	out := schema.DeepDiveScriptOutput{
		Metadata: core.YoutubeMetadata{
			Title:       "Deep Dive: UPI Credit",
			Description: "Analysis.",
			Hashtags:    []string{"#PivotNote", "#UPICredit", "#DeepDive"},
		},
		AudioScript:   section(words, true),
		VisualPrompts: core.VisualPrompts{"thumbnail": "dashboard"},
	}
	raw, _ := json.Marshal(out)
	return "```json\n" + string(raw) + "\n```"
}

func testResearch() core.DeepDiveResearch {
	return core.DeepDiveResearch{
		Keyword: "UPI Credit", Region: core.RegionIndia,
		SimpleClash: "Banks vs fintech", LeadMetric: "$2B",
		Clash:   core.StrategicClash{SideALogic: "a", SideBFear: "b", TheDeepWhy: "c"},
		Sources: []core.ResearchSource{{Title: "t", URL: "u", Reliability: "9"}},
	}
}

func TestAssembleDeepDive(t *testing.T) {
	llm := &fakeLLM{responses: []string{deepDiveScriptResponse(125)}}
	asm := newTestAssembler(t, llm)

	out, err := asm.AssembleDeepDive(context.Background(), testResearch())
	if err != nil {
		t.Fatalf("AssembleDeepDive failed: %v", err)
	}
	if WordCount(out.AudioScript) != 125 {
		t.Errorf("unexpected script length %d", WordCount(out.AudioScript))
	}
	if llm.calls != 1 {
		t.Errorf("in-budget script should not retry, got %d calls", llm.calls)
	}
}

func TestAssembleDeepDive_RetryAndFail(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		deepDiveScriptResponse(60),
		deepDiveScriptResponse(125),
	}}
	asm := newTestAssembler(t, llm)

	if _, err := asm.AssembleDeepDive(context.Background(), testResearch()); err != nil {
		t.Fatalf("deep dive should succeed on retry: %v", err)
	}
	if llm.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[1], "60 words") {
		t.Error("retry prompt should state the previous word count")
	}

	bad := &fakeLLM{responses: []string{deepDiveScriptResponse(60), deepDiveScriptResponse(300)}}
	asm = newTestAssembler(t, bad)
	_, err := asm.AssembleDeepDive(context.Background(), testResearch())
	var budgetErr *Error
	if !errors.As(err, &budgetErr) {
		t.Fatalf("expected *assembly.Error, got %v", err)
	}
}
