package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"pivotnote/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(filepath.Join(tmpDir, "pivotnote.db")); os.IsNotExist(err) {
		t.Error("database file should be created")
	}
}

func testGrid(region core.Region) core.IntelligenceGrid {
	return core.IntelligenceGrid{
		Region:       region,
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

func testRegionalContent(region core.Region) *core.RegionalContent {
	return &core.RegionalContent{
		Script:        "The data is in. UPI Credit spiked. Is this the end of cards?",
		Grid:          testGrid(region),
		Assembly:      core.ScriptAssembly{Intro: "The data is in.", Segment1: "s1?", Segment2: "s2?", Outlier: "o?", Outro: "Comment below."},
		VisualPrompts: core.VisualPrompts{"thumbnail": "dashboard"},
		Metadata: core.YoutubeMetadata{
			Title: "Internet Feed: Credit?", Description: "Daily report.",
			Hook: "The data is in. UPI Credit spiked. Is this",
			Hashtags: []string{"#PivotNote", "#InternetFeed", "#Trends"},
			PinnedComment: "Comment below.", ThumbnailPrompt: "dashboard",
		},
	}
}

func testDailyRecord(date string) *core.DailyContentRecord {
	return &core.DailyContentRecord{
		PublishDate: date,
		Regions: map[core.Region]*core.RegionalContent{
			core.RegionIndia: testRegionalContent(core.RegionIndia),
			core.RegionUSA:   testRegionalContent(core.RegionUSA),
		},
		ExecutiveSummary: "India chases credit, USA chases playoffs.",
		Entities:         []core.Entity{{Type: "keyword", Name: "UPI Credit", TotalMentions: 150000}},
		ProductionStatus: core.StatusDraft,
	}
}

func TestInsertTrendSignals(t *testing.T) {
	store := newTestStore(t)

	signals := []core.TrendSignal{
		{Region: core.RegionIndia, Platform: core.PlatformGoogle, Keyword: "UPI Credit", Rank: 1, Volume: 150000, Velocity: "breakout"},
		{Region: core.RegionUSA, Platform: core.PlatformTwitter, Keyword: "#Playoffs", Rank: 1, Volume: 900000, Velocity: "spike", Sentiment: "excited"},
	}
	if err := store.InsertTrendSignals(signals); err != nil {
		t.Fatalf("InsertTrendSignals failed: %v", err)
	}

	var googleCount, twitterCount int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM google_trends`).Scan(&googleCount); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM twitter_trends`).Scan(&twitterCount); err != nil {
		t.Fatal(err)
	}
	if googleCount != 1 || twitterCount != 1 {
		t.Errorf("signals routed wrong: google=%d twitter=%d", googleCount, twitterCount)
	}
}

func TestUpsertDailyContent_Idempotent(t *testing.T) {
	store := newTestStore(t)
	record := testDailyRecord("2025-07-14")

	if err := store.UpsertDailyContent(record); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Re-run with changed content: same row, new values.
	record.Regions[core.RegionIndia].Metadata.Title = "Internet Feed: Updated?"
	if err := store.UpsertDailyContent(record); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM daily_content_records WHERE publish_date = ?`, "2025-07-14").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("upsert created %d rows for one publish date", count)
	}

	loaded, err := store.GetDailyContent("2025-07-14")
	if err != nil {
		t.Fatalf("GetDailyContent failed: %v", err)
	}
	if loaded.Regions[core.RegionIndia].Metadata.Title != "Internet Feed: Updated?" {
		t.Errorf("upsert did not replace content: %q", loaded.Regions[core.RegionIndia].Metadata.Title)
	}
}

func TestGetDailyContent_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	record := testDailyRecord("2025-07-14")

	if err := store.UpsertDailyContent(record); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.GetDailyContent("2025-07-14")
	if err != nil {
		t.Fatalf("GetDailyContent failed: %v", err)
	}

	india := loaded.Regions[core.RegionIndia]
	if india == nil {
		t.Fatal("india content missing")
	}
	if india.Grid.Theme(1) == nil || india.Grid.Theme(1).Theme != "Credit Goes Digital" {
		t.Error("grid JSON mirror did not round-trip")
	}
	if india.Assembly.Outro != "Comment below." {
		t.Error("assembly JSON mirror did not round-trip")
	}
	if len(india.Metadata.Hashtags) != 3 {
		t.Errorf("hashtags did not round-trip: %v", india.Metadata.Hashtags)
	}
	if len(loaded.Entities) != 1 {
		t.Errorf("entities did not round-trip: %v", loaded.Entities)
	}

	if _, err := store.GetDailyContent("1999-01-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductionStatus(t *testing.T) {
	store := newTestStore(t)
	record := testDailyRecord("2025-07-14")
	if err := store.UpsertDailyContent(record); err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateProductionStatus("2025-07-14", core.StatusCompleted); err != nil {
		t.Fatalf("completion with full metadata should succeed: %v", err)
	}
	loaded, _ := store.GetDailyContent("2025-07-14")
	if loaded.ProductionStatus != core.StatusCompleted {
		t.Errorf("status not updated: %q", loaded.ProductionStatus)
	}
	if loaded.CompletedAt == nil {
		t.Error("completed_at should be stamped")
	}

	if err := store.UpdateProductionStatus("2025-07-14", "published"); err == nil {
		t.Error("unknown status should be rejected")
	}
	if err := store.UpdateProductionStatus("1999-01-01", core.StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductionStatus_RefusesIncompleteMetadata(t *testing.T) {
	store := newTestStore(t)
	record := testDailyRecord("2025-07-15")
	record.Regions[core.RegionUSA].Metadata.Hook = ""
	if err := store.UpsertDailyContent(record); err != nil {
		t.Fatal(err)
	}

	err := store.UpdateProductionStatus("2025-07-15", core.StatusCompleted)
	if !errors.Is(err, ErrIncompleteMetadata) {
		t.Fatalf("expected ErrIncompleteMetadata, got %v", err)
	}

	loaded, _ := store.GetDailyContent("2025-07-15")
	if loaded.ProductionStatus != core.StatusDraft {
		t.Errorf("refused completion must leave the record draft, got %q", loaded.ProductionStatus)
	}
}

func TestUpsertInsights(t *testing.T) {
	store := newTestStore(t)
	grid := testGrid(core.RegionIndia)

	if err := store.UpsertInsights(grid, "summary one"); err != nil {
		t.Fatalf("UpsertInsights failed: %v", err)
	}
	// Same date and region again: replaced, not duplicated.
	if err := store.UpsertInsights(grid, "summary two"); err != nil {
		t.Fatalf("second UpsertInsights failed: %v", err)
	}

	var count int
	var summary, anomaly1 string
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM daily_insights WHERE analysis_date = ? AND region = ?`,
		"2025-07-14", "india").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 insights row, got %d", count)
	}
	if err := store.db.QueryRow(
		`SELECT executive_summary, anomaly_1_keyword FROM daily_insights WHERE analysis_date = ? AND region = ?`,
		"2025-07-14", "india").Scan(&summary, &anomaly1); err != nil {
		t.Fatal(err)
	}
	if summary != "summary two" {
		t.Errorf("upsert did not replace: %q", summary)
	}
	if anomaly1 != "Quantum Stocks" {
		t.Errorf("flattened anomaly column wrong: %q", anomaly1)
	}

	incomplete := grid
	incomplete.Anomalies = grid.Anomalies[:1]
	if err := store.UpsertInsights(incomplete, "x"); err == nil {
		t.Error("grid without both anomalies should be rejected")
	}
}

func testDeepDiveRecord() *core.DeepDiveRecord {
	return &core.DeepDiveRecord{
		ID: uuid.NewString(), Keyword: "UPI Credit", Region: core.RegionIndia,
		Platform: core.PlatformGoogle, SearchVolume: 150000, Velocity: "breakout",
		Sentiment: "excited", Category: "Finance",
		Research: &core.DeepDiveResearch{
			Keyword: "UPI Credit", Region: core.RegionIndia, SimpleClash: "Banks vs fintech",
			LeadMetric: "$2B", Clash: core.StrategicClash{SideALogic: "a", SideBFear: "b", TheDeepWhy: "c"},
			Sources: []core.ResearchSource{{Title: "t", URL: "u", Reliability: "9"}},
		},
		Script: "Two billion dollars moved.",
		Metadata: core.YoutubeMetadata{Title: "Deep Dive", Description: "d", Hook: "Two billion dollars",
			Hashtags: []string{"#UPICredit"}, PinnedComment: "p", ThumbnailPrompt: "t"},
		VisualPrompts: core.VisualPrompts{"thumbnail": "dashboard"},
		Status:        core.DeepDiveNeedsFinetuning,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestDeepDiveLifecycle(t *testing.T) {
	store := newTestStore(t)
	record := testDeepDiveRecord()

	if err := store.UpsertDeepDive(record); err != nil {
		t.Fatalf("UpsertDeepDive failed: %v", err)
	}

	loaded, err := store.GetDeepDive(record.ID)
	if err != nil {
		t.Fatalf("GetDeepDive failed: %v", err)
	}
	if loaded.Status != core.DeepDiveNeedsFinetuning {
		t.Errorf("new record should need finetuning, got %q", loaded.Status)
	}
	if loaded.Research == nil || loaded.Research.Clash.TheDeepWhy != "c" {
		t.Error("research JSON did not round-trip")
	}
	if loaded.FinalizedAt != nil {
		t.Error("finalized_at should be empty before finalization")
	}

	if err := store.UpdateDeepDiveStatus(record.ID, core.DeepDiveFinalized); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	loaded, _ = store.GetDeepDive(record.ID)
	if loaded.Status != core.DeepDiveFinalized {
		t.Errorf("status not updated: %q", loaded.Status)
	}
	if loaded.FinalizedAt == nil {
		t.Error("finalized_at should be stamped")
	}

	// finalized -> needs_finetuning is not a legal transition.
	err = store.UpdateDeepDiveStatus(record.ID, core.DeepDiveNeedsFinetuning)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := store.UpdateDeepDiveStatus(record.ID, core.DeepDiveArchived); err != nil {
		t.Fatalf("finalized -> archived should be allowed: %v", err)
	}

	if err := store.UpdateDeepDiveStatus(uuid.NewString(), core.DeepDiveFinalized); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListDeepDives(t *testing.T) {
	store := newTestStore(t)

	first := testDeepDiveRecord()
	second := testDeepDiveRecord()
	second.Keyword = "Quantum Stocks"
	if err := store.UpsertDeepDive(first); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertDeepDive(second); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateDeepDiveStatus(first.ID, core.DeepDiveFinalized); err != nil {
		t.Fatal(err)
	}

	all, err := store.ListDeepDives("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}

	finalized, err := store.ListDeepDives(core.DeepDiveFinalized)
	if err != nil {
		t.Fatal(err)
	}
	if len(finalized) != 1 || finalized[0].ID != first.ID {
		t.Fatalf("status filter wrong: %+v", finalized)
	}
}
