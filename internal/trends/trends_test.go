package trends

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pivotnote/internal/core"
)

func TestNormalizeVolume(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"150K", 150_000},
		{"1.2M", 1_200_000},
		{"2B", 2_000_000_000},
		{"500", 500},
		{"500+", 500},
		{" 20k searches ", 20_000},
		{"", 0},
		{"unknown", 0},
	}
	for _, tc := range cases {
		if got := NormalizeVolume(tc.raw); got != tc.want {
			t.Errorf("NormalizeVolume(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeVelocity(t *testing.T) {
	if got := NormalizeVelocity("Break Out"); got != "break_out" {
		t.Errorf("expected break_out, got %q", got)
	}
	if got := NormalizeVelocity(""); got != "steady" {
		t.Errorf("empty velocity should default to steady, got %q", got)
	}
}

func TestValidateBatch(t *testing.T) {
	signals := []core.TrendSignal{
		{Region: core.RegionIndia, Platform: core.PlatformGoogle, Keyword: "UPI Credit", Rank: 1, Volume: 150000},
		{Region: "mars", Platform: core.PlatformGoogle, Keyword: "Bad Region", Rank: 1},
		{Region: core.RegionUSA, Platform: core.PlatformTwitter, Keyword: "", Rank: 2},
		{Region: core.RegionUSA, Platform: core.PlatformTwitter, Keyword: "#NoRank", Rank: 0},
	}

	valid, report := ValidateBatch(signals)
	if report.Total != 4 || report.Valid != 1 || report.Invalid != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(valid) != 1 || valid[0].Keyword != "UPI Credit" {
		t.Fatalf("expected only the UPI Credit signal to survive, got %v", valid)
	}
	if valid[0].Category != "Unknown" {
		t.Errorf("empty category should normalize to Unknown, got %q", valid[0].Category)
	}
	if valid[0].CollectedAt.IsZero() {
		t.Error("CollectedAt should be stamped during validation")
	}
}

func TestSortByVolume(t *testing.T) {
	signals := []core.TrendSignal{
		{Keyword: "c", Volume: 100, Rank: 2},
		{Keyword: "a", Volume: 500, Rank: 1},
		{Keyword: "b", Volume: 100, Rank: 1},
	}
	SortByVolume(signals)

	want := []string{"a", "b", "c"}
	for i, kw := range want {
		if signals[i].Keyword != kw {
			t.Fatalf("position %d: got %q, want %q", i, signals[i].Keyword, kw)
		}
	}
}

func TestPrepareSummary(t *testing.T) {
	signals := []core.TrendSignal{
		{Region: core.RegionIndia, Platform: core.PlatformGoogle, Keyword: "UPI Credit", Rank: 1, Volume: 150000, Velocity: "breakout"},
		{Region: core.RegionUSA, Platform: core.PlatformTwitter, Keyword: "#Playoffs", Rank: 1, Volume: 900000, Velocity: "spike"},
	}

	summary := PrepareSummary(signals, "2025-07-14")
	if summary.Date != "2025-07-14" {
		t.Errorf("unexpected date %q", summary.Date)
	}
	if !strings.Contains(summary.IndiaGoogleSummary, "UPI Credit") {
		t.Errorf("india google summary missing keyword: %q", summary.IndiaGoogleSummary)
	}
	if !strings.Contains(summary.USATwitterSummary, "#Playoffs") {
		t.Errorf("usa twitter summary missing keyword: %q", summary.USATwitterSummary)
	}
	if summary.USAGoogleSummary != "N/A" {
		t.Errorf("empty platform slice should summarize as N/A, got %q", summary.USAGoogleSummary)
	}
	if !strings.Contains(summary.BreakoutTrends, "UPI Credit") || !strings.Contains(summary.BreakoutTrends, "#Playoffs") {
		t.Errorf("breakouts missing: %q", summary.BreakoutTrends)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	payload := `[
		{"region": "india", "platform": "google", "keyword": "UPI Credit", "rank": 1, "volume": "150K", "velocity": "Breakout"},
		{"region": "usa", "platform": "twitter", "keyword": "#Playoffs", "rank": 1, "volume": 900000},
		{"region": "nowhere", "platform": "google", "keyword": "Dropped", "rank": 1, "volume": 10}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	signals, report, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if report.Valid != 2 || report.Invalid != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if signals[0].Volume != 150000 {
		t.Errorf("string volume not normalized: %d", signals[0].Volume)
	}
	if signals[0].Velocity != "breakout" {
		t.Errorf("velocity not normalized: %q", signals[0].Velocity)
	}
	if signals[1].Volume != 900000 {
		t.Errorf("numeric volume mangled: %d", signals[1].Volume)
	}
}
