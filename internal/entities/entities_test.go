package entities

import (
	"testing"

	"pivotnote/internal/core"
)

func TestExtractFromSignals_Grouping(t *testing.T) {
	signals := []core.TrendSignal{
		{Region: core.RegionIndia, Platform: core.PlatformGoogle, Keyword: "Virat Kohli", Volume: 500000, Sentiment: "celebrating", Category: "Sports", Context: "Century in the final"},
		{Region: core.RegionUSA, Platform: core.PlatformTwitter, Keyword: "#ViratKohli", Volume: 200000, Sentiment: "excited", Category: "Sports"},
		{Region: core.RegionIndia, Platform: core.PlatformTwitter, Keyword: "virat kohli", Volume: 100000, Sentiment: "celebrating", Category: "Sports"},
	}

	out := ExtractFromSignals(signals)

	// "Virat Kohli" and "virat kohli" group; "#ViratKohli" normalizes to a
	// different name ("ViratKohli") and stays separate.
	if len(out) != 2 {
		t.Fatalf("expected 2 entities, got %d: %+v", len(out), out)
	}

	kohli := out[0]
	if kohli.Name != "Virat Kohli" {
		t.Fatalf("expected highest-mention entity first, got %q", kohli.Name)
	}
	if kohli.TotalMentions != 600000 {
		t.Errorf("mentions should aggregate, got %d", kohli.TotalMentions)
	}
	if len(kohli.Regions) != 1 || kohli.Regions[0] != "india" {
		t.Errorf("unexpected regions: %v", kohli.Regions)
	}
	if kohli.Sentiment != "celebrating" {
		t.Errorf("dominant sentiment should be celebrating, got %q", kohli.Sentiment)
	}
	if len(kohli.Keywords) != 2 {
		t.Errorf("both keyword spellings should be recorded: %v", kohli.Keywords)
	}
}

func TestExtractFromSignals_TypeInference(t *testing.T) {
	cases := []struct {
		sig  core.TrendSignal
		want string
	}{
		{core.TrendSignal{Keyword: "#Playoffs", Category: "Sports"}, TypeHashtag},
		{core.TrendSignal{Keyword: "Quantum Stocks", Category: "Finance"}, TypeBusiness},
		{core.TrendSignal{Keyword: "Election Results", Category: "Politics"}, TypePolitical},
		{core.TrendSignal{Keyword: "New Album Drop", Category: "Music"}, TypeEntertainment},
		{core.TrendSignal{Keyword: "Taylor Swift", Category: ""}, TypePerson},
		{core.TrendSignal{Keyword: "monsoon", Category: ""}, TypeKeyword},
	}
	for _, tc := range cases {
		tc.sig.Region = core.RegionUSA
		out := ExtractFromSignals([]core.TrendSignal{tc.sig})
		if len(out) != 1 {
			t.Fatalf("expected 1 entity for %q", tc.sig.Keyword)
		}
		if out[0].Type != tc.want {
			t.Errorf("inferType(%q) = %q, want %q", tc.sig.Keyword, out[0].Type, tc.want)
		}
	}
}

func TestExtractFromSignals_RankOnlySignalsCount(t *testing.T) {
	signals := []core.TrendSignal{
		{Region: core.RegionIndia, Keyword: "No Volume Trend", Rank: 1},
		{Region: core.RegionIndia, Keyword: "No Volume Trend", Rank: 3},
	}
	out := ExtractFromSignals(signals)
	if len(out) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(out))
	}
	if out[0].TotalMentions != 2 {
		t.Errorf("volume-less signals should count one mention each, got %d", out[0].TotalMentions)
	}
}

func TestExtractFromSignals_Empty(t *testing.T) {
	if out := ExtractFromSignals(nil); len(out) != 0 {
		t.Errorf("expected no entities, got %v", out)
	}
	if out := ExtractFromSignals([]core.TrendSignal{{Keyword: "  "}}); len(out) != 0 {
		t.Errorf("blank keywords should be dropped, got %v", out)
	}
}
