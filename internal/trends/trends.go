// Package trends normalizes and validates raw trend signals and prepares the
// per-region data summary fed into grid analysis prompts.
package trends

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pivotnote/internal/core"
)

var volumePattern = regexp.MustCompile(`[^\d.KMB]`)

// NormalizeVolume converts volume strings like "150K", "1.2M" or "2B" to an
// integer count. Unparseable input normalizes to 0.
func NormalizeVolume(raw string) int64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = volumePattern.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}

	mult := int64(1)
	switch {
	case strings.Contains(s, "K"):
		mult = 1_000
		s = strings.ReplaceAll(s, "K", "")
	case strings.Contains(s, "M"):
		mult = 1_000_000
		s = strings.ReplaceAll(s, "M", "")
	case strings.Contains(s, "B"):
		mult = 1_000_000_000
		s = strings.ReplaceAll(s, "B", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f * float64(mult))
}

// NormalizeVelocity lowers and underscores velocity labels so "Break Out" and
// "break-out" store identically.
func NormalizeVelocity(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	if v == "" {
		return "steady"
	}
	return v
}

// ValidationReport summarizes the outcome of validating a signal batch.
type ValidationReport struct {
	Total   int
	Valid   int
	Invalid int
	Errors  []string
}

// Validate checks one raw signal for required fields and normalizes it.
func Validate(sig core.TrendSignal) (core.TrendSignal, error) {
	if sig.Keyword == "" {
		return sig, fmt.Errorf("missing keyword")
	}
	if !sig.Region.Valid() {
		return sig, fmt.Errorf("invalid region %q for keyword %q", sig.Region, sig.Keyword)
	}
	if sig.Rank < 1 {
		return sig, fmt.Errorf("invalid rank %d for keyword %q", sig.Rank, sig.Keyword)
	}
	if sig.Platform != core.PlatformGoogle && sig.Platform != core.PlatformTwitter {
		return sig, fmt.Errorf("invalid platform %q for keyword %q", sig.Platform, sig.Keyword)
	}

	sig.Keyword = strings.TrimSpace(sig.Keyword)
	sig.Velocity = NormalizeVelocity(sig.Velocity)
	if sig.Category == "" {
		sig.Category = "Unknown"
	}
	if sig.Sentiment == "" {
		sig.Sentiment = "curious"
	}
	if sig.CollectedAt.IsZero() {
		sig.CollectedAt = time.Now().UTC()
	}
	return sig, nil
}

// ValidateBatch validates and normalizes a batch, dropping invalid signals
// and reporting why.
func ValidateBatch(signals []core.TrendSignal) ([]core.TrendSignal, ValidationReport) {
	report := ValidationReport{Total: len(signals)}
	valid := make([]core.TrendSignal, 0, len(signals))
	for _, sig := range signals {
		normalized, err := Validate(sig)
		if err != nil {
			report.Invalid++
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Valid++
		valid = append(valid, normalized)
	}
	return valid, report
}

// SortByVolume orders signals by descending volume, breaking ties by rank.
// Grid generation requires a stable, pre-sorted input so the rendered prompt
// is deterministic for a given batch.
func SortByVolume(signals []core.TrendSignal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Volume != signals[j].Volume {
			return signals[i].Volume > signals[j].Volume
		}
		return signals[i].Rank < signals[j].Rank
	})
}

// DataSummary is the condensed view of a day's signals rendered into the
// analysis prompt.
type DataSummary struct {
	Date                string
	USAGoogleSummary    string
	IndiaGoogleSummary  string
	USATwitterSummary   string
	IndiaTwitterSummary string
	BreakoutTrends      string
}

const summaryTopN = 10

// PrepareSummary builds the analysis-prompt data summary from a validated,
// mixed-region signal batch.
func PrepareSummary(signals []core.TrendSignal, date string) DataSummary {
	summary := DataSummary{Date: date}

	summary.USAGoogleSummary = topKeywords(signals, core.RegionUSA, core.PlatformGoogle)
	summary.IndiaGoogleSummary = topKeywords(signals, core.RegionIndia, core.PlatformGoogle)
	summary.USATwitterSummary = topKeywords(signals, core.RegionUSA, core.PlatformTwitter)
	summary.IndiaTwitterSummary = topKeywords(signals, core.RegionIndia, core.PlatformTwitter)

	usaBreakouts := breakoutKeywords(signals, core.RegionUSA)
	indiaBreakouts := breakoutKeywords(signals, core.RegionIndia)
	summary.BreakoutTrends = fmt.Sprintf("USA: %s, India: %s",
		strings.Join(usaBreakouts, ", "), strings.Join(indiaBreakouts, ", "))

	return summary
}

func topKeywords(signals []core.TrendSignal, region core.Region, platform core.Platform) string {
	filtered := make([]core.TrendSignal, 0, summaryTopN)
	for _, sig := range signals {
		if sig.Region == region && sig.Platform == platform {
			filtered = append(filtered, sig)
		}
	}
	SortByVolume(filtered)
	if len(filtered) > summaryTopN {
		filtered = filtered[:summaryTopN]
	}

	keywords := make([]string, 0, len(filtered))
	for _, sig := range filtered {
		keywords = append(keywords, fmt.Sprintf("%s (%s, vol %d)", sig.Keyword, sig.Velocity, sig.Volume))
	}
	if len(keywords) == 0 {
		return "N/A"
	}
	return "Top " + strconv.Itoa(len(keywords)) + ": " + strings.Join(keywords, "; ")
}

const breakoutLimit = 5

func breakoutKeywords(signals []core.TrendSignal, region core.Region) []string {
	var out []string
	for _, sig := range signals {
		if sig.Region != region {
			continue
		}
		if sig.Velocity == "breakout" || sig.Velocity == "spike" {
			out = append(out, sig.Keyword)
		}
		if len(out) == breakoutLimit {
			break
		}
	}
	return out
}

// FilterRegion returns the signals belonging to one region, preserving order.
func FilterRegion(signals []core.TrendSignal, region core.Region) []core.TrendSignal {
	var out []core.TrendSignal
	for _, sig := range signals {
		if sig.Region == region {
			out = append(out, sig)
		}
	}
	return out
}
