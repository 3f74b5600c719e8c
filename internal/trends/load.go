package trends

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pivotnote/internal/core"
)

// flexVolume accepts volume either as a number or as a display string like
// "150K"; collectors disagree on which they emit.
type flexVolume int64

func (v *flexVolume) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = flexVolume(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("volume must be a number or string: %s", data)
	}
	*v = flexVolume(NormalizeVolume(s))
	return nil
}

type rawSignal struct {
	Region      core.Region   `json:"region"`
	Platform    core.Platform `json:"platform"`
	Keyword     string        `json:"keyword"`
	Rank        int           `json:"rank"`
	Volume      flexVolume    `json:"volume"`
	Velocity    string        `json:"velocity"`
	Category    string        `json:"category"`
	Sentiment   string        `json:"sentiment"`
	Context     string        `json:"context"`
	WhyTrending string        `json:"why_trending"`
	Related     []string      `json:"related"`
	CollectedAt time.Time     `json:"collected_at"`
}

// LoadFile reads a collected-signals JSON file, normalizes each signal, and
// drops invalid ones with a report.
func LoadFile(path string) ([]core.TrendSignal, ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ValidationReport{}, fmt.Errorf("failed to read signals file: %w", err)
	}

	var raw []rawSignal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ValidationReport{}, fmt.Errorf("signals file does not parse: %w", err)
	}

	signals := make([]core.TrendSignal, 0, len(raw))
	for _, r := range raw {
		signals = append(signals, core.TrendSignal{
			Region:      r.Region,
			Platform:    r.Platform,
			Keyword:     r.Keyword,
			Rank:        r.Rank,
			Volume:      int64(r.Volume),
			Velocity:    r.Velocity,
			Category:    r.Category,
			Sentiment:   r.Sentiment,
			Context:     r.Context,
			WhyTrending: r.WhyTrending,
			Related:     r.Related,
			CollectedAt: r.CollectedAt,
		})
	}

	valid, report := ValidateBatch(signals)
	return valid, report, nil
}
