package core

import "time"

// Region identifies a geographic market covered by the daily report.
type Region string

const (
	RegionIndia Region = "india"
	RegionUSA   Region = "usa"
)

// Display returns the human-readable region name used in prompts and storage.
func (r Region) Display() string {
	switch r {
	case RegionIndia:
		return "India"
	case RegionUSA:
		return "USA"
	default:
		return string(r)
	}
}

// Valid reports whether the region is one of the supported markets.
func (r Region) Valid() bool {
	return r == RegionIndia || r == RegionUSA
}

// Platform identifies the source a trend signal was collected from.
type Platform string

const (
	PlatformGoogle  Platform = "google"
	PlatformTwitter Platform = "twitter"
)

// TrendSignal is one raw search/social velocity reading for a region.
// Signals are produced by the collection layer and consumed read-only.
type TrendSignal struct {
	Region      Region    `json:"region"`       // Market the signal belongs to
	Platform    Platform  `json:"platform"`     // google | twitter
	Keyword     string    `json:"keyword"`      // Exact keyword or #hashtag
	Rank        int       `json:"rank"`         // Rank within its platform list (1-based)
	Volume      int64     `json:"volume"`       // Search volume or mention volume, normalized to an integer
	Velocity    string    `json:"velocity"`     // breakout | spike | rising | steady
	Category    string    `json:"category"`     // Sports/Politics/Entertainment/...
	Sentiment   string    `json:"sentiment"`    // excited/concerned/curious/celebrating/controversial
	Context     string    `json:"context"`      // What the trend is about
	WhyTrending string    `json:"why_trending"` // Catalyst for the current spike
	Related     []string  `json:"related"`      // Related searches or hashtags
	CollectedAt time.Time `json:"collected_at"` // When the signal was collected
}

// ThemeSlot is one of the two clustered themes in an intelligence grid.
type ThemeSlot struct {
	Slot        int      `json:"slot"`        // 1 (primary) or 2 (secondary)
	Category    string   `json:"category"`    // Theme category, must differ between slots
	Theme       string   `json:"theme"`       // Sharp short title
	Keywords    []string `json:"keywords"`    // Keywords driving the theme
	Mood        string   `json:"mood"`        // Emotional tone
	DataSignal  string   `json:"data_signal"` // Measurable shift, e.g. "+300% search spike"
	Context     string   `json:"context"`     // One-sentence factual reality
	DeepWhy     string   `json:"deep_why"`    // Psychological or systemic reason
	BigQuestion string   `json:"big_question"`
}

// AnomalySlot is one of the two breakout signals in an intelligence grid.
type AnomalySlot struct {
	Rank        int    `json:"rank"`     // 1 or 2
	Keyword     string `json:"keyword"`  // Exact keyword
	Velocity    string `json:"velocity"` // Growth metric, e.g. "+5000% Breakout"
	Explanation string `json:"explanation"`
	BigQuestion string `json:"big_question"`
}

// ProductionMood carries the tone and visual parameters applied during assembly.
type ProductionMood struct {
	OverallSentiment       float64 `json:"overall_sentiment"` // -1.0 to 1.0
	VibeColorHex           string  `json:"vibe_color_hex"`    // e.g. "#FFBF00"
	VocalTone              string  `json:"vocal_tone"`
	VisualBackgroundPrompt string  `json:"visual_background_prompt"`
}

// IntelligenceGrid is the structured analysis output for one region on one date.
// A valid grid carries exactly 2 theme slots and exactly 2 anomaly slots.
type IntelligenceGrid struct {
	Region         Region         `json:"region"`
	AnalysisDate   string         `json:"analysis_date"` // YYYY-MM-DD
	Themes         []ThemeSlot    `json:"weather_grid"`
	Anomalies      []AnomalySlot  `json:"anomalies"`
	ProductionMood ProductionMood `json:"production_mood"`
}

// Theme returns the theme occupying the given slot, or nil.
func (g *IntelligenceGrid) Theme(slot int) *ThemeSlot {
	for i := range g.Themes {
		if g.Themes[i].Slot == slot {
			return &g.Themes[i]
		}
	}
	return nil
}

// Anomaly returns the anomaly with the given rank, or nil.
func (g *IntelligenceGrid) Anomaly(rank int) *AnomalySlot {
	for i := range g.Anomalies {
		if g.Anomalies[i].Rank == rank {
			return &g.Anomalies[i]
		}
	}
	return nil
}

// ScriptAssembly is the timed 60-second narration script for one region.
// Segment 1/2 derive from theme slots 1/2; the outlier derives from the
// rank-1 anomaly only.
type ScriptAssembly struct {
	Intro    string `json:"intro"`
	Segment1 string `json:"segment_1"`
	Segment2 string `json:"segment_2"`
	Outlier  string `json:"outlier"`
	Outro    string `json:"outro"`
}

// Sections returns the script sections in narration order.
func (a ScriptAssembly) Sections() []string {
	return []string{a.Intro, a.Segment1, a.Segment2, a.Outlier, a.Outro}
}

// FullScript joins the sections into the complete narration text.
func (a ScriptAssembly) FullScript() string {
	out := ""
	for _, s := range a.Sections() {
		if s == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += s
	}
	return out
}

// YoutubeMetadata is the publishing metadata derived from an assembled script.
// Every field must be populated after a successful assembly; downstream
// analytics query these as individual columns.
type YoutubeMetadata struct {
	Title           string   `json:"title"` // Max 60 characters
	Description     string   `json:"description"`
	Hook            string   `json:"hook"` // Verbatim prefix of the script
	Hashtags        []string `json:"hashtags"`
	PinnedComment   string   `json:"pinned_comment"`
	ThumbnailPrompt string   `json:"thumbnail_prompt"`
}

// VisualPrompts maps script section names to image-generation prompts.
type VisualPrompts map[string]string

// Production status values for daily content records.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
)

// RegionalContent bundles one region's pipeline output inside a daily record.
type RegionalContent struct {
	Script        string           `json:"script"`
	Grid          IntelligenceGrid `json:"intelligence_grid"`
	Assembly      ScriptAssembly   `json:"script_assembly"`
	VisualPrompts VisualPrompts    `json:"visual_prompts"`
	Metadata      YoutubeMetadata  `json:"youtube_metadata"`
}

// DailyContentRecord holds both regions' grids, assemblies and metadata for
// one publish date. Uniquely keyed by PublishDate.
type DailyContentRecord struct {
	ID               int64                       `json:"id"`
	PublishDate      string                      `json:"publish_date"` // YYYY-MM-DD, unique
	Regions          map[Region]*RegionalContent `json:"regions"`
	ExecutiveSummary string                      `json:"executive_summary"`
	Entities         []Entity                    `json:"entities"`
	ProductionStatus string                      `json:"production_status"` // draft | completed
	CreatedAt        time.Time                   `json:"created_at"`
	CompletedAt      *time.Time                  `json:"completed_at"`
}

// Deep dive status state machine.
const (
	DeepDiveNeedsFinetuning = "needs_finetuning"
	DeepDiveFinalized       = "finalized"
	DeepDiveArchived        = "archived"
)

// StrategicClash is the ideological-conflict core of a deep dive research payload.
type StrategicClash struct {
	SideALogic string `json:"side_a_logic"` // Why the new way is winning
	SideBFear  string `json:"side_b_fear"`  // Why the old guard is scared
	TheDeepWhy string `json:"the_deep_why"` // The hidden factor nobody talks about
}

// ResearchSource is one cited source in a deep dive research payload.
type ResearchSource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Reliability string `json:"reliability"` // 1-10
}

// DeepDiveResearch is the structured single-keyword research payload.
type DeepDiveResearch struct {
	Keyword       string           `json:"keyword"`
	Region        Region           `json:"region"`
	SimpleClash   string           `json:"simple_clash"`
	LeadMetric    string           `json:"lead_metric"`
	Clash         StrategicClash   `json:"strategic_clash"`
	VisualConcept string           `json:"visual_concept"`
	Sources       []ResearchSource `json:"sources"`
}

// DeepDiveRecord is a single-keyword research-to-script record. Metadata is
// stored only as individual fields; there is no JSON mirror for it.
type DeepDiveRecord struct {
	ID            string            `json:"id"` // UUID
	Keyword       string            `json:"keyword"`
	Region        Region            `json:"region"`
	Platform      Platform          `json:"platform"`
	SearchVolume  int64             `json:"search_volume"`
	Velocity      string            `json:"velocity"`
	Sentiment     string            `json:"sentiment"`
	Category      string            `json:"category"`
	Research      *DeepDiveResearch `json:"research_data"`
	Script        string            `json:"script_final"` // One flowing 120-130 word script
	Metadata      YoutubeMetadata   `json:"youtube_metadata"`
	VisualPrompts VisualPrompts     `json:"visual_prompts"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	FinalizedAt   *time.Time        `json:"finalized_at"`
}

// Entity is a named thing detected across the day's trend signals.
type Entity struct {
	Type          string   `json:"entity_type"` // person/hashtag/political/business/entertainment/sports/keyword
	Name          string   `json:"entity_name"`
	Keywords      []string `json:"keywords"`
	TotalMentions int64    `json:"total_mentions"`
	Regions       []string `json:"regions"`
	Context       string   `json:"context"`
	Sentiment     string   `json:"sentiment"`
	Role          string   `json:"role"` // Dominant category
}
