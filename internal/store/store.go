// Package store persists pipeline output in SQLite using a hybrid layout:
// analytics-facing fields are flattened into individual columns, while the
// full nested structures are mirrored as JSON documents alongside them. The
// flattened columns and the JSON mirror of a record are always written in the
// same statement, so they cannot drift.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pivotnote/internal/core"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database under dataDir and ensures the
// schema exists.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pivotnote.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	googleTrendsTable := `
	CREATE TABLE IF NOT EXISTS google_trends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL,
		keyword TEXT NOT NULL,
		rank INTEGER,
		volume INTEGER,
		velocity TEXT,
		category TEXT,
		context TEXT,
		why_trending TEXT,
		related_json TEXT,
		collected_at DATETIME
	);`

	twitterTrendsTable := `
	CREATE TABLE IF NOT EXISTS twitter_trends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL,
		keyword TEXT NOT NULL,
		rank INTEGER,
		volume INTEGER,
		velocity TEXT,
		sentiment TEXT,
		category TEXT,
		context TEXT,
		why_trending TEXT,
		related_json TEXT,
		collected_at DATETIME
	);`

	// One row per (analysis_date, region): the grid flattened into columns
	// for direct SQL analytics. No JSON mirror here; the mirror lives on the
	// daily content record.
	dailyInsightsTable := `
	CREATE TABLE IF NOT EXISTS daily_insights (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_date TEXT NOT NULL,
		region TEXT NOT NULL,
		executive_summary TEXT,
		theme_1_category TEXT, theme_1_title TEXT, theme_1_keywords TEXT,
		theme_1_mood TEXT, theme_1_data_signal TEXT, theme_1_context TEXT,
		theme_1_deep_why TEXT, theme_1_big_question TEXT,
		theme_2_category TEXT, theme_2_title TEXT, theme_2_keywords TEXT,
		theme_2_mood TEXT, theme_2_data_signal TEXT, theme_2_context TEXT,
		theme_2_deep_why TEXT, theme_2_big_question TEXT,
		anomaly_1_keyword TEXT, anomaly_1_velocity TEXT,
		anomaly_1_explanation TEXT, anomaly_1_big_question TEXT,
		anomaly_2_keyword TEXT, anomaly_2_velocity TEXT,
		anomaly_2_explanation TEXT, anomaly_2_big_question TEXT,
		overall_sentiment REAL,
		vibe_color_hex TEXT,
		vocal_tone TEXT,
		visual_background_prompt TEXT,
		created_at DATETIME,
		UNIQUE (analysis_date, region)
	);`

	// One row per publish date. Flattened youtube_* columns per region for
	// analytics, JSON mirrors of the nested structures for reconstruction.
	dailyContentTable := `
	CREATE TABLE IF NOT EXISTS daily_content_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		publish_date TEXT NOT NULL UNIQUE,
		executive_summary TEXT,
		india_script TEXT,
		india_grid_json TEXT,
		india_assembly_json TEXT,
		india_visual_prompts_json TEXT,
		india_youtube_title TEXT,
		india_youtube_description TEXT,
		india_youtube_hook TEXT,
		india_youtube_hashtags TEXT,
		india_youtube_pinned_comment TEXT,
		india_youtube_thumbnail_prompt TEXT,
		usa_script TEXT,
		usa_grid_json TEXT,
		usa_assembly_json TEXT,
		usa_visual_prompts_json TEXT,
		usa_youtube_title TEXT,
		usa_youtube_description TEXT,
		usa_youtube_hook TEXT,
		usa_youtube_hashtags TEXT,
		usa_youtube_pinned_comment TEXT,
		usa_youtube_thumbnail_prompt TEXT,
		entities_json TEXT,
		production_status TEXT NOT NULL DEFAULT 'draft',
		created_at DATETIME,
		completed_at DATETIME
	);`

	entitiesTable := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_date TEXT NOT NULL,
		entity_type TEXT,
		entity_name TEXT NOT NULL,
		keywords TEXT,
		total_mentions INTEGER,
		regions TEXT,
		context TEXT,
		sentiment TEXT,
		role TEXT,
		UNIQUE (analysis_date, entity_name)
	);`

	// Metadata is stored as individual columns only; the research payload and
	// visual prompts keep JSON documents.
	deepDiveTable := `
	CREATE TABLE IF NOT EXISTS deep_dive_research (
		id TEXT PRIMARY KEY,
		keyword TEXT NOT NULL,
		region TEXT NOT NULL,
		platform TEXT,
		search_volume INTEGER,
		velocity TEXT,
		sentiment TEXT,
		category TEXT,
		research_json TEXT,
		script_final TEXT,
		youtube_title TEXT,
		youtube_description TEXT,
		youtube_hook TEXT,
		youtube_hashtags TEXT,
		youtube_pinned_comment TEXT,
		youtube_thumbnail_prompt TEXT,
		visual_prompts_json TEXT,
		status TEXT NOT NULL DEFAULT 'needs_finetuning',
		created_at DATETIME,
		updated_at DATETIME,
		finalized_at DATETIME
	);`

	tables := []string{
		googleTrendsTable, twitterTrendsTable, dailyInsightsTable,
		dailyContentTable, entitiesTable, deepDiveTable,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertTrendSignals appends raw signals, routed to the per-platform table.
func (s *Store) InsertTrendSignals(signals []core.TrendSignal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	googleStmt, err := tx.Prepare(`
		INSERT INTO google_trends
		(region, keyword, rank, volume, velocity, category, context, why_trending, related_json, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare google insert: %w", err)
	}
	defer googleStmt.Close()

	twitterStmt, err := tx.Prepare(`
		INSERT INTO twitter_trends
		(region, keyword, rank, volume, velocity, sentiment, category, context, why_trending, related_json, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare twitter insert: %w", err)
	}
	defer twitterStmt.Close()

	for _, sig := range signals {
		related, _ := json.Marshal(sig.Related)
		collectedAt := sig.CollectedAt
		if collectedAt.IsZero() {
			collectedAt = time.Now().UTC()
		}

		switch sig.Platform {
		case core.PlatformTwitter:
			_, err = twitterStmt.Exec(string(sig.Region), sig.Keyword, sig.Rank, sig.Volume,
				sig.Velocity, sig.Sentiment, sig.Category, sig.Context, sig.WhyTrending,
				string(related), collectedAt)
		default:
			_, err = googleStmt.Exec(string(sig.Region), sig.Keyword, sig.Rank, sig.Volume,
				sig.Velocity, sig.Category, sig.Context, sig.WhyTrending,
				string(related), collectedAt)
		}
		if err != nil {
			return fmt.Errorf("failed to insert signal %q: %w", sig.Keyword, err)
		}
	}
	return tx.Commit()
}

// UpsertInsights writes one region's flattened grid for its analysis date.
// Re-running the same date replaces the row rather than duplicating it.
func (s *Store) UpsertInsights(grid core.IntelligenceGrid, executiveSummary string) error {
	theme1 := grid.Theme(1)
	theme2 := grid.Theme(2)
	anomaly1 := grid.Anomaly(1)
	anomaly2 := grid.Anomaly(2)
	if theme1 == nil || theme2 == nil || anomaly1 == nil || anomaly2 == nil {
		return fmt.Errorf("cannot persist a grid without both theme slots and both anomalies")
	}

	theme1Keywords, _ := json.Marshal(theme1.Keywords)
	theme2Keywords, _ := json.Marshal(theme2.Keywords)

	query := `
	INSERT INTO daily_insights
	(analysis_date, region, executive_summary,
	 theme_1_category, theme_1_title, theme_1_keywords, theme_1_mood,
	 theme_1_data_signal, theme_1_context, theme_1_deep_why, theme_1_big_question,
	 theme_2_category, theme_2_title, theme_2_keywords, theme_2_mood,
	 theme_2_data_signal, theme_2_context, theme_2_deep_why, theme_2_big_question,
	 anomaly_1_keyword, anomaly_1_velocity, anomaly_1_explanation, anomaly_1_big_question,
	 anomaly_2_keyword, anomaly_2_velocity, anomaly_2_explanation, anomaly_2_big_question,
	 overall_sentiment, vibe_color_hex, vocal_tone, visual_background_prompt, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (analysis_date, region) DO UPDATE SET
		executive_summary = excluded.executive_summary,
		theme_1_category = excluded.theme_1_category,
		theme_1_title = excluded.theme_1_title,
		theme_1_keywords = excluded.theme_1_keywords,
		theme_1_mood = excluded.theme_1_mood,
		theme_1_data_signal = excluded.theme_1_data_signal,
		theme_1_context = excluded.theme_1_context,
		theme_1_deep_why = excluded.theme_1_deep_why,
		theme_1_big_question = excluded.theme_1_big_question,
		theme_2_category = excluded.theme_2_category,
		theme_2_title = excluded.theme_2_title,
		theme_2_keywords = excluded.theme_2_keywords,
		theme_2_mood = excluded.theme_2_mood,
		theme_2_data_signal = excluded.theme_2_data_signal,
		theme_2_context = excluded.theme_2_context,
		theme_2_deep_why = excluded.theme_2_deep_why,
		theme_2_big_question = excluded.theme_2_big_question,
		anomaly_1_keyword = excluded.anomaly_1_keyword,
		anomaly_1_velocity = excluded.anomaly_1_velocity,
		anomaly_1_explanation = excluded.anomaly_1_explanation,
		anomaly_1_big_question = excluded.anomaly_1_big_question,
		anomaly_2_keyword = excluded.anomaly_2_keyword,
		anomaly_2_velocity = excluded.anomaly_2_velocity,
		anomaly_2_explanation = excluded.anomaly_2_explanation,
		anomaly_2_big_question = excluded.anomaly_2_big_question,
		overall_sentiment = excluded.overall_sentiment,
		vibe_color_hex = excluded.vibe_color_hex,
		vocal_tone = excluded.vocal_tone,
		visual_background_prompt = excluded.visual_background_prompt`

	_, err := s.db.Exec(query,
		grid.AnalysisDate, string(grid.Region), executiveSummary,
		theme1.Category, theme1.Theme, string(theme1Keywords), theme1.Mood,
		theme1.DataSignal, theme1.Context, theme1.DeepWhy, theme1.BigQuestion,
		theme2.Category, theme2.Theme, string(theme2Keywords), theme2.Mood,
		theme2.DataSignal, theme2.Context, theme2.DeepWhy, theme2.BigQuestion,
		anomaly1.Keyword, anomaly1.Velocity, anomaly1.Explanation, anomaly1.BigQuestion,
		anomaly2.Keyword, anomaly2.Velocity, anomaly2.Explanation, anomaly2.BigQuestion,
		grid.ProductionMood.OverallSentiment, grid.ProductionMood.VibeColorHex,
		grid.ProductionMood.VocalTone, grid.ProductionMood.VisualBackgroundPrompt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily insights: %w", err)
	}
	return nil
}

// regionColumns is the flattened column set written for one region of a
// daily content record, in statement order.
func regionColumns(content *core.RegionalContent) ([]any, error) {
	if content == nil {
		return []any{"", "", "", "", "", "", "", "", "", ""}, nil
	}
	gridJSON, err := json.Marshal(content.Grid)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}
	assemblyJSON, err := json.Marshal(content.Assembly)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assembly: %w", err)
	}
	visualJSON, err := json.Marshal(content.VisualPrompts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode visual prompts: %w", err)
	}
	hashtags, _ := json.Marshal(content.Metadata.Hashtags)

	return []any{
		content.Script,
		string(gridJSON),
		string(assemblyJSON),
		string(visualJSON),
		content.Metadata.Title,
		content.Metadata.Description,
		content.Metadata.Hook,
		string(hashtags),
		content.Metadata.PinnedComment,
		content.Metadata.ThumbnailPrompt,
	}, nil
}

// UpsertDailyContent writes the full record for its publish date. Re-running
// the pipeline for the same date replaces the content but never creates a
// second row.
func (s *Store) UpsertDailyContent(record *core.DailyContentRecord) error {
	indiaCols, err := regionColumns(record.Regions[core.RegionIndia])
	if err != nil {
		return err
	}
	usaCols, err := regionColumns(record.Regions[core.RegionUSA])
	if err != nil {
		return err
	}
	entitiesJSON, _ := json.Marshal(record.Entities)

	status := record.ProductionStatus
	if status == "" {
		status = core.StatusDraft
	}

	query := `
	INSERT INTO daily_content_records
	(publish_date, executive_summary,
	 india_script, india_grid_json, india_assembly_json, india_visual_prompts_json,
	 india_youtube_title, india_youtube_description, india_youtube_hook,
	 india_youtube_hashtags, india_youtube_pinned_comment, india_youtube_thumbnail_prompt,
	 usa_script, usa_grid_json, usa_assembly_json, usa_visual_prompts_json,
	 usa_youtube_title, usa_youtube_description, usa_youtube_hook,
	 usa_youtube_hashtags, usa_youtube_pinned_comment, usa_youtube_thumbnail_prompt,
	 entities_json, production_status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (publish_date) DO UPDATE SET
		executive_summary = excluded.executive_summary,
		india_script = excluded.india_script,
		india_grid_json = excluded.india_grid_json,
		india_assembly_json = excluded.india_assembly_json,
		india_visual_prompts_json = excluded.india_visual_prompts_json,
		india_youtube_title = excluded.india_youtube_title,
		india_youtube_description = excluded.india_youtube_description,
		india_youtube_hook = excluded.india_youtube_hook,
		india_youtube_hashtags = excluded.india_youtube_hashtags,
		india_youtube_pinned_comment = excluded.india_youtube_pinned_comment,
		india_youtube_thumbnail_prompt = excluded.india_youtube_thumbnail_prompt,
		usa_script = excluded.usa_script,
		usa_grid_json = excluded.usa_grid_json,
		usa_assembly_json = excluded.usa_assembly_json,
		usa_visual_prompts_json = excluded.usa_visual_prompts_json,
		usa_youtube_title = excluded.usa_youtube_title,
		usa_youtube_description = excluded.usa_youtube_description,
		usa_youtube_hook = excluded.usa_youtube_hook,
		usa_youtube_hashtags = excluded.usa_youtube_hashtags,
		usa_youtube_pinned_comment = excluded.usa_youtube_pinned_comment,
		usa_youtube_thumbnail_prompt = excluded.usa_youtube_thumbnail_prompt,
		entities_json = excluded.entities_json,
		production_status = excluded.production_status`

	args := []any{record.PublishDate, record.ExecutiveSummary}
	args = append(args, indiaCols...)
	args = append(args, usaCols...)
	args = append(args, string(entitiesJSON), status, time.Now().UTC())

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert daily content: %w", err)
	}
	return nil
}

// GetDailyContent loads the record for a publish date, rebuilding the nested
// structures from the JSON mirrors.
func (s *Store) GetDailyContent(publishDate string) (*core.DailyContentRecord, error) {
	query := `
	SELECT id, publish_date, executive_summary,
	       india_script, india_grid_json, india_assembly_json, india_visual_prompts_json,
	       india_youtube_title, india_youtube_description, india_youtube_hook,
	       india_youtube_hashtags, india_youtube_pinned_comment, india_youtube_thumbnail_prompt,
	       usa_script, usa_grid_json, usa_assembly_json, usa_visual_prompts_json,
	       usa_youtube_title, usa_youtube_description, usa_youtube_hook,
	       usa_youtube_hashtags, usa_youtube_pinned_comment, usa_youtube_thumbnail_prompt,
	       entities_json, production_status, created_at, completed_at
	FROM daily_content_records
	WHERE publish_date = ?`

	row := s.db.QueryRow(query, publishDate)

	record := &core.DailyContentRecord{Regions: map[core.Region]*core.RegionalContent{}}
	india := &core.RegionalContent{}
	usa := &core.RegionalContent{}
	var indiaGrid, indiaAssembly, indiaVisual, indiaHashtags string
	var usaGrid, usaAssembly, usaVisual, usaHashtags string
	var entitiesJSON string
	var completedAt sql.NullTime

	err := row.Scan(
		&record.ID, &record.PublishDate, &record.ExecutiveSummary,
		&india.Script, &indiaGrid, &indiaAssembly, &indiaVisual,
		&india.Metadata.Title, &india.Metadata.Description, &india.Metadata.Hook,
		&indiaHashtags, &india.Metadata.PinnedComment, &india.Metadata.ThumbnailPrompt,
		&usa.Script, &usaGrid, &usaAssembly, &usaVisual,
		&usa.Metadata.Title, &usa.Metadata.Description, &usa.Metadata.Hook,
		&usaHashtags, &usa.Metadata.PinnedComment, &usa.Metadata.ThumbnailPrompt,
		&entitiesJSON, &record.ProductionStatus, &record.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily content: %w", err)
	}

	decodeRegion(india, indiaGrid, indiaAssembly, indiaVisual, indiaHashtags)
	decodeRegion(usa, usaGrid, usaAssembly, usaVisual, usaHashtags)
	if india.Script != "" || indiaGrid != "" {
		record.Regions[core.RegionIndia] = india
	}
	if usa.Script != "" || usaGrid != "" {
		record.Regions[core.RegionUSA] = usa
	}
	if entitiesJSON != "" {
		json.Unmarshal([]byte(entitiesJSON), &record.Entities)
	}
	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}
	return record, nil
}

func decodeRegion(content *core.RegionalContent, gridJSON, assemblyJSON, visualJSON, hashtagsJSON string) {
	if gridJSON != "" {
		json.Unmarshal([]byte(gridJSON), &content.Grid)
	}
	if assemblyJSON != "" {
		json.Unmarshal([]byte(assemblyJSON), &content.Assembly)
	}
	if visualJSON != "" {
		json.Unmarshal([]byte(visualJSON), &content.VisualPrompts)
	}
	if hashtagsJSON != "" {
		json.Unmarshal([]byte(hashtagsJSON), &content.Metadata.Hashtags)
	}
}

// UpdateProductionStatus moves a daily record between draft and completed.
// Completion is refused while any youtube metadata column for a populated
// region is still empty; a completed record must be queryable without nulls.
func (s *Store) UpdateProductionStatus(publishDate, status string) error {
	if status != core.StatusDraft && status != core.StatusCompleted {
		return fmt.Errorf("unknown production status %q", status)
	}

	if status == core.StatusCompleted {
		record, err := s.GetDailyContent(publishDate)
		if err != nil {
			return err
		}
		if len(record.Regions) == 0 {
			return fmt.Errorf("%w: no regional content for %s", ErrIncompleteMetadata, publishDate)
		}
		for region, content := range record.Regions {
			meta := content.Metadata
			if meta.Title == "" || meta.Description == "" || meta.Hook == "" ||
				len(meta.Hashtags) == 0 || meta.PinnedComment == "" || meta.ThumbnailPrompt == "" {
				return fmt.Errorf("%w: %s metadata incomplete for %s", ErrIncompleteMetadata, region, publishDate)
			}
		}
	}

	var completedAt any
	if status == core.StatusCompleted {
		completedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`UPDATE daily_content_records SET production_status = ?, completed_at = ? WHERE publish_date = ?`,
		status, completedAt, publishDate)
	if err != nil {
		return fmt.Errorf("failed to update production status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertEntities replaces the entity set for an analysis date.
func (s *Store) InsertEntities(analysisDate string, entities []core.Entity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entities WHERE analysis_date = ?`, analysisDate); err != nil {
		return fmt.Errorf("failed to clear entities: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entities
		(analysis_date, entity_type, entity_name, keywords, total_mentions, regions, context, sentiment, role)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare entity insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		keywords, _ := json.Marshal(e.Keywords)
		regions, _ := json.Marshal(e.Regions)
		if _, err := stmt.Exec(analysisDate, e.Type, e.Name, string(keywords),
			e.TotalMentions, string(regions), e.Context, e.Sentiment, e.Role); err != nil {
			return fmt.Errorf("failed to insert entity %q: %w", e.Name, err)
		}
	}
	return tx.Commit()
}

// UpsertDeepDive writes a deep dive record keyed by its UUID.
func (s *Store) UpsertDeepDive(record *core.DeepDiveRecord) error {
	if record.ID == "" {
		return fmt.Errorf("deep dive record requires an id")
	}
	researchJSON, err := json.Marshal(record.Research)
	if err != nil {
		return fmt.Errorf("failed to encode research: %w", err)
	}
	visualJSON, _ := json.Marshal(record.VisualPrompts)
	hashtags, _ := json.Marshal(record.Metadata.Hashtags)

	status := record.Status
	if status == "" {
		status = core.DeepDiveNeedsFinetuning
	}
	now := time.Now().UTC()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
	INSERT INTO deep_dive_research
	(id, keyword, region, platform, search_volume, velocity, sentiment, category,
	 research_json, script_final,
	 youtube_title, youtube_description, youtube_hook, youtube_hashtags,
	 youtube_pinned_comment, youtube_thumbnail_prompt,
	 visual_prompts_json, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		keyword = excluded.keyword,
		region = excluded.region,
		platform = excluded.platform,
		search_volume = excluded.search_volume,
		velocity = excluded.velocity,
		sentiment = excluded.sentiment,
		category = excluded.category,
		research_json = excluded.research_json,
		script_final = excluded.script_final,
		youtube_title = excluded.youtube_title,
		youtube_description = excluded.youtube_description,
		youtube_hook = excluded.youtube_hook,
		youtube_hashtags = excluded.youtube_hashtags,
		youtube_pinned_comment = excluded.youtube_pinned_comment,
		youtube_thumbnail_prompt = excluded.youtube_thumbnail_prompt,
		visual_prompts_json = excluded.visual_prompts_json,
		status = excluded.status,
		updated_at = excluded.updated_at`

	_, err = s.db.Exec(query,
		record.ID, record.Keyword, string(record.Region), string(record.Platform),
		record.SearchVolume, record.Velocity, record.Sentiment, record.Category,
		string(researchJSON), record.Script,
		record.Metadata.Title, record.Metadata.Description, record.Metadata.Hook,
		string(hashtags), record.Metadata.PinnedComment, record.Metadata.ThumbnailPrompt,
		string(visualJSON), status, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deep dive: %w", err)
	}
	return nil
}

// GetDeepDive loads one deep dive record by id.
func (s *Store) GetDeepDive(id string) (*core.DeepDiveRecord, error) {
	query := `
	SELECT id, keyword, region, platform, search_volume, velocity, sentiment, category,
	       research_json, script_final,
	       youtube_title, youtube_description, youtube_hook, youtube_hashtags,
	       youtube_pinned_comment, youtube_thumbnail_prompt,
	       visual_prompts_json, status, created_at, updated_at, finalized_at
	FROM deep_dive_research
	WHERE id = ?`

	row := s.db.QueryRow(query, id)

	record := &core.DeepDiveRecord{}
	var region, platform string
	var researchJSON, hashtagsJSON, visualJSON string
	var finalizedAt sql.NullTime

	err := row.Scan(
		&record.ID, &record.Keyword, &region, &platform,
		&record.SearchVolume, &record.Velocity, &record.Sentiment, &record.Category,
		&researchJSON, &record.Script,
		&record.Metadata.Title, &record.Metadata.Description, &record.Metadata.Hook,
		&hashtagsJSON, &record.Metadata.PinnedComment, &record.Metadata.ThumbnailPrompt,
		&visualJSON, &record.Status, &record.CreatedAt, &record.UpdatedAt, &finalizedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan deep dive: %w", err)
	}

	record.Region = core.Region(region)
	record.Platform = core.Platform(platform)
	if researchJSON != "" && researchJSON != "null" {
		json.Unmarshal([]byte(researchJSON), &record.Research)
	}
	if hashtagsJSON != "" {
		json.Unmarshal([]byte(hashtagsJSON), &record.Metadata.Hashtags)
	}
	if visualJSON != "" {
		json.Unmarshal([]byte(visualJSON), &record.VisualPrompts)
	}
	if finalizedAt.Valid {
		record.FinalizedAt = &finalizedAt.Time
	}
	return record, nil
}

// deepDiveTransitions is the allowed status state machine.
var deepDiveTransitions = map[string][]string{
	core.DeepDiveNeedsFinetuning: {core.DeepDiveFinalized, core.DeepDiveArchived},
	core.DeepDiveFinalized:       {core.DeepDiveArchived},
}

// UpdateDeepDiveStatus moves a deep dive record through its state machine.
// Finalizing stamps finalized_at.
func (s *Store) UpdateDeepDiveStatus(id, status string) error {
	record, err := s.GetDeepDive(id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range deepDiveTransitions[record.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, record.Status, status)
	}

	now := time.Now().UTC()
	var finalizedAt any
	if record.FinalizedAt != nil {
		finalizedAt = *record.FinalizedAt
	}
	if status == core.DeepDiveFinalized {
		finalizedAt = now
	}
	_, err = s.db.Exec(
		`UPDATE deep_dive_research SET status = ?, updated_at = ?, finalized_at = ? WHERE id = ?`,
		status, now, finalizedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update deep dive status: %w", err)
	}
	return nil
}

// ListDeepDives returns deep dive records, newest first, optionally filtered
// by status.
func (s *Store) ListDeepDives(status string) ([]*core.DeepDiveRecord, error) {
	query := `SELECT id FROM deep_dive_research`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deep dives: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deep dive id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]*core.DeepDiveRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.GetDeepDive(id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
