// Package memory implements the persistent project memory for Inkwell.
//
// It stores novel projects together with their characters, plots, world
// elements, scenes, and writing sessions in SQLite, and mirrors every
// searchable entity into an FTS5 virtual table that database triggers keep
// in exact sync with the entity lifecycle.
package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Types ───────────────────────────────────────────────────────────────────

// Content types mirrored into the search index.
const (
	ContentTypeCharacter = "character"
	ContentTypePlot      = "plot"
	ContentTypeWorld     = "world_building"
)

// Character importance levels, most central first.
const (
	ImportanceMain       = "main"
	ImportanceSupporting = "supporting"
	ImportanceMinor      = "minor"
)

// Plot line kinds.
const (
	PlotTypeMain    = "main"
	PlotTypeSubplot = "subplot"
	PlotTypeArc     = "arc"
)

// Plot and scene statuses. Scenes use the subset without 'active'.
const (
	StatusPlanned  = "planned"
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusComplete = "complete"
)

// World element categories.
const (
	CategoryLocation   = "location"
	CategoryCulture    = "culture"
	CategoryHistory    = "history"
	CategoryRules      = "rules"
	CategoryTechnology = "technology"
)

// Project is a single novel or writing project.
type Project struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Genre        string `json:"genre,omitempty"`
	TargetWords  int    `json:"target_words"`
	CurrentWords int    `json:"current_words"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Character is a member of a project's cast.
type Character struct {
	ID            int64             `json:"id"`
	ProjectID     int64             `json:"project_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Personality   string            `json:"personality,omitempty"`
	Backstory     string            `json:"backstory,omitempty"`
	Appearance    string            `json:"appearance,omitempty"`
	Relationships map[string]string `json:"relationships"`
	Importance    string            `json:"importance"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// Plot is a story line within a project.
type Plot struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PlotType    string `json:"plot_type"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// WorldElement is a piece of setting lore: a place, a culture, a slice of
// history, a rule system such as magic or law, or a technology.
type WorldElement struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Details     string `json:"details,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Scene is a draft unit of manuscript text. Scenes are not mirrored into the
// search index.
type Scene struct {
	ID            int64  `json:"id"`
	ProjectID     int64  `json:"project_id"`
	ChapterNumber int    `json:"chapter_number"`
	SceneNumber   int    `json:"scene_number"`
	Title         string `json:"title,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Content       string `json:"content,omitempty"`
	WordCount     int    `json:"word_count"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// WritingSession is one logged stretch of writing.
type WritingSession struct {
	ID              int64  `json:"id"`
	ProjectID       int64  `json:"project_id"`
	WordsWritten    int    `json:"words_written"`
	DurationMinutes int    `json:"duration_minutes"`
	SessionDate     string `json:"session_date"`
}

// SearchResult is one full-text match from the memory index.
type SearchResult struct {
	ContentType string  `json:"content_type"`
	ProjectID   int64   `json:"project_id"`
	EntityID    int64   `json:"entity_id"`
	Title       string  `json:"title"`
	Snippet     string  `json:"snippet"`
	Metadata    string  `json:"metadata,omitempty"`
	Rank        float64 `json:"rank"`
}

// SearchOptions holds filters for full-text search queries.
type SearchOptions struct {
	ProjectID    int64    `json:"project_id,omitempty"`
	ContentTypes []string `json:"content_types,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// ProjectParams holds the optional fields for creating a project.
type ProjectParams struct {
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	TargetWords int    `json:"target_words,omitempty"`
}

// UpdateProjectParams holds partial update fields for a project.
type UpdateProjectParams struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	TargetWords  *int    `json:"target_words,omitempty"`
	CurrentWords *int    `json:"current_words,omitempty"`
}

// CharacterParams holds the optional fields for creating a character.
type CharacterParams struct {
	Description   string            `json:"description,omitempty"`
	Personality   string            `json:"personality,omitempty"`
	Backstory     string            `json:"backstory,omitempty"`
	Appearance    string            `json:"appearance,omitempty"`
	Relationships map[string]string `json:"relationships,omitempty"`
	Importance    string            `json:"importance,omitempty"`
}

// UpdateCharacterParams holds partial update fields for a character.
// A nil Relationships map means "leave unchanged".
type UpdateCharacterParams struct {
	Name          *string           `json:"name,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Personality   *string           `json:"personality,omitempty"`
	Backstory     *string           `json:"backstory,omitempty"`
	Appearance    *string           `json:"appearance,omitempty"`
	Relationships map[string]string `json:"relationships,omitempty"`
	Importance    *string           `json:"importance,omitempty"`
}

// PlotParams holds the optional fields for creating a plot line.
type PlotParams struct {
	Description string `json:"description,omitempty"`
	PlotType    string `json:"plot_type,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpdatePlotParams holds partial update fields for a plot line.
type UpdatePlotParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PlotType    *string `json:"plot_type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// WorldElementParams holds the optional fields for creating a world element.
type WorldElementParams struct {
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Details     string `json:"details,omitempty"`
}

// UpdateWorldElementParams holds partial update fields for a world element.
type UpdateWorldElementParams struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Details     *string `json:"details,omitempty"`
}

// SceneParams holds the fields for creating a scene.
type SceneParams struct {
	ChapterNumber int    `json:"chapter_number"`
	SceneNumber   int    `json:"scene_number"`
	Title         string `json:"title,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Content       string `json:"content,omitempty"`
	WordCount     int    `json:"word_count,omitempty"`
	Status        string `json:"status,omitempty"`
}

// UpdateSceneParams holds partial update fields for a scene.
type UpdateSceneParams struct {
	ChapterNumber *int    `json:"chapter_number,omitempty"`
	SceneNumber   *int    `json:"scene_number,omitempty"`
	Title         *string `json:"title,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Content       *string `json:"content,omitempty"`
	WordCount     *int    `json:"word_count,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// DailyStat is one day's aggregated writing activity.
type DailyStat struct {
	Date    string `json:"date"`
	Words   int    `json:"words"`
	Minutes int    `json:"minutes"`
}

// SessionTotals aggregates writing sessions over a stats window.
type SessionTotals struct {
	WritingDays        int     `json:"writing_days"`
	TotalWords         int     `json:"total_words"`
	TotalMinutes       int     `json:"total_minutes"`
	AvgWordsPerSession float64 `json:"avg_words_per_session"`
	BestSession        int     `json:"best_session"`
}

// WritingStats is the full analytics report for a stats window.
type WritingStats struct {
	Daily      []DailyStat   `json:"daily"`
	Totals     SessionTotals `json:"totals"`
	PeriodDays int           `json:"period_days"`
}

// SceneProgress summarizes scene completion for a project.
type SceneProgress struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// WordProgress summarizes word-count progress toward a project target.
type WordProgress struct {
	Current  int     `json:"current"`
	Target   int     `json:"target"`
	Progress float64 `json:"progress"`
}

// ProjectStatsReport is the full per-project statistics snapshot.
type ProjectStatsReport struct {
	Project       Project       `json:"project"`
	Characters    int           `json:"characters"`
	Plots         int           `json:"plots"`
	WorldElements int           `json:"world_elements"`
	Scenes        SceneProgress `json:"scenes"`
	Words         WordProgress  `json:"words"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds memory store configuration.
type Config struct {
	DataDir          string
	DatabaseFile     string
	BusyTimeout      time.Duration
	MaxSearchResults int
	Logger           *zap.Logger
}

// DefaultConfig returns the default configuration for the memory store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".inkwell"),
		DatabaseFile:     "memory.db",
		BusyTimeout:      30 * time.Second,
		MaxSearchResults: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent project memory backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
	log *zap.Logger
}

type rowQueryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, verifies FTS5 support,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = "memory.db"
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 30 * time.Second
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 20
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, dbError("creating data directory", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.DatabaseFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, dbError("opening database", err)
	}

	// foreign_keys and busy_timeout are connection-scoped in SQLite; a
	// single pooled connection keeps the pragmas below in force for every
	// statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, dbError(fmt.Sprintf("applying pragma %q", p), err)
		}
	}

	s := &Store{db: db, cfg: cfg, log: log}

	// FTS5 is a hard requirement: the search index cannot exist without it.
	var ftsVersion string
	if err := db.QueryRow("SELECT fts5_source_id()").Scan(&ftsVersion); err != nil {
		_ = db.Close()
		return nil, dbError("verifying fts5 support", err)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, dbError("running migrations", err)
	}

	log.Debug("memory store opened",
		zap.String("path", dbPath),
		zap.String("fts5_version", ftsVersion),
	)
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

const schemaVersion = 1

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS projects (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT    NOT NULL UNIQUE,
			description   TEXT    NOT NULL DEFAULT '',
			genre         TEXT    NOT NULL DEFAULT '',
			target_words  INTEGER NOT NULL DEFAULT 0,
			current_words INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS characters (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id    INTEGER NOT NULL,
			name          TEXT    NOT NULL,
			description   TEXT    NOT NULL DEFAULT '',
			personality   TEXT    NOT NULL DEFAULT '',
			backstory     TEXT    NOT NULL DEFAULT '',
			appearance    TEXT    NOT NULL DEFAULT '',
			relationships TEXT    NOT NULL DEFAULT '{}',
			importance    TEXT    NOT NULL DEFAULT 'minor',
			created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at    TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS plots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  INTEGER NOT NULL,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			plot_type   TEXT    NOT NULL DEFAULT 'main',
			status      TEXT    NOT NULL DEFAULT 'planned',
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS world_building (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  INTEGER NOT NULL,
			name        TEXT    NOT NULL,
			category    TEXT    NOT NULL DEFAULT 'location',
			description TEXT    NOT NULL DEFAULT '',
			details     TEXT    NOT NULL DEFAULT '',
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS scenes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id     INTEGER NOT NULL,
			chapter_number INTEGER NOT NULL DEFAULT 0,
			scene_number   INTEGER NOT NULL DEFAULT 0,
			title          TEXT    NOT NULL DEFAULT '',
			summary        TEXT    NOT NULL DEFAULT '',
			content        TEXT    NOT NULL DEFAULT '',
			word_count     INTEGER NOT NULL DEFAULT 0,
			status         TEXT    NOT NULL DEFAULT 'planned',
			created_at     TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at     TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS writing_sessions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id       INTEGER NOT NULL,
			words_written    INTEGER NOT NULL DEFAULT 0,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			session_date     TEXT    NOT NULL DEFAULT (date('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_characters_project ON characters(project_id);
		CREATE INDEX IF NOT EXISTS idx_plots_project      ON plots(project_id);
		CREATE INDEX IF NOT EXISTS idx_world_project      ON world_building(project_id);
		CREATE INDEX IF NOT EXISTS idx_scenes_project     ON scenes(project_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_project   ON writing_sessions(project_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_project_date ON writing_sessions(project_id, session_date);

		CREATE VIRTUAL TABLE IF NOT EXISTS memory_search USING fts5(
			content_type,
			project_id UNINDEXED,
			entity_id UNINDEXED,
			title,
			content,
			metadata
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion,
	); err != nil {
		return err
	}

	// Create FTS sync triggers (idempotent). memory_search is a standalone
	// FTS5 table, so updates and deletes address it directly by
	// (content_type, entity_id).
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='characters_search_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER characters_search_insert AFTER INSERT ON characters BEGIN
				INSERT INTO memory_search(content_type, project_id, entity_id, title, content, metadata)
				VALUES ('character', new.project_id, new.id, new.name,
				        new.description || ' ' || new.personality || ' ' || new.backstory || ' ' || new.appearance,
				        json_object('importance', new.importance, 'relationships', new.relationships));
			END;

			CREATE TRIGGER characters_search_update AFTER UPDATE ON characters BEGIN
				UPDATE memory_search
				SET title    = new.name,
				    content  = new.description || ' ' || new.personality || ' ' || new.backstory || ' ' || new.appearance,
				    metadata = json_object('importance', new.importance, 'relationships', new.relationships)
				WHERE content_type = 'character' AND entity_id = new.id;
			END;

			CREATE TRIGGER characters_search_delete AFTER DELETE ON characters BEGIN
				DELETE FROM memory_search WHERE content_type = 'character' AND entity_id = old.id;
			END;

			CREATE TRIGGER plots_search_insert AFTER INSERT ON plots BEGIN
				INSERT INTO memory_search(content_type, project_id, entity_id, title, content, metadata)
				VALUES ('plot', new.project_id, new.id, new.title, new.description,
				        json_object('plot_type', new.plot_type, 'status', new.status));
			END;

			CREATE TRIGGER plots_search_update AFTER UPDATE ON plots BEGIN
				UPDATE memory_search
				SET title    = new.title,
				    content  = new.description,
				    metadata = json_object('plot_type', new.plot_type, 'status', new.status)
				WHERE content_type = 'plot' AND entity_id = new.id;
			END;

			CREATE TRIGGER plots_search_delete AFTER DELETE ON plots BEGIN
				DELETE FROM memory_search WHERE content_type = 'plot' AND entity_id = old.id;
			END;

			CREATE TRIGGER world_search_insert AFTER INSERT ON world_building BEGIN
				INSERT INTO memory_search(content_type, project_id, entity_id, title, content, metadata)
				VALUES ('world_building', new.project_id, new.id, new.name,
				        new.description || ' ' || new.details,
				        json_object('category', new.category));
			END;

			CREATE TRIGGER world_search_update AFTER UPDATE ON world_building BEGIN
				UPDATE memory_search
				SET title    = new.name,
				    content  = new.description || ' ' || new.details,
				    metadata = json_object('category', new.category)
				WHERE content_type = 'world_building' AND entity_id = new.id;
			END;

			CREATE TRIGGER world_search_delete AFTER DELETE ON world_building BEGIN
				DELETE FROM memory_search WHERE content_type = 'world_building' AND entity_id = old.id;
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	}

	return nil
}

// ─── Validation ──────────────────────────────────────────────────────────────

const maxNameLength = 255

// cleanName trims and validates a primary name or title field.
func cleanName(what, s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", validationf("%s cannot be empty", what)
	}
	if len(v) > maxNameLength {
		return "", validationf("%s exceeds %d characters", what, maxNameLength)
	}
	return v, nil
}

// requireProject fails with a ValidationError when the project id is
// malformed or the project does not exist.
func requireProject(q rowQueryer, projectID int64) error {
	if projectID <= 0 {
		return validationf("project id must be positive, got %d", projectID)
	}
	var one int
	err := q.QueryRow(`SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
	if err == sql.ErrNoRows {
		return validationf("project %d not found", projectID)
	}
	if err != nil {
		return dbError("checking project", err)
	}
	return nil
}

func requireID(what string, id int64) error {
	if id <= 0 {
		return validationf("%s id must be positive, got %d", what, id)
	}
	return nil
}

func validImportance(v string) bool {
	switch v {
	case ImportanceMain, ImportanceSupporting, ImportanceMinor:
		return true
	}
	return false
}

func validPlotType(v string) bool {
	switch v {
	case PlotTypeMain, PlotTypeSubplot, PlotTypeArc:
		return true
	}
	return false
}

func validPlotStatus(v string) bool {
	switch v {
	case StatusPlanned, StatusActive, StatusDraft, StatusComplete:
		return true
	}
	return false
}

func validSceneStatus(v string) bool {
	switch v {
	case StatusPlanned, StatusDraft, StatusComplete:
		return true
	}
	return false
}

func validCategory(v string) bool {
	switch v {
	case CategoryLocation, CategoryCulture, CategoryHistory, CategoryRules, CategoryTechnology:
		return true
	}
	return false
}

func validContentType(v string) bool {
	switch v {
	case ContentTypeCharacter, ContentTypePlot, ContentTypeWorld:
		return true
	}
	return false
}

// ─── Projects ────────────────────────────────────────────────────────────────

// CreateProject creates a new writing project and returns its id.
func (s *Store) CreateProject(name string, p ProjectParams) (int64, error) {
	name, err := cleanName("project name", name)
	if err != nil {
		return 0, err
	}
	if p.TargetWords < 0 {
		return 0, validationf("target word count cannot be negative, got %d", p.TargetWords)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("creating project", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO projects (name, description, genre, target_words) VALUES (?, ?, ?, ?)`,
		name, p.Description, p.Genre, p.TargetWords,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, validationf("project %q already exists", name)
		}
		return 0, dbError("creating project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("creating project", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("creating project", err)
	}

	s.log.Info("project created", zap.Int64("id", id), zap.String("name", name))
	return id, nil
}

// GetProject retrieves a project by id. A missing project returns (nil, nil).
func (s *Store) GetProject(id int64) (*Project, error) {
	if err := requireID("project", id); err != nil {
		return nil, err
	}
	return s.scanProject(s.db.QueryRow(
		`SELECT id, name, description, genre, target_words, current_words, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	))
}

// GetProjectByName retrieves a project by its unique name. A missing project
// returns (nil, nil).
func (s *Store) GetProjectByName(name string) (*Project, error) {
	name, err := cleanName("project name", name)
	if err != nil {
		return nil, err
	}
	return s.scanProject(s.db.QueryRow(
		`SELECT id, name, description, genre, target_words, current_words, created_at, updated_at
		 FROM projects WHERE name = ?`, name,
	))
}

func (s *Store) scanProject(row *sql.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Genre,
		&p.TargetWords, &p.CurrentWords, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("reading project", err)
	}
	return &p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, genre, target_words, current_words, created_at, updated_at
		 FROM projects ORDER BY updated_at DESC, id DESC`,
	)
	if err != nil {
		return nil, dbError("listing projects", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Genre,
			&p.TargetWords, &p.CurrentWords, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, dbError("listing projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("listing projects", err)
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of p and reports whether a row
// changed. Updating nothing is not an error and reports false.
func (s *Store) UpdateProject(id int64, p UpdateProjectParams) (bool, error) {
	if err := requireID("project", id); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if p.Name != nil {
		name, err := cleanName("project name", *p.Name)
		if err != nil {
			return false, err
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *p.Genre)
	}
	if p.TargetWords != nil {
		if *p.TargetWords < 0 {
			return false, validationf("target word count cannot be negative, got %d", *p.TargetWords)
		}
		sets = append(sets, "target_words = ?")
		args = append(args, *p.TargetWords)
	}
	if p.CurrentWords != nil {
		if *p.CurrentWords < 0 {
			return false, validationf("current word count cannot be negative, got %d", *p.CurrentWords)
		}
		sets = append(sets, "current_words = ?")
		args = append(args, *p.CurrentWords)
	}
	if len(sets) == 0 {
		return false, nil
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := s.db.Exec(
		`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, validationf("project %q already exists", strings.TrimSpace(*p.Name))
		}
		return false, dbError("updating project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbError("updating project", err)
	}
	return n > 0, nil
}

// DeleteProject removes a project and, through cascading deletes and the
// search triggers, every character, plot, world element, scene, writing
// session, and index row that belongs to it.
func (s *Store) DeleteProject(id int64) (bool, error) {
	if err := requireID("project", id); err != nil {
		return false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, dbError("deleting project", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Sweep the index by project id first; the per-entity delete triggers
	// fired by the cascade then find nothing left to remove.
	if _, err := tx.Exec(`DELETE FROM memory_search WHERE project_id = ?`, id); err != nil {
		return false, dbError("deleting project", err)
	}
	res, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, dbError("deleting project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbError("deleting project", err)
	}
	if err := tx.Commit(); err != nil {
		return false, dbError("deleting project", err)
	}

	if n > 0 {
		s.log.Info("project deleted", zap.Int64("id", id))
	}
	return n > 0, nil
}

// ─── Characters ──────────────────────────────────────────────────────────────

// AddCharacter creates a character in the project's cast and returns its id.
func (s *Store) AddCharacter(projectID int64, name string, p CharacterParams) (int64, error) {
	name, err := cleanName("character name", name)
	if err != nil {
		return 0, err
	}
	importance := p.Importance
	if importance == "" {
		importance = ImportanceMinor
	} else if !validImportance(importance) {
		return 0, validationf("importance must be one of main, supporting, minor; got %q", importance)
	}
	relationships, err := encodeRelationships(p.Relationships)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("adding character", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireProject(tx, projectID); err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO characters (project_id, name, description, personality, backstory, appearance, relationships, importance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, name, p.Description, p.Personality, p.Backstory, p.Appearance, relationships, importance,
	)
	if err != nil {
		return 0, dbError("adding character", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("adding character", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("adding character", err)
	}

	s.log.Debug("character added", zap.Int64("project_id", projectID), zap.Int64("id", id), zap.String("name", name))
	return id, nil
}

// GetCharacters returns the project's cast, most central first: main, then
// supporting, then minor, alphabetical within each rank.
func (s *Store) GetCharacters(projectID int64) ([]Character, error) {
	if err := requireID("project", projectID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, project_id, name, description, personality, backstory, appearance, relationships, importance, created_at, updated_at
		 FROM characters WHERE project_id = ?
		 ORDER BY CASE importance WHEN 'main' THEN 0 WHEN 'supporting' THEN 1 ELSE 2 END, name`,
		projectID,
	)
	if err != nil {
		return nil, dbError("reading characters", err)
	}
	defer func() { _ = rows.Close() }()

	var characters []Character
	for rows.Next() {
		var c Character
		var rel string
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Description, &c.Personality,
			&c.Backstory, &c.Appearance, &rel, &c.Importance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, dbError("reading characters", err)
		}
		c.Relationships = decodeRelationships(rel)
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("reading characters", err)
	}
	return characters, nil
}

// UpdateCharacter applies the non-nil fields of p and reports whether a row
// changed. The search index row follows through the update trigger.
func (s *Store) UpdateCharacter(id int64, p UpdateCharacterParams) (bool, error) {
	if err := requireID("character", id); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if p.Name != nil {
		name, err := cleanName("character name", *p.Name)
		if err != nil {
			return false, err
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Personality != nil {
		sets = append(sets, "personality = ?")
		args = append(args, *p.Personality)
	}
	if p.Backstory != nil {
		sets = append(sets, "backstory = ?")
		args = append(args, *p.Backstory)
	}
	if p.Appearance != nil {
		sets = append(sets, "appearance = ?")
		args = append(args, *p.Appearance)
	}
	if p.Relationships != nil {
		rel, err := encodeRelationships(p.Relationships)
		if err != nil {
			return false, err
		}
		sets = append(sets, "relationships = ?")
		args = append(args, rel)
	}
	if p.Importance != nil {
		if !validImportance(*p.Importance) {
			return false, validationf("importance must be one of main, supporting, minor; got %q", *p.Importance)
		}
		sets = append(sets, "importance = ?")
		args = append(args, *p.Importance)
	}
	if len(sets) == 0 {
		return false, nil
	}
	return s.applyUpdate("characters", "updating character", sets, args, id)
}

// DeleteCharacter removes a character and its index row.
func (s *Store) DeleteCharacter(id int64) (bool, error) {
	return s.deleteEntity("characters", "character", id)
}

// ─── Plots ───────────────────────────────────────────────────────────────────

// AddPlot creates a plot line in the project and returns its id.
func (s *Store) AddPlot(projectID int64, title string, p PlotParams) (int64, error) {
	title, err := cleanName("plot title", title)
	if err != nil {
		return 0, err
	}
	plotType := p.PlotType
	if plotType == "" {
		plotType = PlotTypeMain
	} else if !validPlotType(plotType) {
		return 0, validationf("plot type must be one of main, subplot, arc; got %q", plotType)
	}
	status := p.Status
	if status == "" {
		status = StatusPlanned
	} else if !validPlotStatus(status) {
		return 0, validationf("plot status must be one of planned, active, draft, complete; got %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("adding plot", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireProject(tx, projectID); err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO plots (project_id, title, description, plot_type, status) VALUES (?, ?, ?, ?, ?)`,
		projectID, title, p.Description, plotType, status,
	)
	if err != nil {
		return 0, dbError("adding plot", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("adding plot", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("adding plot", err)
	}

	s.log.Debug("plot added", zap.Int64("project_id", projectID), zap.Int64("id", id), zap.String("title", title))
	return id, nil
}

// GetPlots returns the project's plot lines grouped by type, alphabetical
// within each type.
func (s *Store) GetPlots(projectID int64) ([]Plot, error) {
	if err := requireID("project", projectID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, project_id, title, description, plot_type, status, created_at, updated_at
		 FROM plots WHERE project_id = ? ORDER BY plot_type, title`,
		projectID,
	)
	if err != nil {
		return nil, dbError("reading plots", err)
	}
	defer func() { _ = rows.Close() }()

	var plots []Plot
	for rows.Next() {
		var p Plot
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Description,
			&p.PlotType, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, dbError("reading plots", err)
		}
		plots = append(plots, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("reading plots", err)
	}
	return plots, nil
}

// UpdatePlot applies the non-nil fields of p and reports whether a row changed.
func (s *Store) UpdatePlot(id int64, p UpdatePlotParams) (bool, error) {
	if err := requireID("plot", id); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if p.Title != nil {
		title, err := cleanName("plot title", *p.Title)
		if err != nil {
			return false, err
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.PlotType != nil {
		if !validPlotType(*p.PlotType) {
			return false, validationf("plot type must be one of main, subplot, arc; got %q", *p.PlotType)
		}
		sets = append(sets, "plot_type = ?")
		args = append(args, *p.PlotType)
	}
	if p.Status != nil {
		if !validPlotStatus(*p.Status) {
			return false, validationf("plot status must be one of planned, active, draft, complete; got %q", *p.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if len(sets) == 0 {
		return false, nil
	}
	return s.applyUpdate("plots", "updating plot", sets, args, id)
}

// DeletePlot removes a plot line and its index row.
func (s *Store) DeletePlot(id int64) (bool, error) {
	return s.deleteEntity("plots", "plot", id)
}

// ─── World elements ──────────────────────────────────────────────────────────

// AddWorldElement creates a world-building entry and returns its id.
func (s *Store) AddWorldElement(projectID int64, name string, p WorldElementParams) (int64, error) {
	name, err := cleanName("world element name", name)
	if err != nil {
		return 0, err
	}
	category := p.Category
	if category == "" {
		category = CategoryLocation
	} else if !validCategory(category) {
		return 0, validationf("category must be one of location, culture, history, rules, technology; got %q", category)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("adding world element", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireProject(tx, projectID); err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO world_building (project_id, name, category, description, details) VALUES (?, ?, ?, ?, ?)`,
		projectID, name, category, p.Description, p.Details,
	)
	if err != nil {
		return 0, dbError("adding world element", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("adding world element", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("adding world element", err)
	}

	s.log.Debug("world element added", zap.Int64("project_id", projectID), zap.Int64("id", id), zap.String("name", name))
	return id, nil
}

// GetWorldElements returns the project's lore grouped by category,
// alphabetical within each category.
func (s *Store) GetWorldElements(projectID int64) ([]WorldElement, error) {
	if err := requireID("project", projectID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, project_id, name, category, description, details, created_at, updated_at
		 FROM world_building WHERE project_id = ? ORDER BY category, name`,
		projectID,
	)
	if err != nil {
		return nil, dbError("reading world elements", err)
	}
	defer func() { _ = rows.Close() }()

	var elements []WorldElement
	for rows.Next() {
		var w WorldElement
		if err := rows.Scan(&w.ID, &w.ProjectID, &w.Name, &w.Category,
			&w.Description, &w.Details, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, dbError("reading world elements", err)
		}
		elements = append(elements, w)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("reading world elements", err)
	}
	return elements, nil
}

// UpdateWorldElement applies the non-nil fields of p and reports whether a
// row changed.
func (s *Store) UpdateWorldElement(id int64, p UpdateWorldElementParams) (bool, error) {
	if err := requireID("world element", id); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if p.Name != nil {
		name, err := cleanName("world element name", *p.Name)
		if err != nil {
			return false, err
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if p.Category != nil {
		if !validCategory(*p.Category) {
			return false, validationf("category must be one of location, culture, history, rules, technology; got %q", *p.Category)
		}
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Details != nil {
		sets = append(sets, "details = ?")
		args = append(args, *p.Details)
	}
	if len(sets) == 0 {
		return false, nil
	}
	return s.applyUpdate("world_building", "updating world element", sets, args, id)
}

// DeleteWorldElement removes a world element and its index row.
func (s *Store) DeleteWorldElement(id int64) (bool, error) {
	return s.deleteEntity("world_building", "world element", id)
}

// ─── Scenes ──────────────────────────────────────────────────────────────────

// AddScene creates a scene and returns its id.
func (s *Store) AddScene(projectID int64, p SceneParams) (int64, error) {
	if p.ChapterNumber < 0 || p.SceneNumber < 0 {
		return 0, validationf("chapter and scene numbers cannot be negative, got %d.%d", p.ChapterNumber, p.SceneNumber)
	}
	if p.WordCount < 0 {
		return 0, validationf("word count cannot be negative, got %d", p.WordCount)
	}
	status := p.Status
	if status == "" {
		status = StatusPlanned
	} else if !validSceneStatus(status) {
		return 0, validationf("scene status must be one of planned, draft, complete; got %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("adding scene", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireProject(tx, projectID); err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO scenes (project_id, chapter_number, scene_number, title, summary, content, word_count, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, p.ChapterNumber, p.SceneNumber, p.Title, p.Summary, p.Content, p.WordCount, status,
	)
	if err != nil {
		return 0, dbError("adding scene", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("adding scene", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("adding scene", err)
	}
	return id, nil
}

// GetScenes returns the project's scenes in manuscript order.
func (s *Store) GetScenes(projectID int64) ([]Scene, error) {
	if err := requireID("project", projectID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, project_id, chapter_number, scene_number, title, summary, content, word_count, status, created_at, updated_at
		 FROM scenes WHERE project_id = ? ORDER BY chapter_number, scene_number`,
		projectID,
	)
	if err != nil {
		return nil, dbError("reading scenes", err)
	}
	defer func() { _ = rows.Close() }()

	var scenes []Scene
	for rows.Next() {
		var sc Scene
		if err := rows.Scan(&sc.ID, &sc.ProjectID, &sc.ChapterNumber, &sc.SceneNumber,
			&sc.Title, &sc.Summary, &sc.Content, &sc.WordCount, &sc.Status,
			&sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, dbError("reading scenes", err)
		}
		scenes = append(scenes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("reading scenes", err)
	}
	return scenes, nil
}

// UpdateScene applies the non-nil fields of p and reports whether a row changed.
func (s *Store) UpdateScene(id int64, p UpdateSceneParams) (bool, error) {
	if err := requireID("scene", id); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if p.ChapterNumber != nil {
		if *p.ChapterNumber < 0 {
			return false, validationf("chapter number cannot be negative, got %d", *p.ChapterNumber)
		}
		sets = append(sets, "chapter_number = ?")
		args = append(args, *p.ChapterNumber)
	}
	if p.SceneNumber != nil {
		if *p.SceneNumber < 0 {
			return false, validationf("scene number cannot be negative, got %d", *p.SceneNumber)
		}
		sets = append(sets, "scene_number = ?")
		args = append(args, *p.SceneNumber)
	}
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *p.Summary)
	}
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.WordCount != nil {
		if *p.WordCount < 0 {
			return false, validationf("word count cannot be negative, got %d", *p.WordCount)
		}
		sets = append(sets, "word_count = ?")
		args = append(args, *p.WordCount)
	}
	if p.Status != nil {
		if !validSceneStatus(*p.Status) {
			return false, validationf("scene status must be one of planned, draft, complete; got %q", *p.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if len(sets) == 0 {
		return false, nil
	}
	return s.applyUpdate("scenes", "updating scene", sets, args, id)
}

// DeleteScene removes a scene.
func (s *Store) DeleteScene(id int64) (bool, error) {
	return s.deleteEntity("scenes", "scene", id)
}

// ─── Search ──────────────────────────────────────────────────────────────────

// SearchMemory runs a full-text query over the indexed entities. Results are
// ranked by FTS5 relevance and carry a highlighted snippet. An empty query
// falls back to the most recently indexed entries.
func (s *Store) SearchMemory(query string, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}
	for _, ct := range opts.ContentTypes {
		if !validContentType(ct) {
			return nil, validationf("content type must be one of character, plot, world_building; got %q", ct)
		}
	}
	if opts.ProjectID < 0 {
		return nil, validationf("project id must be positive, got %d", opts.ProjectID)
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return s.searchRecent(opts, limit)
	}

	sqlStr := `
		SELECT content_type, project_id, entity_id, title,
		       snippet(memory_search, 4, '<mark>', '</mark>', '...', 32),
		       metadata, rank
		FROM memory_search
		WHERE memory_search MATCH ?
	`
	args := []any{ftsQuery}

	if opts.ProjectID > 0 {
		sqlStr += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	if len(opts.ContentTypes) > 0 {
		sqlStr += " AND content_type IN (" + placeholders(len(opts.ContentTypes)) + ")"
		for _, ct := range opts.ContentTypes {
			args = append(args, ct)
		}
	}

	sqlStr += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, dbError("searching memory", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ContentType, &r.ProjectID, &r.EntityID,
			&r.Title, &r.Snippet, &r.Metadata, &r.Rank); err != nil {
			return nil, dbError("searching memory", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("searching memory", err)
	}
	return results, nil
}

// searchRecent returns the most recently indexed entries without FTS, used
// as fallback when the query is empty or whitespace-only.
func (s *Store) searchRecent(opts SearchOptions, limit int) ([]SearchResult, error) {
	sqlStr := `
		SELECT content_type, project_id, entity_id, title, content, metadata, 0 AS rank
		FROM memory_search
		WHERE 1=1
	`
	var args []any

	if opts.ProjectID > 0 {
		sqlStr += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	if len(opts.ContentTypes) > 0 {
		sqlStr += " AND content_type IN (" + placeholders(len(opts.ContentTypes)) + ")"
		for _, ct := range opts.ContentTypes {
			args = append(args, ct)
		}
	}

	sqlStr += " ORDER BY rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, dbError("searching memory", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var content string
		if err := rows.Scan(&r.ContentType, &r.ProjectID, &r.EntityID,
			&r.Title, &content, &r.Metadata, &r.Rank); err != nil {
			return nil, dbError("searching memory", err)
		}
		r.Snippet = Truncate(content, 200)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("searching memory", err)
	}
	return results, nil
}

// ─── Writing sessions & analytics ────────────────────────────────────────────

// RecordWritingSession logs one stretch of writing. An empty date defaults
// to today (UTC).
func (s *Store) RecordWritingSession(projectID int64, words, minutes int, date string) (int64, error) {
	if words < 0 {
		return 0, validationf("words written cannot be negative, got %d", words)
	}
	if minutes < 0 {
		return 0, validationf("duration cannot be negative, got %d", minutes)
	}
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return 0, validationf("session date must be YYYY-MM-DD, got %q", date)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dbError("recording writing session", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireProject(tx, projectID); err != nil {
		return 0, err
	}
	var res sql.Result
	if date == "" {
		res, err = tx.Exec(
			`INSERT INTO writing_sessions (project_id, words_written, duration_minutes) VALUES (?, ?, ?)`,
			projectID, words, minutes,
		)
	} else {
		res, err = tx.Exec(
			`INSERT INTO writing_sessions (project_id, words_written, duration_minutes, session_date) VALUES (?, ?, ?, ?)`,
			projectID, words, minutes, date,
		)
	}
	if err != nil {
		return 0, dbError("recording writing session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbError("recording writing session", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, dbError("recording writing session", err)
	}
	return id, nil
}

// WritingStats aggregates writing sessions over the last `days` days
// (default 30). A zero projectID spans all projects.
func (s *Store) WritingStats(projectID int64, days int) (*WritingStats, error) {
	if days <= 0 {
		days = 30
	}
	if projectID != 0 {
		if err := requireProject(s.db, projectID); err != nil {
			return nil, err
		}
	}
	window := fmt.Sprintf("-%d days", days)

	dailySQL := `
		SELECT session_date, SUM(words_written), SUM(duration_minutes)
		FROM writing_sessions
		WHERE session_date >= date('now', ?)
	`
	args := []any{window}
	if projectID != 0 {
		dailySQL += " AND project_id = ?"
		args = append(args, projectID)
	}
	dailySQL += " GROUP BY session_date ORDER BY session_date DESC"

	rows, err := s.db.Query(dailySQL, args...)
	if err != nil {
		return nil, dbError("reading writing stats", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &WritingStats{PeriodDays: days}
	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.Date, &d.Words, &d.Minutes); err != nil {
			return nil, dbError("reading writing stats", err)
		}
		stats.Daily = append(stats.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("reading writing stats", err)
	}

	totalsSQL := `
		SELECT COUNT(DISTINCT session_date),
		       COALESCE(SUM(words_written), 0),
		       COALESCE(SUM(duration_minutes), 0),
		       COALESCE(AVG(words_written), 0),
		       COALESCE(MAX(words_written), 0)
		FROM writing_sessions
		WHERE session_date >= date('now', ?)
	`
	targs := []any{window}
	if projectID != 0 {
		totalsSQL += " AND project_id = ?"
		targs = append(targs, projectID)
	}
	if err := s.db.QueryRow(totalsSQL, targs...).Scan(
		&stats.Totals.WritingDays,
		&stats.Totals.TotalWords,
		&stats.Totals.TotalMinutes,
		&stats.Totals.AvgWordsPerSession,
		&stats.Totals.BestSession,
	); err != nil {
		return nil, dbError("reading writing stats", err)
	}
	return stats, nil
}

// ProjectStats returns the full statistics snapshot for one project. A
// missing project is a ValidationError.
func (s *Store) ProjectStats(projectID int64) (*ProjectStatsReport, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, validationf("project %d not found", projectID)
	}

	report := &ProjectStatsReport{Project: *p}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM characters WHERE project_id = ?`, &report.Characters},
		{`SELECT COUNT(*) FROM plots WHERE project_id = ?`, &report.Plots},
		{`SELECT COUNT(*) FROM world_building WHERE project_id = ?`, &report.WorldElements},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query, projectID).Scan(c.dest); err != nil {
			return nil, dbError("reading project stats", err)
		}
	}

	var sceneWords int
	if err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'complete' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(word_count), 0)
		 FROM scenes WHERE project_id = ?`, projectID,
	).Scan(&report.Scenes.Total, &report.Scenes.Completed, &sceneWords); err != nil {
		return nil, dbError("reading project stats", err)
	}

	if report.Scenes.Total > 0 {
		report.Scenes.CompletionRate = float64(report.Scenes.Completed) / float64(report.Scenes.Total) * 100
	}
	report.Words.Current = sceneWords
	report.Words.Target = p.TargetWords
	if p.TargetWords > 0 {
		report.Words.Progress = float64(sceneWords) / float64(p.TargetWords) * 100
	}
	return report, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// applyUpdate runs a dynamic partial UPDATE, bumping updated_at, and reports
// whether a row changed.
func (s *Store) applyUpdate(table, op string, sets []string, args []any, id int64) (bool, error) {
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := s.db.Exec(
		`UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return false, dbError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbError(op, err)
	}
	return n > 0, nil
}

// deleteEntity removes one row by id; the search index follows through the
// delete triggers.
func (s *Store) deleteEntity(table, what string, id int64) (bool, error) {
	if err := requireID(what, id); err != nil {
		return false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, dbError("deleting "+what, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, dbError("deleting "+what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbError("deleting "+what, err)
	}
	if err := tx.Commit(); err != nil {
		return false, dbError("deleting "+what, err)
	}
	return n > 0, nil
}

// encodeRelationships marshals a relationships map for storage. A nil map
// stores as the empty object.
func encodeRelationships(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", validationf("relationships cannot be encoded: %v", err)
	}
	return string(b), nil
}

// decodeRelationships parses a stored relationships value. Malformed JSON
// degrades to an empty map rather than failing the read.
func decodeRelationships(s string) map[string]string {
	m := map[string]string{}
	if s == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]string{}
	}
	return m
}

// Truncate shortens a string to max length with ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// placeholders returns n comma-joined SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// `fix the heist` → `"fix" "the" "heist"`
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.Trim(w, `"`)
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
