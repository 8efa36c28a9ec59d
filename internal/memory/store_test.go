package memory_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.New(memory.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedProject creates a project and returns its id.
func seedProject(t *testing.T, s *memory.Store, name string) int64 {
	t.Helper()
	id, err := s.CreateProject(name, memory.ProjectParams{
		Description: "a test project",
		Genre:       "fantasy",
		TargetWords: 50000,
	})
	if err != nil {
		t.Fatalf("seed project %q: %v", name, err)
	}
	return id
}

// indexRows counts memory_search rows for a project, optionally narrowed to
// one content type.
func indexRows(t *testing.T, s *memory.Store, projectID int64, contentType string) int {
	t.Helper()
	query := `SELECT COUNT(*) FROM memory_search WHERE project_id = ?`
	args := []any{projectID}
	if contentType != "" {
		query += ` AND content_type = ?`
		args = append(args, contentType)
	}
	var n int
	if err := s.DB().QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("counting index rows: %v", err)
	}
	return n
}

// mustBeValidation asserts err is a ValidationError mentioning wantSubstr.
func mustBeValidation(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error containing %q, got nil", wantSubstr)
	}
	if !memory.IsValidation(err) {
		t.Fatalf("expected validation error, got %T: %v", err, err)
	}
	if wantSubstr != "" && !strings.Contains(err.Error(), wantSubstr) {
		t.Errorf("error %q does not contain %q", err.Error(), wantSubstr)
	}
}

// ─── New / Initialization ────────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "memory.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestNew_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "inkwell")
	s, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestNew_IdempotentReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	id, err := s1.CreateProject("Embers", memory.ProjectParams{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	defer s2.Close()

	p, err := s2.GetProject(id)
	if err != nil {
		t.Fatalf("GetProject after reopen: %v", err)
	}
	if p == nil || p.Name != "Embers" {
		t.Errorf("project did not survive reopen: %+v", p)
	}
}

// ─── Projects ────────────────────────────────────────────────────────────────

func TestCreateProject_Basic(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateProject("Embers", memory.ProjectParams{
		Description: "heist fantasy",
		Genre:       "fantasy",
		TargetWords: 90000,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero project id")
	}

	p, err := s.GetProject(id)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p == nil {
		t.Fatal("project not found after create")
	}
	if p.Name != "Embers" || p.Genre != "fantasy" || p.TargetWords != 90000 {
		t.Errorf("round-trip mismatch: %+v", p)
	}
	if p.CreatedAt == "" || p.UpdatedAt == "" {
		t.Error("timestamps should be set")
	}
}

func TestCreateProject_TrimsName(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateProject("  Embers  ", memory.ProjectParams{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	p, err := s.GetProject(id)
	if err != nil || p == nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Name != "Embers" {
		t.Errorf("name = %q, want trimmed %q", p.Name, "Embers")
	}
}

func TestCreateProject_RejectsBlankName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateProject("   ", memory.ProjectParams{})
	mustBeValidation(t, err, "cannot be empty")
}

func TestCreateProject_RejectsLongName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateProject(strings.Repeat("x", 256), memory.ProjectParams{})
	mustBeValidation(t, err, "exceeds")
}

func TestCreateProject_RejectsNegativeTarget(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateProject("Embers", memory.ProjectParams{TargetWords: -1})
	mustBeValidation(t, err, "negative")
}

func TestCreateProject_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	seedProject(t, s, "Embers")

	_, err := s.CreateProject("Embers", memory.ProjectParams{})
	mustBeValidation(t, err, "already exists")

	// Trimming happens before the uniqueness check.
	_, err = s.CreateProject("  Embers ", memory.ProjectParams{})
	mustBeValidation(t, err, "already exists")
}

func TestGetProject_NotFound(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetProject(99)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for missing project, got %+v", p)
	}
}

func TestGetProjectByName(t *testing.T) {
	s := newTestStore(t)
	id := seedProject(t, s, "Embers")

	p, err := s.GetProjectByName("Embers")
	if err != nil {
		t.Fatalf("GetProjectByName: %v", err)
	}
	if p == nil || p.ID != id {
		t.Errorf("lookup by name = %+v, want id %d", p, id)
	}

	missing, err := s.GetProjectByName("Nope")
	if err != nil {
		t.Fatalf("GetProjectByName miss: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown name, got %+v", missing)
	}
}

func TestListProjects_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	seedProject(t, s, "First")
	seedProject(t, s, "Second")
	third := seedProject(t, s, "Third")

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	if projects[0].ID != third {
		t.Errorf("first listed = %d, want most recent %d", projects[0].ID, third)
	}
}

func TestUpdateProject_Partial(t *testing.T) {
	s := newTestStore(t)
	id := seedProject(t, s, "Embers")

	name := "Embers of the Vault"
	target := 120000
	found, err := s.UpdateProject(id, memory.UpdateProjectParams{
		Name:        &name,
		TargetWords: &target,
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if !found {
		t.Fatal("expected update to hit")
	}

	p, err := s.GetProject(id)
	if err != nil || p == nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Name != name || p.TargetWords != target {
		t.Errorf("updated fields wrong: %+v", p)
	}
	if p.Genre != "fantasy" {
		t.Errorf("untouched genre changed: %q", p.Genre)
	}
}

func TestUpdateProject_NoFieldsIsNoop(t *testing.T) {
	s := newTestStore(t)
	id := seedProject(t, s, "Embers")

	found, err := s.UpdateProject(id, memory.UpdateProjectParams{})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if found {
		t.Error("update with no fields should report no change")
	}
}

func TestUpdateProject_NotFound(t *testing.T) {
	s := newTestStore(t)

	desc := "new"
	found, err := s.UpdateProject(42, memory.UpdateProjectParams{Description: &desc})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if found {
		t.Error("update of missing project should report no change")
	}
}

func TestDeleteProject_CascadesEverything(t *testing.T) {
	s := newTestStore(t)
	id := seedProject(t, s, "Embers")

	if _, err := s.AddCharacter(id, "Mira", memory.CharacterParams{Description: "a thief"}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	if _, err := s.AddPlot(id, "The Heist", memory.PlotParams{Description: "the crown job"}); err != nil {
		t.Fatalf("AddPlot: %v", err)
	}
	if _, err := s.AddWorldElement(id, "Iron Citadel", memory.WorldElementParams{Description: "a fortress"}); err != nil {
		t.Fatalf("AddWorldElement: %v", err)
	}
	if _, err := s.AddScene(id, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}
	if _, err := s.RecordWritingSession(id, 500, 30, ""); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}
	if got := indexRows(t, s, id, ""); got != 3 {
		t.Fatalf("index rows before delete = %d, want 3", got)
	}

	found, err := s.DeleteProject(id)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if !found {
		t.Fatal("expected delete to hit")
	}

	if p, _ := s.GetProject(id); p != nil {
		t.Error("project still present after delete")
	}
	if chars, _ := s.GetCharacters(id); len(chars) != 0 {
		t.Errorf("characters survived cascade: %v", chars)
	}
	if scenes, _ := s.GetScenes(id); len(scenes) != 0 {
		t.Errorf("scenes survived cascade: %v", scenes)
	}
	if got := indexRows(t, s, id, ""); got != 0 {
		t.Errorf("index rows after delete = %d, want 0", got)
	}

	var sessions int
	if err := s.DB().QueryRow(
		`SELECT COUNT(*) FROM writing_sessions WHERE project_id = ?`, id,
	).Scan(&sessions); err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if sessions != 0 {
		t.Errorf("writing sessions survived cascade: %d", sessions)
	}
}

func TestDeleteProject_NotFound(t *testing.T) {
	s := newTestStore(t)

	found, err := s.DeleteProject(42)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if found {
		t.Error("delete of missing project should report no change")
	}
}

// ─── Characters ──────────────────────────────────────────────────────────────

func TestAddCharacter_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	id, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{
		Description:   "a quick-fingered thief",
		Personality:   "wry, restless",
		Backstory:     "orphaned in the harbor district",
		Appearance:    "small, scarred hands",
		Relationships: map[string]string{"Kael": "rival", "Sera": "mentor"},
		Importance:    memory.ImportanceMain,
	})
	if err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}

	chars, err := s.GetCharacters(projectID)
	if err != nil {
		t.Fatalf("GetCharacters: %v", err)
	}
	if len(chars) != 1 {
		t.Fatalf("expected 1 character, got %d", len(chars))
	}
	c := chars[0]
	if c.ID != id || c.Name != "Mira" || c.Importance != memory.ImportanceMain {
		t.Errorf("round-trip mismatch: %+v", c)
	}
	if c.Backstory != "orphaned in the harbor district" || c.Appearance != "small, scarred hands" {
		t.Errorf("text fields mismatch: %+v", c)
	}
	if len(c.Relationships) != 2 || c.Relationships["Kael"] != "rival" {
		t.Errorf("relationships mismatch: %v", c.Relationships)
	}
}

func TestAddCharacter_DefaultsToMinor(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	if _, err := s.AddCharacter(projectID, "Extra", memory.CharacterParams{}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	chars, err := s.GetCharacters(projectID)
	if err != nil || len(chars) != 1 {
		t.Fatalf("GetCharacters: %v", err)
	}
	if chars[0].Importance != memory.ImportanceMinor {
		t.Errorf("importance = %q, want minor", chars[0].Importance)
	}
	if chars[0].Relationships == nil || len(chars[0].Relationships) != 0 {
		t.Errorf("relationships should default to an empty map, got %v", chars[0].Relationships)
	}
}

func TestAddCharacter_InvalidImportance(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	_, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{Importance: "legendary"})
	mustBeValidation(t, err, "importance")
}

func TestAddCharacter_MissingProject(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddCharacter(42, "Mira", memory.CharacterParams{})
	mustBeValidation(t, err, "project 42 not found")
}

func TestGetCharacters_CentralFirst(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	for _, c := range []struct{ name, importance string }{
		{"Aldo", memory.ImportanceMinor},
		{"Zara", memory.ImportanceMain},
		{"Brim", memory.ImportanceSupporting},
	} {
		if _, err := s.AddCharacter(projectID, c.name, memory.CharacterParams{Importance: c.importance}); err != nil {
			t.Fatalf("AddCharacter %s: %v", c.name, err)
		}
	}

	chars, err := s.GetCharacters(projectID)
	if err != nil {
		t.Fatalf("GetCharacters: %v", err)
	}
	got := []string{chars[0].Name, chars[1].Name, chars[2].Name}
	want := []string{"Zara", "Brim", "Aldo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestUpdateCharacter_Partial(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{
		Description: "a thief",
		Personality: "wry",
	})
	if err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}

	backstory := "raised by the harbor gulls"
	found, err := s.UpdateCharacter(id, memory.UpdateCharacterParams{
		Backstory:     &backstory,
		Relationships: map[string]string{"Kael": "rival"},
	})
	if err != nil {
		t.Fatalf("UpdateCharacter: %v", err)
	}
	if !found {
		t.Fatal("expected update to hit")
	}

	chars, err := s.GetCharacters(projectID)
	if err != nil || len(chars) != 1 {
		t.Fatalf("GetCharacters: %v", err)
	}
	c := chars[0]
	if c.Backstory != backstory {
		t.Errorf("backstory = %q", c.Backstory)
	}
	if c.Personality != "wry" {
		t.Errorf("untouched personality changed: %q", c.Personality)
	}
	if c.Relationships["Kael"] != "rival" {
		t.Errorf("relationships not replaced: %v", c.Relationships)
	}
}

func TestUpdateCharacter_NotFound(t *testing.T) {
	s := newTestStore(t)

	desc := "x"
	found, err := s.UpdateCharacter(42, memory.UpdateCharacterParams{Description: &desc})
	if err != nil {
		t.Fatalf("UpdateCharacter: %v", err)
	}
	if found {
		t.Error("update of missing character should report no change")
	}
}

func TestDeleteCharacter(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{})
	if err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}

	found, err := s.DeleteCharacter(id)
	if err != nil || !found {
		t.Fatalf("DeleteCharacter: found=%v err=%v", found, err)
	}

	again, err := s.DeleteCharacter(id)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if again {
		t.Error("second delete should report no change")
	}
}

// ─── Plots ───────────────────────────────────────────────────────────────────

func TestAddPlot_Defaults(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	if _, err := s.AddPlot(projectID, "The Heist", memory.PlotParams{Description: "the crown job"}); err != nil {
		t.Fatalf("AddPlot: %v", err)
	}

	plots, err := s.GetPlots(projectID)
	if err != nil || len(plots) != 1 {
		t.Fatalf("GetPlots: %v", err)
	}
	if plots[0].PlotType != memory.PlotTypeMain {
		t.Errorf("plot type = %q, want main", plots[0].PlotType)
	}
	if plots[0].Status != memory.StatusPlanned {
		t.Errorf("status = %q, want planned", plots[0].Status)
	}
}

func TestAddPlot_InvalidTypeAndStatus(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	_, err := s.AddPlot(projectID, "X", memory.PlotParams{PlotType: "tangent"})
	mustBeValidation(t, err, "plot type")

	_, err = s.AddPlot(projectID, "X", memory.PlotParams{Status: "simmering"})
	mustBeValidation(t, err, "plot status")
}

func TestGetPlots_GroupedByType(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	for _, p := range []struct{ title, plotType string }{
		{"Side Hustle", memory.PlotTypeSubplot},
		{"The Heist", memory.PlotTypeMain},
		{"Mira Grows", memory.PlotTypeArc},
	} {
		if _, err := s.AddPlot(projectID, p.title, memory.PlotParams{PlotType: p.plotType}); err != nil {
			t.Fatalf("AddPlot %s: %v", p.title, err)
		}
	}

	plots, err := s.GetPlots(projectID)
	if err != nil {
		t.Fatalf("GetPlots: %v", err)
	}
	got := []string{plots[0].PlotType, plots[1].PlotType, plots[2].PlotType}
	want := []string{memory.PlotTypeArc, memory.PlotTypeMain, memory.PlotTypeSubplot}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("type order = %v, want %v", got, want)
		}
	}
}

func TestUpdatePlot_StatusTransition(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddPlot(projectID, "The Heist", memory.PlotParams{})
	if err != nil {
		t.Fatalf("AddPlot: %v", err)
	}

	status := memory.StatusActive
	found, err := s.UpdatePlot(id, memory.UpdatePlotParams{Status: &status})
	if err != nil || !found {
		t.Fatalf("UpdatePlot: found=%v err=%v", found, err)
	}

	plots, err := s.GetPlots(projectID)
	if err != nil || len(plots) != 1 {
		t.Fatalf("GetPlots: %v", err)
	}
	if plots[0].Status != memory.StatusActive {
		t.Errorf("status = %q, want active", plots[0].Status)
	}
}

func TestDeletePlot(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddPlot(projectID, "The Heist", memory.PlotParams{})
	if err != nil {
		t.Fatalf("AddPlot: %v", err)
	}

	found, err := s.DeletePlot(id)
	if err != nil || !found {
		t.Fatalf("DeletePlot: found=%v err=%v", found, err)
	}
	if plots, _ := s.GetPlots(projectID); len(plots) != 0 {
		t.Errorf("plot survived delete: %v", plots)
	}
}

// ─── World building ──────────────────────────────────────────────────────────

func TestAddWorldElement_Defaults(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	if _, err := s.AddWorldElement(projectID, "Iron Citadel", memory.WorldElementParams{
		Description: "fortress above the harbor",
	}); err != nil {
		t.Fatalf("AddWorldElement: %v", err)
	}

	elements, err := s.GetWorldElements(projectID)
	if err != nil || len(elements) != 1 {
		t.Fatalf("GetWorldElements: %v", err)
	}
	if elements[0].Category != memory.CategoryLocation {
		t.Errorf("category = %q, want location", elements[0].Category)
	}
}

func TestAddWorldElement_InvalidCategory(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	_, err := s.AddWorldElement(projectID, "X", memory.WorldElementParams{Category: "cuisine"})
	mustBeValidation(t, err, "category")
}

func TestGetWorldElements_OrderByCategory(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	for _, e := range []struct{ name, category string }{
		{"Skyrail", memory.CategoryTechnology},
		{"Iron Citadel", memory.CategoryLocation},
		{"Tide Truce", memory.CategoryHistory},
	} {
		if _, err := s.AddWorldElement(projectID, e.name, memory.WorldElementParams{Category: e.category}); err != nil {
			t.Fatalf("AddWorldElement %s: %v", e.name, err)
		}
	}

	elements, err := s.GetWorldElements(projectID)
	if err != nil {
		t.Fatalf("GetWorldElements: %v", err)
	}
	got := []string{elements[0].Category, elements[1].Category, elements[2].Category}
	want := []string{memory.CategoryHistory, memory.CategoryLocation, memory.CategoryTechnology}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category order = %v, want %v", got, want)
		}
	}
}

func TestUpdateWorldElement_Details(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddWorldElement(projectID, "Iron Citadel", memory.WorldElementParams{})
	if err != nil {
		t.Fatalf("AddWorldElement: %v", err)
	}

	details := "built on basalt cliffs"
	found, err := s.UpdateWorldElement(id, memory.UpdateWorldElementParams{Details: &details})
	if err != nil || !found {
		t.Fatalf("UpdateWorldElement: found=%v err=%v", found, err)
	}

	elements, err := s.GetWorldElements(projectID)
	if err != nil || len(elements) != 1 {
		t.Fatalf("GetWorldElements: %v", err)
	}
	if elements[0].Details != details {
		t.Errorf("details = %q", elements[0].Details)
	}
}

// ─── Scenes ──────────────────────────────────────────────────────────────────

func TestAddScene_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	id, err := s.AddScene(projectID, memory.SceneParams{
		ChapterNumber: 2,
		SceneNumber:   3,
		Title:         "The Rooftop",
		Summary:       "Mira crosses the rooftops",
		Content:       "Mira crossed the rooftops at midnight.",
		WordCount:     6,
		Status:        memory.StatusDraft,
	})
	if err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	scenes, err := s.GetScenes(projectID)
	if err != nil || len(scenes) != 1 {
		t.Fatalf("GetScenes: %v", err)
	}
	sc := scenes[0]
	if sc.ID != id || sc.ChapterNumber != 2 || sc.SceneNumber != 3 || sc.WordCount != 6 {
		t.Errorf("round-trip mismatch: %+v", sc)
	}
	if sc.Status != memory.StatusDraft {
		t.Errorf("status = %q, want draft", sc.Status)
	}
}

func TestAddScene_DefaultStatusPlanned(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	if _, err := s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}
	scenes, err := s.GetScenes(projectID)
	if err != nil || len(scenes) != 1 {
		t.Fatalf("GetScenes: %v", err)
	}
	if scenes[0].Status != memory.StatusPlanned {
		t.Errorf("status = %q, want planned", scenes[0].Status)
	}
}

func TestAddScene_Validation(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	_, err := s.AddScene(projectID, memory.SceneParams{ChapterNumber: -1, SceneNumber: 1})
	mustBeValidation(t, err, "negative")

	_, err = s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1, WordCount: -5})
	mustBeValidation(t, err, "word count")

	// "active" is a plot status, not a scene status.
	_, err = s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1, Status: memory.StatusActive})
	mustBeValidation(t, err, "scene status")
}

func TestGetScenes_ManuscriptOrder(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	for _, sc := range []struct{ chapter, scene int }{
		{2, 1}, {1, 2}, {1, 1},
	} {
		if _, err := s.AddScene(projectID, memory.SceneParams{
			ChapterNumber: sc.chapter, SceneNumber: sc.scene,
		}); err != nil {
			t.Fatalf("AddScene %d.%d: %v", sc.chapter, sc.scene, err)
		}
	}

	scenes, err := s.GetScenes(projectID)
	if err != nil {
		t.Fatalf("GetScenes: %v", err)
	}
	want := [][2]int{{1, 1}, {1, 2}, {2, 1}}
	for i, w := range want {
		if scenes[i].ChapterNumber != w[0] || scenes[i].SceneNumber != w[1] {
			t.Fatalf("scene %d = %d.%d, want %d.%d",
				i, scenes[i].ChapterNumber, scenes[i].SceneNumber, w[0], w[1])
		}
	}
}

func TestUpdateScene_Progress(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1})
	if err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	status := memory.StatusComplete
	words := 1450
	found, err := s.UpdateScene(id, memory.UpdateSceneParams{Status: &status, WordCount: &words})
	if err != nil || !found {
		t.Fatalf("UpdateScene: found=%v err=%v", found, err)
	}

	scenes, err := s.GetScenes(projectID)
	if err != nil || len(scenes) != 1 {
		t.Fatalf("GetScenes: %v", err)
	}
	if scenes[0].Status != memory.StatusComplete || scenes[0].WordCount != 1450 {
		t.Errorf("scene = %+v", scenes[0])
	}
}

func TestDeleteScene(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	id, err := s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1})
	if err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	found, err := s.DeleteScene(id)
	if err != nil || !found {
		t.Fatalf("DeleteScene: found=%v err=%v", found, err)
	}
}

// ─── Search index consistency ────────────────────────────────────────────────

func TestSearchIndex_FollowsEntityLifecycle(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	id, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{
		Description: "a quick-fingered thief",
	})
	if err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	if got := indexRows(t, s, projectID, memory.ContentTypeCharacter); got != 1 {
		t.Fatalf("index rows after insert = %d, want 1", got)
	}

	// Update renames the entity; the index row must follow.
	name := "Mirabel"
	if _, err := s.UpdateCharacter(id, memory.UpdateCharacterParams{Name: &name}); err != nil {
		t.Fatalf("UpdateCharacter: %v", err)
	}
	results, err := s.SearchMemory("Mirabel", memory.SearchOptions{ProjectID: projectID})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Mirabel" {
		t.Errorf("index did not follow rename: %v", results)
	}

	if _, err := s.DeleteCharacter(id); err != nil {
		t.Fatalf("DeleteCharacter: %v", err)
	}
	if got := indexRows(t, s, projectID, memory.ContentTypeCharacter); got != 0 {
		t.Errorf("index rows after delete = %d, want 0", got)
	}
}

func TestSearchIndex_OneRowPerEntity(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	if _, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	if _, err := s.AddPlot(projectID, "The Heist", memory.PlotParams{}); err != nil {
		t.Fatalf("AddPlot: %v", err)
	}
	if _, err := s.AddWorldElement(projectID, "Iron Citadel", memory.WorldElementParams{}); err != nil {
		t.Fatalf("AddWorldElement: %v", err)
	}
	// Scenes are deliberately not indexed.
	if _, err := s.AddScene(projectID, memory.SceneParams{ChapterNumber: 1, SceneNumber: 1}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	if got := indexRows(t, s, projectID, ""); got != 3 {
		t.Errorf("index rows = %d, want 3 (scenes are not indexed)", got)
	}
}

// ─── Search ──────────────────────────────────────────────────────────────────

func seedSearchCorpus(t *testing.T, s *memory.Store, projectID int64) {
	t.Helper()
	if _, err := s.AddCharacter(projectID, "Mira", memory.CharacterParams{
		Description: "a thief of the harbor city",
		Backstory:   "grew up on the docks",
	}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	if _, err := s.AddPlot(projectID, "The Heist", memory.PlotParams{
		Description: "stealing the crown from the harbor vault",
	}); err != nil {
		t.Fatalf("AddPlot: %v", err)
	}
	if _, err := s.AddWorldElement(projectID, "Iron Citadel", memory.WorldElementParams{
		Description: "fortress looming over the harbor",
	}); err != nil {
		t.Fatalf("AddWorldElement: %v", err)
	}
}

func TestSearchMemory_MatchesAcrossTypes(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	seedSearchCorpus(t, s, projectID)

	results, err := s.SearchMemory("harbor", memory.SearchOptions{ProjectID: projectID})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %v", len(results), results)
	}
	for _, r := range results {
		if r.ProjectID != projectID {
			t.Errorf("result from wrong project: %+v", r)
		}
		if r.Rank >= 0 {
			t.Errorf("FTS rank should be negative (bm25), got %v", r.Rank)
		}
	}
}

func TestSearchMemory_SnippetHighlights(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	seedSearchCorpus(t, s, projectID)

	results, err := s.SearchMemory("docks", memory.SearchOptions{ProjectID: projectID})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Snippet, "<mark>docks</mark>") {
		t.Errorf("snippet missing highlight: %q", results[0].Snippet)
	}
}

func TestSearchMemory_ProjectScoped(t *testing.T) {
	s := newTestStore(t)
	first := seedProject(t, s, "Embers")
	second := seedProject(t, s, "Tides")
	seedSearchCorpus(t, s, first)
	if _, err := s.AddCharacter(second, "Captain Vext", memory.CharacterParams{
		Description: "rules the harbor patrol",
	}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}

	results, err := s.SearchMemory("harbor", memory.SearchOptions{ProjectID: second})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Captain Vext" {
		t.Errorf("project filter leaked: %v", results)
	}
}

func TestSearchMemory_TypeFilter(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	seedSearchCorpus(t, s, projectID)

	results, err := s.SearchMemory("harbor", memory.SearchOptions{
		ProjectID:    projectID,
		ContentTypes: []string{memory.ContentTypePlot, memory.ContentTypeWorld},
	})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.ContentType == memory.ContentTypeCharacter {
			t.Errorf("filtered type leaked: %+v", r)
		}
	}
}

func TestSearchMemory_InvalidTypeFilter(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SearchMemory("x", memory.SearchOptions{ContentTypes: []string{"spaceship"}})
	mustBeValidation(t, err, "content type")
}

func TestSearchMemory_EmptyQueryReturnsRecent(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	seedSearchCorpus(t, s, projectID)

	results, err := s.SearchMemory("   ", memory.SearchOptions{ProjectID: projectID})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 recent results, got %d", len(results))
	}
	// Most recently indexed first.
	if results[0].Title != "Iron Citadel" {
		t.Errorf("recent order wrong: first = %q", results[0].Title)
	}
	for _, r := range results {
		if r.Rank != 0 {
			t.Errorf("recent results carry no FTS rank, got %v", r.Rank)
		}
	}
}

func TestSearchMemory_PunctuationSafe(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	if _, err := s.AddCharacter(projectID, "O'Brien", memory.CharacterParams{
		Description: "the fence",
	}); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}

	// Quotes, parens, and operators must not reach FTS5 raw.
	for _, q := range []string{`O'Brien`, `"harbor`, `fence AND (vault)`, `crown-job*`} {
		if _, err := s.SearchMemory(q, memory.SearchOptions{ProjectID: projectID}); err != nil {
			t.Errorf("query %q should not error: %v", q, err)
		}
	}
}

func TestSearchMemory_LimitCapped(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	for i := 0; i < 25; i++ {
		name := "Guard " + string(rune('A'+i))
		if _, err := s.AddCharacter(projectID, name, memory.CharacterParams{
			Description: "stationed at the harbor",
		}); err != nil {
			t.Fatalf("AddCharacter %s: %v", name, err)
		}
	}

	// Default config caps at 20 even when the caller asks for more.
	results, err := s.SearchMemory("harbor", memory.SearchOptions{ProjectID: projectID, Limit: 100})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 20 {
		t.Errorf("expected cap of 20, got %d", len(results))
	}

	results, err = s.SearchMemory("harbor", memory.SearchOptions{ProjectID: projectID})
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 10 {
		t.Errorf("expected default limit of 10, got %d", len(results))
	}
}

// ─── Writing sessions & analytics ────────────────────────────────────────────

func TestRecordWritingSession_Validation(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	_, err := s.RecordWritingSession(projectID, -1, 0, "")
	mustBeValidation(t, err, "words")

	_, err = s.RecordWritingSession(projectID, 100, -5, "")
	mustBeValidation(t, err, "duration")

	_, err = s.RecordWritingSession(projectID, 100, 0, "last tuesday")
	mustBeValidation(t, err, "YYYY-MM-DD")

	_, err = s.RecordWritingSession(42, 100, 0, "")
	mustBeValidation(t, err, "project 42 not found")
}

func TestWritingStats_Aggregates(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	// Two sessions today (summed into one daily row) and one dated far
	// outside any reasonable window.
	if _, err := s.RecordWritingSession(projectID, 500, 30, ""); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}
	if _, err := s.RecordWritingSession(projectID, 300, 20, ""); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}
	if _, err := s.RecordWritingSession(projectID, 9999, 0, "2020-01-01"); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}

	stats, err := s.WritingStats(projectID, 7)
	if err != nil {
		t.Fatalf("WritingStats: %v", err)
	}
	if stats.PeriodDays != 7 {
		t.Errorf("period = %d, want 7", stats.PeriodDays)
	}
	if len(stats.Daily) != 1 {
		t.Fatalf("daily rows = %d, want 1 (old session excluded)", len(stats.Daily))
	}
	if stats.Daily[0].Words != 800 || stats.Daily[0].Minutes != 50 {
		t.Errorf("daily = %+v", stats.Daily[0])
	}
	if stats.Totals.TotalWords != 800 || stats.Totals.WritingDays != 1 {
		t.Errorf("totals = %+v", stats.Totals)
	}
	if stats.Totals.BestSession != 500 {
		t.Errorf("best session = %d, want 500", stats.Totals.BestSession)
	}
	if stats.Totals.AvgWordsPerSession != 400 {
		t.Errorf("avg = %v, want 400", stats.Totals.AvgWordsPerSession)
	}
}

func TestWritingStats_AllProjects(t *testing.T) {
	s := newTestStore(t)
	first := seedProject(t, s, "Embers")
	second := seedProject(t, s, "Tides")

	if _, err := s.RecordWritingSession(first, 100, 0, ""); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}
	if _, err := s.RecordWritingSession(second, 200, 0, ""); err != nil {
		t.Fatalf("RecordWritingSession: %v", err)
	}

	stats, err := s.WritingStats(0, 7)
	if err != nil {
		t.Fatalf("WritingStats: %v", err)
	}
	if stats.Totals.TotalWords != 300 {
		t.Errorf("cross-project total = %d, want 300", stats.Totals.TotalWords)
	}
}

func TestWritingStats_MissingProject(t *testing.T) {
	s := newTestStore(t)

	_, err := s.WritingStats(42, 30)
	mustBeValidation(t, err, "project 42 not found")
}

func TestWritingStats_DefaultWindow(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")

	stats, err := s.WritingStats(projectID, 0)
	if err != nil {
		t.Fatalf("WritingStats: %v", err)
	}
	if stats.PeriodDays != 30 {
		t.Errorf("default period = %d, want 30", stats.PeriodDays)
	}
}

// ─── Project stats ───────────────────────────────────────────────────────────

func TestProjectStats_Snapshot(t *testing.T) {
	s := newTestStore(t)
	projectID := seedProject(t, s, "Embers")
	seedSearchCorpus(t, s, projectID)

	if _, err := s.AddScene(projectID, memory.SceneParams{
		ChapterNumber: 1, SceneNumber: 1, WordCount: 900, Status: memory.StatusComplete,
	}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}
	if _, err := s.AddScene(projectID, memory.SceneParams{
		ChapterNumber: 1, SceneNumber: 2, WordCount: 600,
	}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	stats, err := s.ProjectStats(projectID)
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if stats.Project.Name != "Embers" {
		t.Errorf("project = %+v", stats.Project)
	}
	if stats.Characters != 1 || stats.Plots != 1 || stats.WorldElements != 1 {
		t.Errorf("entity counts = %d/%d/%d", stats.Characters, stats.Plots, stats.WorldElements)
	}
	if stats.Scenes.Total != 2 || stats.Scenes.Completed != 1 {
		t.Errorf("scenes = %+v", stats.Scenes)
	}
	if stats.Scenes.CompletionRate != 50 {
		t.Errorf("completion rate = %v, want 50", stats.Scenes.CompletionRate)
	}
	if stats.Words.Current != 1500 || stats.Words.Target != 50000 {
		t.Errorf("words = %+v", stats.Words)
	}
	if stats.Words.Progress != 3 {
		t.Errorf("progress = %v, want 3", stats.Words.Progress)
	}
}

func TestProjectStats_ZeroDenominators(t *testing.T) {
	s := newTestStore(t)
	projectID, err := s.CreateProject("Blank", memory.ProjectParams{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	stats, err := s.ProjectStats(projectID)
	if err != nil {
		t.Fatalf("ProjectStats: %v", err)
	}
	if stats.Scenes.CompletionRate != 0 || stats.Words.Progress != 0 {
		t.Errorf("zero denominators should yield zero rates: %+v", stats)
	}
}

func TestProjectStats_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ProjectStats(42)
	mustBeValidation(t, err, "project 42 not found")
}

// ─── Truncate ────────────────────────────────────────────────────────────────

func TestTruncate(t *testing.T) {
	if got := memory.Truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := memory.Truncate("hello world", 5); got != "hello..." {
		t.Errorf("truncated = %q, want %q", got, "hello...")
	}
	if got := memory.Truncate("", 5); got != "" {
		t.Errorf("empty string changed: %q", got)
	}
}
