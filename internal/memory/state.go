package memory

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// stateFileName holds the active project id inside the data directory.
const stateFileName = "current_project.txt"

// ProjectState persists which project is active across server restarts.
// The file holds a single decimal id; a missing file means no selection.
// All methods are safe for concurrent use.
type ProjectState struct {
	mu    sync.Mutex
	path  string
	store *Store
	id    int64
	log   *zap.Logger
}

// LoadProjectState reads the state file from dataDir and validates the
// recorded project against the store. A recorded project that no longer
// exists clears the file instead of failing, so a deleted project can never
// wedge startup.
func LoadProjectState(dataDir string, store *Store, log *zap.Logger) (*ProjectState, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ps := &ProjectState{
		path:  filepath.Join(dataDir, stateFileName),
		store: store,
		log:   log,
	}

	data, err := os.ReadFile(ps.path)
	if os.IsNotExist(err) {
		return ps, nil
	}
	if err != nil {
		return nil, dbError("reading project state", err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		log.Warn("discarding malformed project state file",
			zap.String("path", ps.path), zap.Error(err))
		_ = os.Remove(ps.path)
		return ps, nil
	}

	project, err := ps.store.GetProject(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		log.Info("recorded active project no longer exists, clearing state",
			zap.Int64("project_id", id))
		if err := os.Remove(ps.path); err != nil && !os.IsNotExist(err) {
			return nil, dbError("clearing stale project state", err)
		}
		return ps, nil
	}

	ps.id = id
	return ps, nil
}

// Current returns the active project id, or 0 when none is selected.
func (ps *ProjectState) Current() int64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.id
}

// Set activates a project and persists the selection. The project must
// exist.
func (ps *ProjectState) Set(id int64) error {
	project, err := ps.store.GetProject(id)
	if err != nil {
		return err
	}
	if project == nil {
		return validationf("project %d not found", id)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err := ps.write(strconv.FormatInt(id, 10)); err != nil {
		return err
	}
	ps.id = id
	return nil
}

// Clear drops the selection and removes the state file.
func (ps *ProjectState) Clear() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err := os.Remove(ps.path); err != nil && !os.IsNotExist(err) {
		return dbError("clearing project state", err)
	}
	ps.id = 0
	return nil
}

// write replaces the state file atomically via a temp-file rename so a
// crash mid-write never leaves a half-written id behind.
func (ps *ProjectState) write(content string) error {
	tmp := ps.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content+"\n"), 0600); err != nil {
		return dbError("writing project state", err)
	}
	if err := os.Rename(tmp, ps.path); err != nil {
		_ = os.Remove(tmp)
		return dbError("replacing project state", err)
	}
	return nil
}
