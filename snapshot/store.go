package snapshot

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/repositories"
)

// persistTimeout bounds the best-effort save so transitions never hang
// on a slow database.
const persistTimeout = 5 * time.Second

// Store holds the current in-memory snapshot, which is authoritative
// for the session. Transitions are pure functions applied under the
// lock; the resulting snapshot is persisted best-effort afterwards, and
// persistence failures are logged and swallowed.
type Store struct {
	mu      sync.RWMutex
	current models.Snapshot
	repo    repositories.SnapshotRepository
	logger  *zap.Logger
}

// NewStore creates a store around an empty snapshot. Call Open to load
// persisted state.
func NewStore(repo repositories.SnapshotRepository, logger *zap.Logger) *Store {
	return &Store{
		current: models.NewSnapshot(),
		repo:    repo,
		logger:  logger,
	}
}

// Open loads the latest persisted snapshot through migration. A missing
// or unmigratable blob leaves the store on a blank snapshot.
func (s *Store) Open(ctx context.Context) {
	raw, err := s.repo.LoadLatest(ctx)
	if err != nil {
		s.logger.Warn("snapshot load failed, starting blank", zap.Error(err))
		return
	}

	snap := Load(raw)

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.logger.Info("snapshot loaded",
		zap.Int("objects", len(snap.Objects)),
		zap.Int("gaps", len(snap.Gaps)))
}

// View returns a deep copy of the current snapshot for read-only use.
func (s *Store) View() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Apply runs a pure transition against a copy of the current snapshot.
// If the transition succeeds the result becomes the new current
// snapshot and is persisted best-effort; if it fails, no state changes.
func (s *Store) Apply(transition func(models.Snapshot) (models.Snapshot, error)) (models.Snapshot, error) {
	s.mu.Lock()
	next, err := transition(s.current.Clone())
	if err != nil {
		s.mu.Unlock()
		return models.Snapshot{}, err
	}
	s.current = next
	result := next.Clone()
	s.mu.Unlock()

	s.persist(result)
	return result, nil
}

// Replace swaps in a whole snapshot (used by import), running it
// through migration first.
func (s *Store) Replace(snap models.Snapshot) models.Snapshot {
	migrated := Migrate(snap)

	s.mu.Lock()
	s.current = migrated
	result := migrated.Clone()
	s.mu.Unlock()

	s.persist(result)
	return result
}

// persist saves the snapshot, swallowing any failure. The in-memory
// snapshot stays authoritative whether or not the save lands.
func (s *Store) persist(snap models.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("snapshot marshal failed, state not persisted", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, snap.Version, raw); err != nil {
		s.logger.Warn("snapshot save failed, state not persisted", zap.Error(err))
	}
}
