package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/repositories"
)

// SnapshotRepository implements repositories.SnapshotRepository on a
// single append-only table of versioned blobs.
type SnapshotRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB, logger *zap.Logger) repositories.SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// LoadLatest returns the most recently saved snapshot blob, or nil when
// nothing has been saved yet.
func (r *SnapshotRepository) LoadLatest(ctx context.Context) ([]byte, error) {
	query := `
		SELECT data
		FROM governance_snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var data []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	r.logger.Debug("snapshot loaded", zap.Int("bytes", len(data)))
	return data, nil
}

// Save stores a new snapshot blob at the given schema version.
func (r *SnapshotRepository) Save(ctx context.Context, version int, data []byte) error {
	query := `
		INSERT INTO governance_snapshots (version, data)
		VALUES ($1, $2)
	`

	if _, err := r.db.ExecContext(ctx, query, version, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug("snapshot saved", zap.Int("version", version), zap.Int("bytes", len(data)))
	return nil
}
