package repositories

import "context"

// SnapshotRepository persists the engine's whole-state snapshot as an
// opaque versioned blob. The engine never reads or writes anything
// finer-grained; durability is best-effort by design.
type SnapshotRepository interface {
	// LoadLatest returns the most recently saved snapshot blob, or nil
	// when nothing has been saved yet.
	LoadLatest(ctx context.Context) ([]byte, error)

	// Save stores a new snapshot blob at the given schema version.
	Save(ctx context.Context, version int, data []byte) error
}
