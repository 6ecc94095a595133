package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: mockDB, logger: zap.NewNop()}
	return &SnapshotRepository{db: db, logger: zap.NewNop()}, mock
}

func TestSnapshotRepository_LoadLatest(t *testing.T) {
	repo, mock := newMockRepo(t)

	blob := []byte(`{"version":3,"objects":[],"gaps":[],"assessments":{}}`)
	mock.ExpectQuery("SELECT data").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(blob))

	data, err := repo.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, blob, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_LoadLatest_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT data").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	data, err := repo.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_LoadLatest_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT data").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.LoadLatest(context.Background())
	assert.Error(t, err)
}

func TestSnapshotRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)

	blob := []byte(`{"version":3}`)
	mock.ExpectExec("INSERT INTO governance_snapshots").
		WithArgs(3, blob).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), 3, blob)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_Save_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO governance_snapshots").
		WillReturnError(errors.New("disk full"))

	err := repo.Save(context.Background(), 3, []byte(`{}`))
	assert.Error(t, err)
}
