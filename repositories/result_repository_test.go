package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resultRowColumns = []string{"run_id", "tenant_id", "mode", "details", "placements", "round_count", "archive_url", "completed_at"}

func newMockRepo(t *testing.T) (ResultRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresResultRepository(db), mock
}

func sampleResult() *models.CompletedTournament {
	return &models.CompletedTournament{
		RunID:      uuid.New(),
		TenantID:   "g1",
		Mode:       models.ModeOneVsOne,
		Details:    models.Details{Title: "Friday Cup"},
		RoundCount: 2,
		Placements: []models.Placement{
			{Place: 1, Entrants: models.Unit{models.NewPlayer("1", "alice")}},
			{Place: 2, Entrants: models.Unit{models.NewPlayer("2", "bob")}},
		},
		CompletedAt: time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestResultRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	result := sampleResult()

	mock.ExpectExec("INSERT INTO tournament_results").
		WithArgs(result.RunID, "g1", "1v1", "Friday Cup", sqlmock.AnyArg(), sqlmock.AnyArg(), "{\"1\"}", 2, nil, result.CompletedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), result))
}

func TestResultRepositoryCreateConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO tournament_results").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), sampleResult())
	assert.ErrorIs(t, err, ErrResultConflict)
}

func TestResultRepositoryGetByRunID(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := sampleResult()
	details, _ := json.Marshal(want.Details)
	placements, _ := json.Marshal(want.Placements)

	mock.ExpectQuery("SELECT run_id, tenant_id").
		WithArgs(want.RunID).
		WillReturnRows(sqlmock.NewRows(resultRowColumns).
			AddRow(want.RunID.String(), "g1", "1v1", details, placements, 2, "https://cdn.example/r.json", want.CompletedAt))

	got, err := repo.GetByRunID(context.Background(), want.RunID)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Details, got.Details)
	assert.Equal(t, want.Placements, got.Placements)
	require.NotNil(t, got.ArchiveURL)
	assert.Equal(t, "https://cdn.example/r.json", *got.ArchiveURL)
}

func TestResultRepositoryGetByRunIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := uuid.New()

	mock.ExpectQuery("SELECT run_id, tenant_id").
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows(resultRowColumns))

	_, err := repo.GetByRunID(context.Background(), runID)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultRepositoryListByTenant(t *testing.T) {
	repo, mock := newMockRepo(t)
	first, second := sampleResult(), sampleResult()
	details, _ := json.Marshal(first.Details)
	placements, _ := json.Marshal(first.Placements)

	mock.ExpectQuery("FROM tournament_results").
		WithArgs("g1", "1", 10).
		WillReturnRows(sqlmock.NewRows(resultRowColumns).
			AddRow(first.RunID.String(), "g1", "1v1", details, placements, 2, nil, first.CompletedAt).
			AddRow(second.RunID.String(), "g1", "1v1", details, placements, 2, nil, second.CompletedAt))

	results, err := repo.ListByTenant(context.Background(), "g1", "1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.RunID, results[0].RunID)
	assert.Nil(t, results[0].ArchiveURL)
	assert.Equal(t, []string{"1"}, results[1].WinnerIDs())
}

func TestResultRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := uuid.New()

	mock.ExpectExec("DELETE FROM tournament_results WHERE tenant_id").
		WithArgs("g1", runID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tournament_results WHERE tenant_id").
		WithArgs("g1", runID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "g1", runID))
	assert.ErrorIs(t, repo.Delete(context.Background(), "g1", runID), ErrResultNotFound)
}

func TestResultRepositoryDeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM tournament_results WHERE completed_at").
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteOlderThan(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
