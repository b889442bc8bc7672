package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound = errors.New("tournament result not found")
	ErrResultConflict = errors.New("tournament result already archived")
)

// ResultRepository archives completed tournaments. Live bracket state is never stored here.
type ResultRepository interface {
	Create(ctx context.Context, result *models.CompletedTournament) error
	GetByRunID(ctx context.Context, runID uuid.UUID) (*models.CompletedTournament, error)
	// ListByTenant returns the newest results first. An empty winnerID lists everything.
	ListByTenant(ctx context.Context, tenantID string, winnerID string, limit int) ([]*models.CompletedTournament, error)
	Delete(ctx context.Context, tenantID string, runID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

const resultColumns = `run_id, tenant_id, mode, details, placements, round_count, archive_url, completed_at`

func (r *postgresResultRepository) Create(ctx context.Context, result *models.CompletedTournament) error {
	details, err := json.Marshal(result.Details)
	if err != nil {
		return fmt.Errorf("failed to encode result details: %w", err)
	}
	placements, err := json.Marshal(result.Placements)
	if err != nil {
		return fmt.Errorf("failed to encode placements: %w", err)
	}

	query := `
		INSERT INTO tournament_results
			(run_id, tenant_id, mode, title, details, placements, winner_ids, round_count, archive_url, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		result.RunID,
		result.TenantID,
		result.Mode,
		result.Details.Title,
		details,
		placements,
		pq.Array(result.WinnerIDs()),
		result.RoundCount,
		result.ArchiveURL,
		result.CompletedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrResultConflict
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.CompletedTournament, error) {
	query := `SELECT ` + resultColumns + ` FROM tournament_results WHERE run_id = $1`

	result, err := scanResult(r.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *postgresResultRepository) ListByTenant(ctx context.Context, tenantID string, winnerID string, limit int) ([]*models.CompletedTournament, error) {
	query := `SELECT ` + resultColumns + `
		FROM tournament_results
		WHERE tenant_id = $1 AND ($2 = '' OR $2 = ANY(winner_ids))
		ORDER BY completed_at DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, tenantID, winnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*models.CompletedTournament, 0)
	for rows.Next() {
		result, scanErr := scanResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresResultRepository) Delete(ctx context.Context, tenantID string, runID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_results WHERE tenant_id = $1 AND run_id = $2`, tenantID, runID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_results WHERE completed_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*models.CompletedTournament, error) {
	var (
		result     models.CompletedTournament
		details    []byte
		placements []byte
		archiveURL sql.NullString
	)
	err := row.Scan(
		&result.RunID,
		&result.TenantID,
		&result.Mode,
		&details,
		&placements,
		&result.RoundCount,
		&archiveURL,
		&result.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &result.Details); err != nil {
		return nil, fmt.Errorf("failed to decode details of result %s: %w", result.RunID, err)
	}
	if err := json.Unmarshal(placements, &result.Placements); err != nil {
		return nil, fmt.Errorf("failed to decode placements of result %s: %w", result.RunID, err)
	}
	if archiveURL.Valid {
		result.ArchiveURL = &archiveURL.String
	}
	return &result, nil
}
