package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/shared"
)

// HarvestRepository implements models.Repository[*models.HarvestRun] for run history.
//
// Handles harvest run CRUD operations with soft delete support and status-based queries.
type HarvestRepository struct {
	db *sql.DB
}

// NewHarvestRepository creates a new HarvestRepository with the given database connection
func NewHarvestRepository(db *sql.DB) *HarvestRepository {
	return &HarvestRepository{db: db}
}

// Create inserts a new harvest run into the database with generated ID and sequence
func (r *HarvestRepository) Create(run *models.HarvestRun) error {
	sequence, err := NextSequence(r.db, "harvests")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO harvests (
			id, sequence, target, found, skipped, status, reason,
			format, output_path, started_at, finished_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Target(),
		run.Found(),
		run.Skipped(),
		run.Status(),
		run.Reason(),
		run.Format(),
		run.OutputPath(),
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert harvest run: %w", err)
	}

	return nil
}

// Get retrieves a harvest run by ID, excluding soft-deleted runs
func (r *HarvestRepository) Get(id string) (*models.HarvestRun, error) {
	query := `
		SELECT
			id, sequence, target, found, skipped, status, reason, format,
			output_path, started_at, finished_at, created_at, updated_at, deleted_at
		FROM harvests
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing harvest run in the database
func (r *HarvestRepository) Update(run *models.HarvestRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE harvests
		SET found = ?, skipped = ?, status = ?, reason = ?,
			output_path = ?, started_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Found(),
		run.Skipped(),
		run.Status(),
		run.Reason(),
		run.OutputPath(),
		run.StartedAt(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update harvest run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete soft-deletes a harvest run by ID
func (r *HarvestRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE harvests
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete harvest run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// Clear soft-deletes all harvest runs and returns the number of runs cleared
func (r *HarvestRepository) Clear() (int, error) {
	result, err := r.db.Exec("UPDATE harvests SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear harvest runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

// List retrieves all harvest runs matching the given criteria, excluding soft-deleted runs
func (r *HarvestRepository) List(criteria map[string]any) ([]*models.HarvestRun, error) {
	query := `
		SELECT
			id, sequence, target, found, skipped, status, reason, format,
			output_path, started_at, finished_at, created_at, updated_at, deleted_at
		FROM harvests
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if format, ok := criteria["format"].(string); ok && format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query harvest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.HarvestRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single [sql.Row] into a [models.HarvestRun]
func (r *HarvestRepository) scanOne(row *sql.Row) (*models.HarvestRun, error) {
	var (
		id         string
		sequence   int
		target     int
		found      int
		skipped    int
		status     string
		reason     string
		format     string
		outputPath string
		startedAt  sql.NullTime
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &target, &found, &skipped, &status, &reason,
		&format, &outputPath, &startedAt, &finishedAt, &createdAt,
		&updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan harvest run: %w", err)
	}

	run := models.NewHarvestRun(sequence, target, format)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	run.SetFound(found)
	run.SetSkipped(skipped)
	run.SetStatus(status)
	run.SetReason(reason)
	run.SetOutputPath(outputPath)
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// scanRow scans a row from [sql.Rows] into a [models.HarvestRun]
func (r *HarvestRepository) scanRow(rows *sql.Rows) (*models.HarvestRun, error) {
	var (
		id         string
		sequence   int
		target     int
		found      int
		skipped    int
		status     string
		reason     string
		format     string
		outputPath string
		startedAt  sql.NullTime
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &target, &found, &skipped, &status, &reason,
		&format, &outputPath, &startedAt, &finishedAt, &createdAt,
		&updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan harvest run: %w", err)
	}

	run := models.NewHarvestRun(sequence, target, format)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	run.SetFound(found)
	run.SetSkipped(skipped)
	run.SetStatus(status)
	run.SetReason(reason)
	run.SetOutputPath(outputPath)
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
