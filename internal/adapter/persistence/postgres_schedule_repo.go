package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// PostgresScheduleRepository implements ScheduleRepository using PostgreSQL
type PostgresScheduleRepository struct {
	db *sql.DB
}

// NewPostgresScheduleRepository creates a new PostgreSQL schedule repository
func NewPostgresScheduleRepository(db *sql.DB) ports.ScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

// Create saves a new schedule
func (r *PostgresScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedules (id, title, description, start_time, end_time, location, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.Title,
		schedule.Description,
		schedule.StartTime,
		schedule.EndTime,
		schedule.Location,
		schedule.CreatorID,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// FindByID retrieves a schedule by id
func (r *PostgresScheduleRepository) FindByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `
		SELECT id, title, description, start_time, end_time, location, creator_id, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`
	var schedule domain.Schedule
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.Title,
		&schedule.Description,
		&schedule.StartTime,
		&schedule.EndTime,
		&schedule.Location,
		&schedule.CreatorID,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return &schedule, nil
}

// List retrieves schedules, latest start time first
func (r *PostgresScheduleRepository) List(ctx context.Context, limit int) ([]*domain.Schedule, error) {
	query := `
		SELECT id, title, description, start_time, end_time, location, creator_id, created_at, updated_at
		FROM schedules
		ORDER BY start_time DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	return r.querySchedules(ctx, query, args...)
}

// ListByCreator retrieves the creator's schedules, latest start time first
func (r *PostgresScheduleRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Schedule, error) {
	query := `
		SELECT id, title, description, start_time, end_time, location, creator_id, created_at, updated_at
		FROM schedules
		WHERE creator_id = $1
		ORDER BY start_time DESC
	`
	return r.querySchedules(ctx, query, creatorID)
}

func (r *PostgresScheduleRepository) querySchedules(ctx context.Context, query string, args ...interface{}) ([]*domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		var schedule domain.Schedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.Title,
			&schedule.Description,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.Location,
			&schedule.CreatorID,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, &schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}
	return schedules, nil
}
