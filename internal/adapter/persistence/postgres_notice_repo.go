package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// PostgresNoticeRepository implements NoticeRepository using PostgreSQL
type PostgresNoticeRepository struct {
	db *sql.DB
}

// NewPostgresNoticeRepository creates a new PostgreSQL notice repository
func NewPostgresNoticeRepository(db *sql.DB) ports.NoticeRepository {
	return &PostgresNoticeRepository{db: db}
}

// Create saves a new notice
func (r *PostgresNoticeRepository) Create(ctx context.Context, notice *domain.Notice) error {
	query := `
		INSERT INTO notices (id, title, content, is_pinned, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		notice.ID,
		notice.Title,
		notice.Content,
		notice.IsPinned,
		notice.AuthorID,
		notice.CreatedAt,
		notice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}
	return nil
}

// FindByID retrieves a notice by id
func (r *PostgresNoticeRepository) FindByID(ctx context.Context, id string) (*domain.Notice, error) {
	query := `
		SELECT id, title, content, is_pinned, author_id, created_at, updated_at
		FROM notices
		WHERE id = $1
	`
	var notice domain.Notice
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&notice.ID,
		&notice.Title,
		&notice.Content,
		&notice.IsPinned,
		&notice.AuthorID,
		&notice.CreatedAt,
		&notice.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to find notice: %w", err)
	}
	return &notice, nil
}

// List retrieves notices, pinned first then newest first
func (r *PostgresNoticeRepository) List(ctx context.Context, limit int) ([]*domain.Notice, error) {
	query := `
		SELECT id, title, content, is_pinned, author_id, created_at, updated_at
		FROM notices
		ORDER BY is_pinned DESC, created_at DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notices: %w", err)
	}
	defer rows.Close()

	var notices []*domain.Notice
	for rows.Next() {
		var notice domain.Notice
		err := rows.Scan(
			&notice.ID,
			&notice.Title,
			&notice.Content,
			&notice.IsPinned,
			&notice.AuthorID,
			&notice.CreatedAt,
			&notice.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notice: %w", err)
		}
		notices = append(notices, &notice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notices: %w", err)
	}
	return notices, nil
}
