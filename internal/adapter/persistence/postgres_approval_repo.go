package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
)

// PostgresApprovalRepository implements ApprovalRepository using PostgreSQL.
// The document row, its lines and the audit log always change inside one
// transaction.
type PostgresApprovalRepository struct {
	db *sql.DB
}

// NewPostgresApprovalRepository creates a new PostgreSQL approval repository
func NewPostgresApprovalRepository(db *sql.DB) ports.ApprovalRepository {
	return &PostgresApprovalRepository{db: db}
}

// Create saves a new document, its lines and the creation audit entry
func (r *PostgresApprovalRepository) Create(ctx context.Context, doc *domain.ApprovalDocument, entry *domain.AuditLogEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	docQuery := `
		INSERT INTO approvals (id, title, content, category, status, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, docQuery,
		doc.ID,
		doc.Title,
		doc.Content,
		string(doc.Category),
		string(doc.Status),
		doc.AuthorID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval: %w", err)
	}

	lineQuery := `
		INSERT INTO approval_lines (id, approval_id, approver_id, line_order, action, comment, acted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, line := range doc.Lines {
		_, err = tx.ExecContext(ctx, lineQuery,
			line.ID,
			doc.ID,
			line.ApproverID,
			line.Order,
			string(line.Action),
			line.Comment,
			line.ActedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert approval line: %w", err)
		}
	}

	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindByID retrieves a document with its lines
func (r *PostgresApprovalRepository) FindByID(ctx context.Context, id string) (*domain.ApprovalDocument, error) {
	doc, err := scanApproval(r.db.QueryRowContext(ctx, `
		SELECT id, title, content, category, status, author_id, created_at, updated_at
		FROM approvals
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	doc.Lines, err = r.loadLines(ctx, r.db, doc.ID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Mutate loads the document under a row lock, applies fn and persists the
// outcome. FOR UPDATE serializes concurrent mutations of the same document:
// the second caller blocks until the first commits, then fn sees the
// committed state and its own preconditions decide the result. When fn fails
// the transaction rolls back and no audit entry is written.
func (r *PostgresApprovalRepository) Mutate(ctx context.Context, id string, fn func(doc *domain.ApprovalDocument) (*domain.AuditLogEntry, error)) (*domain.ApprovalDocument, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := scanApproval(tx.QueryRowContext(ctx, `
		SELECT id, title, content, category, status, author_id, created_at, updated_at
		FROM approvals
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return nil, err
	}

	doc.Lines, err = r.loadLines(ctx, tx, doc.ID)
	if err != nil {
		return nil, err
	}

	entry, err := fn(doc)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE approvals SET status = $2, updated_at = $3 WHERE id = $1
	`, doc.ID, string(doc.Status), doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}

	for _, line := range doc.Lines {
		_, err = tx.ExecContext(ctx, `
			UPDATE approval_lines SET action = $2, comment = $3, acted_at = $4 WHERE id = $1
		`, line.ID, string(line.Action), line.Comment, line.ActedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to update approval line: %w", err)
		}
	}

	if entry != nil {
		if err := insertAuditEntry(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return doc, nil
}

// List retrieves documents matching the filter, newest first
func (r *PostgresApprovalRepository) List(ctx context.Context, filter ports.ApprovalFilter) ([]*domain.ApprovalDocument, error) {
	query := `
		SELECT id, title, content, category, status, author_id, created_at, updated_at
		FROM approvals
		WHERE 1=1
	`
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return r.queryApprovals(ctx, query, args...)
}

// ListByAuthor retrieves the author's documents, newest first
func (r *PostgresApprovalRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.ApprovalDocument, error) {
	query := `
		SELECT id, title, content, category, status, author_id, created_at, updated_at
		FROM approvals
		WHERE author_id = $1
		ORDER BY created_at DESC
	`
	return r.queryApprovals(ctx, query, authorID)
}

// ListPendingForApprover retrieves pending documents on which the approver
// still holds a pending line. Whether it is actually the approver's turn is
// decided by the caller against the loaded lines.
func (r *PostgresApprovalRepository) ListPendingForApprover(ctx context.Context, approverID string) ([]*domain.ApprovalDocument, error) {
	query := `
		SELECT DISTINCT a.id, a.title, a.content, a.category, a.status, a.author_id, a.created_at, a.updated_at
		FROM approvals a
		JOIN approval_lines l ON l.approval_id = a.id
		WHERE a.status = 'pending' AND l.approver_id = $1 AND l.action = 'pending'
		ORDER BY a.created_at DESC
	`
	return r.queryApprovals(ctx, query, approverID)
}

// ListLogs retrieves a document's audit trail, oldest first
func (r *PostgresApprovalRepository) ListLogs(ctx context.Context, approvalID string) ([]*domain.AuditLogEntry, error) {
	query := `
		SELECT id, approval_id, user_id, action, comment, created_at
		FROM approval_logs
		WHERE approval_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var comment sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.ApprovalID,
			&entry.UserID,
			&entry.Action,
			&comment,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval log: %w", err)
		}
		entry.Comment = comment.String
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval logs: %w", err)
	}
	return entries, nil
}

// querier covers both *sql.DB and *sql.Tx for line loading
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *PostgresApprovalRepository) loadLines(ctx context.Context, q querier, approvalID string) ([]*domain.ApprovalLine, error) {
	query := `
		SELECT id, approver_id, line_order, action, comment, acted_at
		FROM approval_lines
		WHERE approval_id = $1
		ORDER BY line_order ASC
	`
	rows, err := q.QueryContext(ctx, query, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval lines: %w", err)
	}
	defer rows.Close()

	var lines []*domain.ApprovalLine
	for rows.Next() {
		var line domain.ApprovalLine
		var comment sql.NullString
		var actedAt sql.NullTime
		err := rows.Scan(
			&line.ID,
			&line.ApproverID,
			&line.Order,
			&line.Action,
			&comment,
			&actedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval line: %w", err)
		}
		line.Comment = comment.String
		if actedAt.Valid {
			line.ActedAt = &actedAt.Time
		}
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval lines: %w", err)
	}
	return lines, nil
}

func (r *PostgresApprovalRepository) queryApprovals(ctx context.Context, query string, args ...interface{}) ([]*domain.ApprovalDocument, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer rows.Close()

	var docs []*domain.ApprovalDocument
	for rows.Next() {
		var doc domain.ApprovalDocument
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Content,
			&doc.Category,
			&doc.Status,
			&doc.AuthorID,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approvals: %w", err)
	}

	for _, doc := range docs {
		doc.Lines, err = r.loadLines(ctx, r.db, doc.ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func scanApproval(row *sql.Row) (*domain.ApprovalDocument, error) {
	var doc domain.ApprovalDocument
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.Category,
		&doc.Status,
		&doc.AuthorID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, fmt.Errorf("failed to find approval: %w", err)
	}
	return &doc, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertAuditEntry(ctx context.Context, e execer, entry *domain.AuditLogEntry) error {
	query := `
		INSERT INTO approval_logs (id, approval_id, user_id, action, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := e.ExecContext(ctx, query,
		entry.ID,
		entry.ApprovalID,
		entry.UserID,
		string(entry.Action),
		entry.Comment,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval log: %w", err)
	}
	return nil
}
