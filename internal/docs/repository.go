package docs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository persists documentation entries per user.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, userID, id string) (*Entry, error)
	List(ctx context.Context, userID string) ([]*Entry, error)
	UpdateContent(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, userID, id string) error
}

// SQLRepository stores entries in the doc_entries table.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const entryColumns = `id, content, entry_type, url, media_key, entry_date, is_edited, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doc_entries (id, user_id, content, entry_type, url, media_key, entry_date, is_edited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.UserID, e.Content, string(e.Type), e.URL, e.MediaKey, e.Date, e.IsEdited, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("docs: insert entry: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, userID, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM doc_entries WHERE user_id = $1 AND id = $2`, userID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docs: get entry: %w", err)
	}
	e.UserID = userID
	return e, nil
}

// List returns the user's entries, newest first.
func (r *SQLRepository) List(ctx context.Context, userID string) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM doc_entries WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("docs: list entries: %w", err)
	}
	defer rows.Close()

	out := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("docs: scan entry: %w", err)
		}
		e.UserID = userID
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) UpdateContent(ctx context.Context, e *Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE doc_entries SET content = $3, is_edited = $4, updated_at = $5
		WHERE user_id = $1 AND id = $2`,
		e.UserID, e.ID, e.Content, e.IsEdited, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("docs: update entry: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM doc_entries WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("docs: delete entry: %w", err)
	}
	return requireRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e         Entry
		entryType string
		updatedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Content, &entryType, &e.URL, &e.MediaKey, &e.Date, &e.IsEdited, &e.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Type = EntryType(entryType)
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	return &e, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docs: rows affected: %w", err)
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
