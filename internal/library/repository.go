package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	Get(ctx context.Context, userID, id string) (*Item, error)
	List(ctx context.Context, userID string) ([]*Item, error)
	Delete(ctx context.Context, userID, id string) error
}

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const itemColumns = `id, title, item_type, url, folder, drive_id, mime_type, media_key, created_at`

func (r *SQLRepository) Create(ctx context.Context, it *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO library_items (id, user_id, title, item_type, url, folder, drive_id, mime_type, media_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.ID, it.UserID, it.Title, string(it.Type), it.URL, it.Folder, it.DriveID, it.MimeType, it.MediaKey, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("library: insert item: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, userID, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM library_items WHERE user_id = $1 AND id = $2`, userID, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: get item: %w", err)
	}
	it.UserID = userID
	return it, nil
}

// List returns the user's items, newest first.
func (r *SQLRepository) List(ctx context.Context, userID string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM library_items WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("library: list items: %w", err)
	}
	defer rows.Close()

	out := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("library: scan item: %w", err)
		}
		it.UserID = userID
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM library_items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("library: delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("library: rows affected: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var (
		it       Item
		itemType string
	)
	if err := row.Scan(&it.ID, &it.Title, &itemType, &it.URL, &it.Folder, &it.DriveID, &it.MimeType, &it.MediaKey, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Type = ItemType(itemType)
	return &it, nil
}
