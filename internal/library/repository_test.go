package library

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemCols = []string{"id", "title", "item_type", "url", "folder", "drive_id", "mime_type", "media_key", "created_at"}

func TestSQLRepository_CreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepository(db)

	at := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	it := &Item{ID: "i1", UserID: "user-1", Title: "Price list", Type: TypeLink, URL: "https://x", Folder: FolderLinks, CreatedAt: at}
	mock.ExpectExec("INSERT INTO library_items").
		WithArgs("i1", "user-1", "Price list", "Link", "https://x", "Links", "", "", "", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), it))

	mock.ExpectQuery("FROM library_items WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("i2", "Label.png", "Image", "https://cdn/l.png", "Uploads", "", "image/png", "users/user-1/library/l.png", at).
			AddRow("i1", "Price list", "Link", "https://x", "Links", "", "", "", at.Add(-time.Hour)))
	items, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, TypeImage, items[0].Type)
	assert.Equal(t, "users/user-1/library/l.png", items[0].MediaKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepository(db)

	mock.ExpectQuery("FROM library_items WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("user-1", "nope").
		WillReturnRows(sqlmock.NewRows(itemCols))
	_, err = repo.Get(context.Background(), "user-1", "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)

	mock.ExpectExec("DELETE FROM library_items").
		WithArgs("user-1", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "user-1", "nope"), ErrItemNotFound)
}
