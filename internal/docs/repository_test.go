package docs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryCols = []string{"id", "content", "entry_type", "url", "media_key", "entry_date", "is_edited", "created_at", "updated_at"}

func TestSQLRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	e := &Entry{ID: "e1", UserID: "user-1", Content: "Harvest notes", Type: TypeText, Date: now, CreatedAt: now}
	mock.ExpectExec("INSERT INTO doc_entries").
		WithArgs("e1", "user-1", "Harvest notes", "text", "", "", now, false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewSQLRepository(db).Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_ListNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	edited := newer.Add(time.Hour)
	rows := sqlmock.NewRows(entryCols).
		AddRow("e2", "hive.jpg", "image", "https://cdn/x.jpg", "users/u/documentation/x.jpg", newer, true, newer, edited).
		AddRow("e1", "first", "text", "", "", older, false, older, nil)
	mock.ExpectQuery("SELECT .+ FROM doc_entries WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(rows)

	got, err := NewSQLRepository(db).List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TypeImage, got[0].Type)
	assert.Equal(t, "users/u/documentation/x.jpg", got[0].MediaKey)
	require.NotNil(t, got[0].UpdatedAt)
	assert.True(t, got[0].UpdatedAt.Equal(edited))
	assert.Nil(t, got[1].UpdatedAt)
	assert.Equal(t, "user-1", got[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM doc_entries WHERE user_id").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows(entryCols))

	_, err = NewSQLRepository(db).Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestSQLRepository_UpdateAndDeleteRequireRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE doc_entries SET content").
		WithArgs("user-1", "e1", "fixed", true, &now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateContent(context.Background(), &Entry{ID: "e1", UserID: "user-1", Content: "fixed", IsEdited: true, UpdatedAt: &now}))

	mock.ExpectExec("DELETE FROM doc_entries").
		WithArgs("user-1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "user-1", "gone"), ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
