package projects

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLRepository(db), mock
}

func TestSQLRepository_ListProjectsAndTasks(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, status, priority, created_at, updated_at\\s+FROM projects WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "priority", "created_at", "updated_at"}).
			AddRow("p2", "Diwali hampers", "In Progress", "High", at, at).
			AddRow("p1", "Label redesign", "Done", "Low", at.Add(-time.Hour), at))
	mock.ExpectQuery("FROM project_tasks WHERE user_id = \\$1 AND project_id = ANY\\(\\$2\\)").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "title", "is_done", "created_at"}).
			AddRow("t1", "p2", "Order jars", true, at))

	projects, err := repo.ListProjects(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID)

	tasks, err := repo.ListTasks(context.Background(), "user-1", []string{"p2", "p1"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_ListTasksSkipsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	tasks, err := repo.ListTasks(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_DeleteProjectRemovesTasks(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM project_tasks WHERE user_id = \\$1 AND project_id = \\$2").
		WithArgs("user-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM projects WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("user-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteProject(context.Background(), "user-1", "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_DeleteMissingProjectRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM project_tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM projects").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.DeleteProject(context.Background(), "user-1", "nope"), ErrProjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_CreateTaskRequiresOwnedProject(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO project_tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateTask(context.Background(), "user-1", &Task{ID: "t1", ProjectID: "other", Title: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSQLRepository_ToggleTask(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE project_tasks SET is_done = NOT is_done").
		WithArgs("user-1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "title", "is_done", "created_at"}).
			AddRow("t1", "p1", "Order jars", true, at))
	mock.ExpectQuery("UPDATE project_tasks SET is_done = NOT is_done").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "title", "is_done", "created_at"}))

	task, err := repo.ToggleTask(context.Background(), "user-1", "t1")
	require.NoError(t, err)
	assert.True(t, task.IsDone)

	_, err = repo.ToggleTask(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
