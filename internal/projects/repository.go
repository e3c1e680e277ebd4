package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Repository persists projects and their tasks per user.
type Repository interface {
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	ListTasks(ctx context.Context, userID string, projectIDs []string) ([]Task, error)
	CreateProject(ctx context.Context, userID string, p *Project) error
	UpdateProject(ctx context.Context, userID string, p *Project) error
	DeleteProject(ctx context.Context, userID, id string) error
	CreateTask(ctx context.Context, userID string, t *Task) error
	ToggleTask(ctx context.Context, userID, id string) (*Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// SQLRepository stores projects in Postgres through lib/pq.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, status, priority, created_at, updated_at
		FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p := Project{UserID: userID}
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Priority, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("projects: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListTasks loads the tasks of the given projects, newest first.
func (r *SQLRepository) ListTasks(ctx context.Context, userID string, projectIDs []string) ([]Task, error) {
	if len(projectIDs) == 0 {
		return []Task{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, title, is_done, created_at
		FROM project_tasks WHERE user_id = $1 AND project_id = ANY($2)
		ORDER BY created_at DESC`, userID, pq.Array(projectIDs))
	if err != nil {
		return nil, fmt.Errorf("projects: list tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.IsDone, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("projects: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateProject(ctx context.Context, userID string, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		p.ID, userID, p.Name, p.Status, p.Priority, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("projects: insert: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateProject(ctx context.Context, userID string, p *Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = $3, status = $4, priority = $5, updated_at = $6
		WHERE user_id = $1 AND id = $2`,
		userID, p.ID, p.Name, p.Status, p.Priority, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("projects: update: %w", err)
	}
	return requireRow(res, ErrProjectNotFound)
}

// DeleteProject removes a project and its tasks in one transaction.
func (r *SQLRepository) DeleteProject(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("projects: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_tasks WHERE user_id = $1 AND project_id = $2`, userID, id); err != nil {
		return fmt.Errorf("projects: delete tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("projects: delete: %w", err)
	}
	if err := requireRow(res, ErrProjectNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateTask inserts a task only when the parent project belongs to the user.
func (r *SQLRepository) CreateTask(ctx context.Context, userID string, t *Task) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO project_tasks (id, user_id, project_id, title, is_done, created_at)
		SELECT $1, $2, p.id, $4, $5, $6 FROM projects p WHERE p.user_id = $2 AND p.id = $3`,
		t.ID, userID, t.ProjectID, t.Title, t.IsDone, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("projects: insert task: %w", err)
	}
	return requireRow(res, ErrProjectNotFound)
}

func (r *SQLRepository) ToggleTask(ctx context.Context, userID, id string) (*Task, error) {
	var t Task
	err := r.db.QueryRowContext(ctx, `
		UPDATE project_tasks SET is_done = NOT is_done
		WHERE user_id = $1 AND id = $2
		RETURNING id, project_id, title, is_done, created_at`, userID, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.IsDone, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("projects: toggle task: %w", err)
	}
	return &t, nil
}

func (r *SQLRepository) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("projects: delete task: %w", err)
	}
	return requireRow(res, ErrTaskNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("projects: rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
