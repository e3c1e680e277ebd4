package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool pgQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q pgQuerier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `id, user_id, name, phone, email, status, priority, lead_type, lead_sub_type,
		team_member, platform, order_value, sale_date, honey_types, honey_type, notes,
		next_follow_up, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO leads (id, user_id, name, phone, email, status, priority, lead_type, lead_sub_type,
			team_member, platform, order_value, sale_date, honey_types, honey_type, notes, next_follow_up)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`
	out := lead.Clone()
	out.ID = id
	out.UserID = userID
	if out.HoneyTypes == nil {
		out.HoneyTypes = []string{}
	}
	if err := r.pool.QueryRow(ctx, query,
		id,
		userID,
		out.Name,
		out.Phone,
		out.Email,
		out.Status,
		string(out.Priority),
		string(out.LeadType),
		out.LeadSubType,
		out.TeamMember,
		string(out.Platform),
		out.OrderValue,
		out.SaleDate,
		out.HoneyTypes,
		out.HoneyType,
		out.Notes,
		out.NextFollowUp,
	).Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return out, nil
}

// Update overwrites every mutable column and re-stamps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	query := `
		UPDATE leads SET name = $3, phone = $4, email = $5, status = $6, priority = $7, lead_type = $8,
			lead_sub_type = $9, team_member = $10, platform = $11, order_value = $12, sale_date = $13,
			honey_types = $14, honey_type = $15, notes = $16, next_follow_up = $17, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	out := lead.Clone()
	out.UserID = userID
	if out.HoneyTypes == nil {
		out.HoneyTypes = []string{}
	}
	if err := r.pool.QueryRow(ctx, query,
		out.ID,
		userID,
		out.Name,
		out.Phone,
		out.Email,
		out.Status,
		string(out.Priority),
		string(out.LeadType),
		out.LeadSubType,
		out.TeamMember,
		string(out.Platform),
		out.OrderValue,
		out.SaleDate,
		out.HoneyTypes,
		out.HoneyType,
		out.Notes,
		out.NextFollowUp,
	).Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: update failed: %w", err)
	}
	return out, nil
}

// Delete removes the row permanently.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// GetByID fetches a lead scoped to the user.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns the user's leads, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead                        Lead
		priority, leadType, channel string
		next                        *time.Time
	)
	if err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.Status,
		&priority,
		&leadType,
		&lead.LeadSubType,
		&lead.TeamMember,
		&channel,
		&lead.OrderValue,
		&lead.SaleDate,
		&lead.HoneyTypes,
		&lead.HoneyType,
		&lead.Notes,
		&next,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lead.Priority = Priority(priority)
	lead.LeadType = LeadType(leadType)
	lead.Platform = Platform(channel)
	lead.NextFollowUp = next
	return &lead, nil
}
