package team

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const memberColumns = `member_id, name, email, role, created_at`

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m Member) (Member, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO team_members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+memberColumns,
		m.MemberID, m.Name, m.Email, m.Role, m.CreatedAt)
	created, err := scanMember(row)
	if err != nil {
		return Member{}, fmt.Errorf("failed to create member: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM team_members ORDER BY created_at, member_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, memberID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE member_id = $1`, memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	if err := row.Scan(&m.MemberID, &m.Name, &m.Email, &m.Role, &m.CreatedAt); err != nil {
		return Member{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
