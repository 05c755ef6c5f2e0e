package discussion

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

const messageColumns = `message_id, project_id, user_id, user_name, content, created_at`

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, m Message) (Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO discussions (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		m.MessageID, m.ProjectID, m.UserID, m.UserName, m.Content, m.CreatedAt)
	created, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("failed to create message: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, projectID string) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM discussions`
	var args []interface{}
	if projectID != "" {
		query += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, message_id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *PostgresRepository) DeleteMessage(ctx context.Context, messageID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM discussions WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	if err := row.Scan(&m.MessageID, &m.ProjectID, &m.UserID, &m.UserName, &m.Content, &m.CreatedAt); err != nil {
		return Message{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
