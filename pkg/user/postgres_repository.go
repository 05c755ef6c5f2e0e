package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// bootstrapLockKey serializes first-user inserts across connections.
const bootstrapLockKey = 7_461_203_001

const userColumns = `user_id, email, name, password, role, status, google_id, created_at,
	last_login, otp, otp_expiry, token, token_expiry`

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db TxBeginner
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db TxBeginner) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	return insertUser(ctx, r.db, u)
}

// CreateFirstUser takes a transaction-scoped advisory lock so two concurrent
// bootstraps cannot both observe an empty table.
func (r *PostgresUserRepository) CreateFirstUser(ctx context.Context, u User) (User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(bootstrapLockKey)); err != nil {
		return User{}, fmt.Errorf("failed to acquire bootstrap lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return User{}, fmt.Errorf("failed to check for users: %w", err)
	}
	if exists {
		return User{}, ErrUsersExist
	}

	created, err := insertUser(ctx, tx, u)
	if err != nil {
		return User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return User{}, fmt.Errorf("failed to commit bootstrap user: %w", err)
	}
	return created, nil
}

func insertUser(ctx context.Context, db DBTX, u User) (User, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+userColumns,
		u.UserID, u.Email, u.Name, u.Password, u.Role, u.Status, nullString(u.GoogleID), u.CreatedAt,
		u.LastLogin, nullString(u.OTP), u.OTPExpiry, nullString(u.Token), u.TokenExpiry,
	)
	created, err := scanUser(row)
	if err != nil {
		return User{}, translateWriteError(err)
	}
	return created, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r *PostgresUserRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) FindUserByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE token = $1`, token)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) FindUsersByRoleStatus(ctx context.Context, role, status string) ([]User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 AND status = $2 ORDER BY created_at, user_id`, role, status)
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, user_id`)
}

func (r *PostgresUserRepository) list(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	sets := []string{}
	args := []interface{}{userID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Role != nil {
		sets = append(sets, "role = "+arg(*upd.Role))
	}
	if upd.Status != nil {
		sets = append(sets, "status = "+arg(*upd.Status))
	}
	if upd.LastLogin != nil {
		sets = append(sets, "last_login = "+arg(*upd.LastLogin))
	}
	switch {
	case upd.OTP != nil:
		sets = append(sets, "otp = "+arg(upd.OTP.Value), "otp_expiry = "+arg(upd.OTP.ExpiresAt))
	case upd.ClearOTP:
		sets = append(sets, "otp = NULL", "otp_expiry = NULL")
	}
	switch {
	case upd.Token != nil:
		sets = append(sets, "token = "+arg(upd.Token.Value), "token_expiry = "+arg(upd.Token.ExpiresAt))
	case upd.ClearToken:
		sets = append(sets, "token = NULL", "token_expiry = NULL")
	}

	where := []string{"user_id = $1"}
	if upd.ExpectOTP != nil {
		where = append(where, "COALESCE(otp, '') = "+arg(*upd.ExpectOTP))
	}
	if upd.ExpectToken != nil {
		where = append(where, "COALESCE(token, '') = "+arg(*upd.ExpectToken))
	}

	if len(sets) == 0 {
		// Nothing to change; still honour the preconditions.
		sets = append(sets, "user_id = user_id")
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE ` + strings.Join(where, " AND ") +
		` RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, translateWriteError(err)
	}

	// No row matched: either the user is missing or a precondition failed.
	if _, getErr := r.GetUserByID(ctx, userID); getErr != nil {
		return User{}, getErr
	}
	return User{}, ErrConditionFailed
}

func (r *PostgresUserRepository) DeleteUser(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u                       User
		googleID, otp, token    *string
		lastLogin, otpExp, tExp *time.Time
	)
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.Password, &u.Role, &u.Status, &googleID, &u.CreatedAt,
		&lastLogin, &otp, &otpExp, &token, &tExp)
	if err != nil {
		return User{}, err
	}
	if googleID != nil {
		u.GoogleID = *googleID
	}
	if otp != nil {
		u.OTP = *otp
	}
	if token != nil {
		u.Token = *token
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastLogin = utcPtr(lastLogin)
	u.OTPExpiry = utcPtr(otpExp)
	u.TokenExpiry = utcPtr(tExp)
	return u, nil
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_token_key":
			return ErrTokenExists
		default:
			return ErrEmailExists
		}
	}
	return fmt.Errorf("failed to write user: %w", err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
