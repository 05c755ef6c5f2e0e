package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const (
	projectColumns = `project_id, name, owner, status, created_at, updated_at`
	taskColumns    = `project_id, task_id, title, status, assignee, priority, due_date, created_at, updated_at`
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateProject(ctx context.Context, p Project) (Project, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+projectColumns,
		p.ProjectID, p.Name, p.Owner, p.Status, p.CreatedAt, p.UpdatedAt)
	created, err := scanProject(row)
	if err != nil {
		return Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetProject(ctx context.Context, projectID string) (Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = $1`, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		return Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, project_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *PostgresRepository) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (Project, error) {
	q := newUpdateQuery(projectID)
	if upd.Name != nil {
		q.set("name", *upd.Name)
	}
	if upd.Status != nil {
		q.set("status", *upd.Status)
	}
	if upd.Owner.Set {
		q.set("owner", upd.Owner.Value)
	}
	q.set("updated_at", upd.UpdatedAt)

	p, err := scanProject(r.db.QueryRow(ctx,
		`UPDATE projects SET `+q.assignments()+` WHERE project_id = $1 RETURNING `+projectColumns, q.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		return Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, t Task) (Task, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		t.ProjectID, t.TaskID, t.Title, t.Status, t.Assignee, t.Priority, t.DueDate, t.CreatedAt, t.UpdatedAt)
	created, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at, task_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, projectID, taskID string, upd TaskUpdate) (Task, error) {
	q := newUpdateQuery(projectID, taskID)
	if upd.Title != nil {
		q.set("title", *upd.Title)
	}
	if upd.Status != nil {
		q.set("status", *upd.Status)
	}
	if upd.Assignee.Set {
		q.set("assignee", upd.Assignee.Value)
	}
	if upd.Priority != nil {
		q.set("priority", *upd.Priority)
	}
	if upd.DueDate.Set {
		q.set("due_date", upd.DueDate.Value)
	}
	q.set("updated_at", upd.UpdatedAt)

	t, err := scanTask(r.db.QueryRow(ctx,
		`UPDATE tasks SET `+q.assignments()+` WHERE project_id = $1 AND task_id = $2 RETURNING `+taskColumns, q.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// updateQuery collects SET assignments after the key arguments.
type updateQuery struct {
	sets []string
	args []interface{}
}

func newUpdateQuery(keys ...interface{}) *updateQuery {
	return &updateQuery{args: keys}
}

func (q *updateQuery) set(column string, value interface{}) {
	q.args = append(q.args, value)
	q.sets = append(q.sets, fmt.Sprintf("%s = $%d", column, len(q.args)))
}

func (q *updateQuery) assignments() string {
	return strings.Join(q.sets, ", ")
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	if err := row.Scan(&p.ProjectID, &p.Name, &p.Owner, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ProjectID, &t.TaskID, &t.Title, &t.Status, &t.Assignee, &t.Priority, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
