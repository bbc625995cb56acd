package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skulk0156/emsbackend/internal/domain/task"
	"github.com/skulk0156/emsbackend/internal/pkg/database"
)

type taskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *database.DB) task.Repository {
	return &taskRepository{db: db}
}

const taskColumns = `id, task_id, title, description, assignee_ids, team_id, due_date, priority, category, status, attachments, created_by, reviewer_ids, review_notes, created_at, updated_at`

// Create inserts a task. The unique task_id index turns a generated-id
// collision into ErrTaskIDTaken so the caller can regenerate.
func (r *taskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	attachments, err := json.Marshal(t.Attachments)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to marshal attachments: %w", err)
	}
	reviewNotes, err := json.Marshal(t.ReviewNotes)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to marshal review notes: %w", err)
	}

	query := `
		INSERT INTO tasks (id, task_id, title, description, assignee_ids, team_id, due_date, priority, category, status, attachments, created_by, reviewer_ids, review_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = q.Exec(ctx, query,
		t.ID,
		t.TaskID,
		t.Title,
		t.Description,
		t.AssigneeIDs,
		t.TeamID,
		t.DueDate,
		string(t.Priority),
		string(t.Category),
		string(t.Status),
		attachments,
		t.CreatedBy,
		t.ReviewerIDs,
		reviewNotes,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return task.Task{}, task.ErrTaskIDTaken
		}
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	return t, nil
}

// GetByTaskID returns nil when no task exists.
func (r *taskRepository) GetByTaskID(ctx context.Context, taskID int64) (*task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE task_id = $1`, taskColumns)

	t, err := scanTask(q.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// UpdateStatus is the workflow compare-and-set. The status guard in the
// WHERE clause serializes concurrent transitions; only one writer can move
// the task out of a given state.
func (r *taskRepository) UpdateStatus(ctx context.Context, taskID int64, from []task.Status, to task.Status) (bool, error) {
	q := GetQuerier(ctx, r.db)

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE task_id = $3 AND status = ANY($4)
	`

	tag, err := q.Exec(ctx, query, string(to), time.Now(), taskID, sources)
	if err != nil {
		return false, fmt.Errorf("failed to update task status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Update rewrites the editable non-status fields.
func (r *taskRepository) Update(ctx context.Context, t task.Task) error {
	q := GetQuerier(ctx, r.db)

	attachments, err := json.Marshal(t.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, assignee_ids = $3, team_id = $4, due_date = $5,
			priority = $6, category = $7, attachments = $8, reviewer_ids = $9, updated_at = $10
		WHERE task_id = $11
	`

	_, err = q.Exec(ctx, query,
		t.Title,
		t.Description,
		t.AssigneeIDs,
		t.TeamID,
		t.DueDate,
		string(t.Priority),
		string(t.Category),
		attachments,
		t.ReviewerIDs,
		time.Now(),
		t.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// ResolveReview applies the review outcome. An approve is a plain status
// compare-and-set; a revert with a note wraps the status change and the
// note append in one transaction.
func (r *taskRepository) ResolveReview(ctx context.Context, taskID int64, to task.Status, note *task.ReviewNote) (bool, error) {
	if note == nil {
		return r.UpdateStatus(ctx, taskID, task.ReviewSources, to)
	}

	var moved bool
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		ok, err := r.UpdateStatus(ctx, taskID, task.ReviewSources, to)
		if err != nil {
			return err
		}
		moved = ok
		if !ok {
			// Lost the compare-and-set; nothing to note.
			return nil
		}
		return r.appendReviewNote(ctx, taskID, *note)
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// appendReviewNote appends one note to the jsonb array in place, so
// concurrent reverts never lose a comment.
func (r *taskRepository) appendReviewNote(ctx context.Context, taskID int64, note task.ReviewNote) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal review note: %w", err)
	}

	query := `
		UPDATE tasks
		SET review_notes = review_notes || $1::jsonb, updated_at = $2
		WHERE task_id = $3
	`

	if _, err := q.Exec(ctx, query, encoded, time.Now(), taskID); err != nil {
		return fmt.Errorf("failed to append review note: %w", err)
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID int64) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (r *taskRepository) List(ctx context.Context, filter task.Filter) ([]task.Task, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argPos := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, string(*filter.Status))
		argPos++
	}
	if filter.AssigneeID != nil {
		where += fmt.Sprintf(" AND $%d = ANY(assignee_ids)", argPos)
		args = append(args, *filter.AssigneeID)
		argPos++
	}
	if filter.CreatedBy != nil {
		where += fmt.Sprintf(" AND created_by = $%d", argPos)
		args = append(args, *filter.CreatedBy)
		argPos++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, taskColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var priority, category, status string
	var attachments, reviewNotes []byte

	err := row.Scan(
		&t.ID,
		&t.TaskID,
		&t.Title,
		&t.Description,
		&t.AssigneeIDs,
		&t.TeamID,
		&t.DueDate,
		&priority,
		&category,
		&status,
		&attachments,
		&t.CreatedBy,
		&t.ReviewerIDs,
		&reviewNotes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.Priority = task.Priority(priority)
	t.Category = task.Category(category)
	t.Status = task.Status(status)

	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &t.Attachments); err != nil {
			return task.Task{}, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}
	if len(reviewNotes) > 0 {
		if err := json.Unmarshal(reviewNotes, &t.ReviewNotes); err != nil {
			return task.Task{}, fmt.Errorf("failed to unmarshal review notes: %w", err)
		}
	}

	return t, nil
}
