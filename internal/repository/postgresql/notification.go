package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, receiver_id, sender_id, title, message, category, priority, link, metadata, is_read, read_at, is_deleted, created_at`

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (id, receiver_id, sender_id, title, message, category, priority, link, metadata, is_read, read_at, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = q.Exec(ctx, query,
		n.ID,
		n.ReceiverID,
		n.SenderID,
		n.Title,
		n.Message,
		string(n.Category),
		string(n.Priority),
		n.Link,
		metadata,
		n.IsRead,
		n.ReadAt,
		n.IsDeleted,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// CreateBatch inserts all records in one round trip.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO notifications (id, receiver_id, sender_id, title, message, category, priority, link, metadata, is_read, read_at, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}

		metadata, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		batch.Queue(query,
			n.ID, n.ReceiverID, n.SenderID, n.Title, n.Message,
			string(n.Category), string(n.Priority), n.Link, metadata,
			n.IsRead, n.ReadAt, n.IsDeleted, n.CreatedAt,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for range notifications {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch insert notifications: %w", err)
		}
	}

	return nil
}

func (r *notificationRepository) ListForReceiver(ctx context.Context, receiverID string, filter notification.ListFilter) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	where := "receiver_id = $1 AND is_deleted = FALSE"
	args := []interface{}{receiverID}
	argPos := 2

	if filter.Category != nil {
		where += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, string(*filter.Category))
		argPos++
	}
	if filter.IsRead != nil {
		where += fmt.Sprintf(" AND is_read = $%d", argPos)
		args = append(args, *filter.IsRead)
		argPos++
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notifications WHERE %s", where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, notificationColumns, where, argPos, argPos+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var records []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		records = append(records, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE receiver_id = $1 AND is_read = FALSE AND is_deleted = FALSE`
	if err := q.QueryRow(ctx, query, receiverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead is receiver-scoped so one user cannot acknowledge another's
// notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, id, receiverID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE id = $2 AND receiver_id = $3 AND is_deleted = FALSE
	`

	tag, err := q.Exec(ctx, query, time.Now(), id, receiverID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiverID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE receiver_id = $2 AND is_read = FALSE AND is_deleted = FALSE
	`

	if _, err := q.Exec(ctx, query, time.Now(), receiverID); err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return nil
}

func (r *notificationRepository) SoftDelete(ctx context.Context, id, receiverID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_deleted = TRUE
		WHERE id = $1 AND receiver_id = $2 AND is_deleted = FALSE
	`

	tag, err := q.Exec(ctx, query, id, receiverID)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var category, priority string
	var metadata []byte

	err := row.Scan(
		&n.ID,
		&n.ReceiverID,
		&n.SenderID,
		&n.Title,
		&n.Message,
		&category,
		&priority,
		&n.Link,
		&metadata,
		&n.IsRead,
		&n.ReadAt,
		&n.IsDeleted,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Category = notification.Category(category)
	n.Priority = notification.Priority(priority)

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &n, nil
}
