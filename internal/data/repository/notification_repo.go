package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace-api/internal/data/entity"
	"marketplace-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, kind *entity.NotificationType, limit int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNotificationRepository(db database.PgxIface, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

const notificationSelect = `
	SELECT id, user_id, type, title, message, is_read, metadata, created_at
	FROM notifications`

func scanNotification(row scanner) (*entity.Notification, error) {
	var (
		n        entity.Notification
		metadata []byte
	)
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&metadata,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(metadata, &n.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	metadata, err := jsonParam(n.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, is_read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.IsRead,
		metadata,
		n.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("user_id", n.UserID.String()),
		)
		return fmt.Errorf("create notification for %s: %w", n.UserID, err)
	}
	return nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, notificationSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find notification",
			zap.Error(err),
			zap.String("notification_id", id.String()),
		)
		return nil, fmt.Errorf("find notification %s: %w", id, err)
	}
	return n, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, kind *entity.NotificationType, limit int) ([]*entity.Notification, error) {
	w := &whereBuilder{}
	w.add("user_id = ?", userID)
	if kind != nil {
		w.add("type = ?", string(*kind))
	}
	limitClause, args := w.page(limit, 0)

	rows, err := r.db.Query(ctx, notificationSelect+w.where()+` ORDER BY created_at DESC, id`+limitClause, args...)
	if err != nil {
		r.log.Error("Failed to find notifications",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find notifications of %s: %w", userID, err)
	}
	defer rows.Close()

	var items []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			r.log.Error("Failed to scan notification row", zap.Error(err))
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}
	return items, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count unread notifications",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count unread of %s: %w", userID, err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to mark notification read",
			zap.Error(err),
			zap.String("notification_id", id.String()),
		)
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}
