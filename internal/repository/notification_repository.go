package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// NotificationFilter narrows a user's notification listing.
type NotificationFilter struct {
	UserID     int64
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, int, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteForUser(ctx context.Context, userID int64, readOnly bool) (int64, error)
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

var notificationColumns = []string{
	"id", "user_id", "title", "message", "type", "related_type", "related_id", "read", "created_at", "updated_at",
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, title, message, type, related_type, related_id, read)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	relatedType, relatedID := relatedColumns(notification.Related)
	return conn(ctx, r.pool).QueryRow(ctx, query,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Type,
		relatedType,
		relatedID,
		notification.Read,
	).Scan(&notification.ID, &notification.CreatedAt, &notification.UpdatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	query, args, err := psql.Select(notificationColumns...).From("notifications").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanNotification(conn(ctx, r.pool).QueryRow(ctx, query, args...))
}

func (r *notificationRepository) List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, int, error) {
	base := psql.Select().From("notifications").Where(sq.Eq{"user_id": filter.UserID})
	if filter.UnreadOnly {
		base = base.Where(sq.Eq{"read": false})
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Notification{}, 0, nil
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query, args, err := base.Columns(notificationColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read=FALSE`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE notifications SET read=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE notifications SET read=TRUE, updated_at=NOW() WHERE user_id=$1 AND read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) DeleteForUser(ctx context.Context, userID int64, readOnly bool) (int64, error) {
	builder := psql.Delete("notifications").Where(sq.Eq{"user_id": userID})
	if readOnly {
		builder = builder.Where(sq.Eq{"read": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM notifications WHERE read=TRUE AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func relatedColumns(related domain.RelatedEntity) (*string, *int64) {
	if related.IsNone() {
		return nil, nil
	}
	kind := string(related.Kind)
	id := related.ID
	return &kind, &id
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n           domain.Notification
		relatedType *string
		relatedID   *int64
	)
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Type,
		&relatedType,
		&relatedID,
		&n.Read,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if relatedType != nil && relatedID != nil {
		n.Related = domain.RelatedEntity{Kind: domain.RelatedKind(*relatedType), ID: *relatedID}
	}
	return &n, nil
}
