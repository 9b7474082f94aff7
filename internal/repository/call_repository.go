package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// CallFilter captures listing parameters. A nil OwnerID lists every user's calls.
type CallFilter struct {
	OwnerID  *int64
	Statuses []domain.CallStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// CallRepository encapsulates call persistence.
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	Update(ctx context.Context, call *domain.Call) error
	GetByID(ctx context.Context, id int64) (*domain.Call, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter CallFilter) ([]domain.Call, int, error)
	ListForExport(ctx context.Context, from, to *time.Time, max int) ([]domain.Call, error)
	// LockOwner takes a row lock on the owning user, serializing activations per user.
	LockOwner(ctx context.Context, userID int64) error
	// HoldActive moves the user's active calls other than exceptID to on-hold and
	// returns their ids.
	HoldActive(ctx context.Context, userID, exceptID int64) ([]int64, error)
}

type callRepository struct {
	pool *pgxpool.Pool
}

// NewCallRepository instantiates repository.
func NewCallRepository(pool *pgxpool.Pool) CallRepository {
	return &callRepository{pool: pool}
}

var callColumns = []string{
	"id", "user_id", "call_time", "duration_seconds", "client_name", "client_phone", "subject",
	"notes", "call_type", "status", "satisfaction_rating", "created_at", "updated_at",
}

func (r *callRepository) Create(ctx context.Context, call *domain.Call) error {
	const query = `
        INSERT INTO calls (user_id, call_time, duration_seconds, client_name, client_phone, subject,
            notes, call_type, status, satisfaction_rating)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		call.UserID,
		call.CallTime,
		call.DurationSeconds,
		call.ClientName,
		call.ClientPhone,
		call.Subject,
		call.Notes,
		call.CallType,
		call.Status,
		call.SatisfactionRating,
	).Scan(&call.ID, &call.CreatedAt, &call.UpdatedAt)
}

func (r *callRepository) Update(ctx context.Context, call *domain.Call) error {
	const query = `
        UPDATE calls SET call_time=$1, duration_seconds=$2, client_name=$3, client_phone=$4, subject=$5,
            notes=$6, call_type=$7, status=$8, satisfaction_rating=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		call.CallTime,
		call.DurationSeconds,
		call.ClientName,
		call.ClientPhone,
		call.Subject,
		call.Notes,
		call.CallType,
		call.Status,
		call.SatisfactionRating,
		call.ID,
	).Scan(&call.UpdatedAt)
	return err
}

func (r *callRepository) GetByID(ctx context.Context, id int64) (*domain.Call, error) {
	query, args, err := psql.Select(callColumns...).From("calls").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCall(conn(ctx, r.pool).QueryRow(ctx, query, args...))
}

func (r *callRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM calls WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *callRepository) List(ctx context.Context, filter CallFilter) ([]domain.Call, int, error) {
	base := applyCallFilter(psql.Select().From("calls"), filter)

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Call{}, 0, nil
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query, args, err := base.Columns(callColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	calls, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

func (r *callRepository) ListForExport(ctx context.Context, from, to *time.Time, max int) ([]domain.Call, error) {
	builder := applyCallFilter(psql.Select(callColumns...).From("calls"), CallFilter{From: from, To: to}).
		OrderBy("call_time ASC", "id ASC")
	if max > 0 {
		builder = builder.Limit(uint64(max))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

func (r *callRepository) LockOwner(ctx context.Context, userID int64) error {
	var id int64
	return conn(ctx, r.pool).QueryRow(ctx, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&id)
}

func (r *callRepository) HoldActive(ctx context.Context, userID, exceptID int64) ([]int64, error) {
	const query = `
        UPDATE calls SET status=$1, updated_at=NOW()
        WHERE user_id=$2 AND status=$3 AND id<>$4
        RETURNING id`
	rows, err := conn(ctx, r.pool).Query(ctx, query,
		domain.CallStatusOnHold, userID, domain.CallStatusActive, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *callRepository) query(ctx context.Context, query string, args ...any) ([]domain.Call, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *call)
	}
	return result, rows.Err()
}

func applyCallFilter(builder sq.SelectBuilder, filter CallFilter) sq.SelectBuilder {
	if filter.OwnerID != nil {
		builder = builder.Where(sq.Eq{"user_id": *filter.OwnerID})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"call_time": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.Lt{"call_time": *filter.To})
	}
	return builder
}

func scanCall(row pgx.Row) (*domain.Call, error) {
	var call domain.Call
	if err := row.Scan(
		&call.ID,
		&call.UserID,
		&call.CallTime,
		&call.DurationSeconds,
		&call.ClientName,
		&call.ClientPhone,
		&call.Subject,
		&call.Notes,
		&call.CallType,
		&call.Status,
		&call.SatisfactionRating,
		&call.CreatedAt,
		&call.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &call, nil
}
