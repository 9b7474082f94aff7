package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// TicketNumberConstraint names the unique index guarding ticket numbers.
const TicketNumberConstraint = "tickets_ticket_number_key"

// TicketFilter captures ticket search parameters. ParticipantID restricts results to
// tickets the user created or is assigned to.
type TicketFilter struct {
	ParticipantID *int64
	AssignedTo    *int64
	CallID        *int64
	Statuses      []domain.TicketStatus
	Priorities    []domain.TicketPriority
	SearchTerm    *string
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

var ticketColumns = []string{
	"id", "ticket_number", "call_id", "created_by", "assigned_to", "client_name", "client_phone",
	"subject", "description", "priority", "status", "resolved_at", "closed_at", "created_at", "updated_at",
}

func (r *ticketRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&seq)
	return seq, err
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, call_id, created_by, assigned_to, client_name, client_phone,
            subject, description, priority, status, resolved_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.CallID,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.ClientName,
		ticket.ClientPhone,
		ticket.Subject,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.ResolvedAt,
		ticket.ClosedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET call_id=$1, assigned_to=$2, client_name=$3, client_phone=$4, subject=$5,
            description=$6, priority=$7, status=$8, resolved_at=$9, closed_at=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.CallID,
		ticket.AssignedTo,
		ticket.ClientName,
		ticket.ClientPhone,
		ticket.Subject,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).From("tickets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTicket(conn(ctx, r.pool).QueryRow(ctx, query, args...))
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	base := applyTicketFilter(psql.Select().From("tickets"), filter)

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Ticket{}, 0, nil
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query, args, err := base.Columns(ticketColumns...).
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

	tickets := make([]domain.Ticket, 0, limit)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func applyTicketFilter(builder sq.SelectBuilder, filter TicketFilter) sq.SelectBuilder {
	if filter.ParticipantID != nil {
		builder = builder.Where(sq.Or{
			sq.Eq{"created_by": *filter.ParticipantID},
			sq.Eq{"assigned_to": *filter.ParticipantID},
		})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.CallID != nil {
		builder = builder.Where(sq.Eq{"call_id": *filter.CallID})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if len(filter.Priorities) > 0 {
		builder = builder.Where(sq.Eq{"priority": filter.Priorities})
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) + "%"
		builder = builder.Where(sq.Or{
			sq.Expr(`LOWER(ticket_number) LIKE ? ESCAPE '\'`, search),
			sq.Expr(`LOWER(subject) LIKE ? ESCAPE '\'`, search),
			sq.Expr(`LOWER(client_name) LIKE ? ESCAPE '\'`, search),
		})
	}
	return builder
}

// likeEscaper makes user search terms match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.CallID,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.ClientName,
		&ticket.ClientPhone,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
