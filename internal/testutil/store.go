// Package testutil provides in-memory stand-ins for the Postgres repositories so service
// and handler tests run without a database.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
)

// Store keeps every table in memory behind one mutex. Referential actions mirror the
// schema: deleting a call nulls tickets.call_id, deleting a ticket removes its comments.
type Store struct {
	mu            sync.Mutex
	seq           int64
	ticketSeq     int64
	users         map[int64]domain.User
	calls         map[int64]domain.Call
	tickets       map[int64]domain.Ticket
	comments      map[int64]domain.TicketComment
	notifications map[int64]domain.Notification

	// FailNotificationWrites makes every notification insert fail.
	FailNotificationWrites error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         map[int64]domain.User{},
		calls:         map[int64]domain.Call{},
		tickets:       map[int64]domain.Ticket{},
		comments:      map[int64]domain.TicketComment{},
		notifications: map[int64]domain.Notification{},
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// AddUser inserts a user and returns it with its id.
func (s *Store) AddUser(name string, role domain.Role) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := domain.User{
		ID:        s.nextID(),
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	return &u
}

// AllNotifications returns every stored notification ordered by id.
func (s *Store) AllNotifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Call returns the stored call.
func (s *Store) Call(id int64) (domain.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[id]
	return c, ok
}

// Ticket returns the stored ticket.
func (s *Store) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

// TxManager runs fn inline.
type TxManager struct{}

func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ repository.TxManager = TxManager{}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Calls returns the call repository view.
func (s *Store) Calls() repository.CallRepository { return callRepo{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Comments returns the comment repository view.
func (s *Store) Comments() repository.TicketCommentRepository { return commentRepo{s} }

// NotificationRepo returns the notification repository view.
func (s *Store) NotificationRepo() repository.NotificationRepository { return notificationRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.nextID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type callRepo struct{ s *Store }

func (r callRepo) Create(_ context.Context, call *domain.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	call.ID = r.s.nextID()
	call.CreatedAt = time.Now().UTC()
	call.UpdatedAt = call.CreatedAt
	r.s.calls[call.ID] = *call
	return nil
}

func (r callRepo) Update(_ context.Context, call *domain.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.calls[call.ID]; !ok {
		return pgx.ErrNoRows
	}
	call.UpdatedAt = time.Now().UTC()
	r.s.calls[call.ID] = *call
	return nil
}

func (r callRepo) GetByID(_ context.Context, id int64) (*domain.Call, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.calls[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r callRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.calls[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.calls, id)
	for tid, t := range r.s.tickets {
		if t.CallID != nil && *t.CallID == id {
			t.CallID = nil
			r.s.tickets[tid] = t
		}
	}
	return nil
}

func (r callRepo) List(_ context.Context, filter repository.CallFilter) ([]domain.Call, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Call
	for _, c := range r.s.calls {
		if filter.OwnerID != nil && c.UserID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, c.Status) {
			continue
		}
		if filter.From != nil && c.CallTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !c.CallTime.Before(*filter.To) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r callRepo) ListForExport(ctx context.Context, from, to *time.Time, max int) ([]domain.Call, error) {
	calls, _, err := r.List(ctx, repository.CallFilter{From: from, To: to, Limit: repository.MaxPageSize})
	if err != nil {
		return nil, err
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].CallTime.Before(calls[j].CallTime) })
	if max > 0 && len(calls) > max {
		calls = calls[:max]
	}
	return calls, nil
}

func (r callRepo) LockOwner(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

func (r callRepo) HoldActive(_ context.Context, userID, exceptID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int64
	for id, c := range r.s.calls {
		if c.UserID == userID && c.Status == domain.CallStatusActive && id != exceptID {
			c.Status = domain.CallStatusOnHold
			r.s.calls[id] = c
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) NextSequence(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ticketSeq++
	return r.s.ticketSeq, nil
}

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.nextID()
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r ticketRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	for cid, c := range r.s.comments {
		if c.TicketID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Ticket
	for _, t := range r.s.tickets {
		if p := filter.ParticipantID; p != nil && t.CreatedBy != *p && !t.IsAssignedTo(*p) {
			continue
		}
		if a := filter.AssignedTo; a != nil && !t.IsAssignedTo(*a) {
			continue
		}
		if c := filter.CallID; c != nil && (t.CallID == nil || *t.CallID != *c) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsTicketStatus(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, t.Priority) {
			continue
		}
		if q := filter.SearchTerm; q != nil && *q != "" &&
			!strings.Contains(strings.ToLower(t.Subject+" "+t.TicketNumber+" "+t.ClientName), strings.ToLower(*q)) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.nextID()
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) Update(_ context.Context, comment *domain.TicketComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	comment.UpdatedAt = time.Now().UTC()
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) GetByID(_ context.Context, id int64) (*domain.TicketComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r commentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.TicketComment{}
	for _, c := range r.s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailNotificationWrites != nil {
		return r.s.FailNotificationWrites
	}
	n.ID = r.s.nextID()
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) GetByID(_ context.Context, id int64) (*domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &n, nil
}

func (r notificationRepo) List(_ context.Context, filter repository.NotificationFilter) ([]domain.Notification, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r notificationRepo) CountUnread(_ context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	n.Read = true
	n.UpdatedAt = time.Now().UTC()
	r.s.notifications[id] = n
	return nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.notifications, id)
	return nil
}

func (r notificationRepo) DeleteForUser(_ context.Context, userID int64, readOnly bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && (!readOnly || n.Read) {
			delete(r.s.notifications, id)
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) PurgeReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.Read && n.UpdatedAt.Before(cutoff) {
			delete(r.s.notifications, id)
			count++
		}
	}
	return count, nil
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsStatus(list []domain.CallStatus, s domain.CallStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsTicketStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
