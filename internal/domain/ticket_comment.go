package domain

import "time"

// TicketComment is an entry in a ticket's discussion thread.
type TicketComment struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
