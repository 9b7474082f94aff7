package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
)

func sampleTicket() domain.Ticket {
	return domain.Ticket{
		ID:           7,
		TicketNumber: "TIC-20251004-000007",
		ClientName:   "Acme",
		Subject:      "Router down",
		Description:  "Customer cannot connect.",
		Priority:     domain.TicketPriorityHigh,
	}
}

func TestTicketAssignedRendersHTML(t *testing.T) {
	r := NewRenderer("Call Center", "https://cc.example.com/")

	msg, err := r.TicketAssigned(sampleTicket(), domain.User{Name: "Bea", Email: "bea@example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"bea@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "TIC-20251004-000007")
	assert.Contains(t, msg.HTMLBody, "<h1>Ticket assigned</h1>")
	assert.Contains(t, msg.HTMLBody, "Hello Bea")
	assert.Contains(t, msg.HTMLBody, "High")
	assert.Contains(t, msg.HTMLBody, `href="https://cc.example.com/tickets/7"`)
}

func TestTicketResolvedNamesResolver(t *testing.T) {
	r := NewRenderer("Call Center", "http://localhost")

	msg, err := r.TicketResolved(sampleTicket(), domain.User{Name: "Al", Email: "al@example.com"}, "Bea")
	require.NoError(t, err)

	assert.Contains(t, msg.HTMLBody, "Resolved by:</strong> Bea")
}

func TestComposeProducesParsableMessage(t *testing.T) {
	raw, err := Compose("noreply@example.com", Message{
		To:       []string{"bea@example.com"},
		Subject:  "Hello",
		HTMLBody: "<p>hi</p>",
	}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	reader, err := mail.CreateReader(strings.NewReader(string(raw)))
	require.NoError(t, err)
	subject, err := reader.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Hello", subject)

	to, err := reader.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "bea@example.com", to[0].Address)
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	s := NewSender(config.MailConfig{}, zap.NewNop())
	_, ok := s.(*LogSender)
	require.True(t, ok)
	assert.NoError(t, s.Send(context.Background(), Message{To: []string{"x@example.com"}}))
}
