package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"title": func(v any) string {
		s := fmt.Sprint(v)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

var templates = template.Must(template.New("mail").Funcs(funcs).ParseFS(templateFS, "templates/*.md.tmpl"))

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Renderer turns ticket events into email messages.
type Renderer struct {
	appName   string
	publicURL string
}

// NewRenderer builds a renderer linking back to publicURL.
func NewRenderer(appName, publicURL string) *Renderer {
	return &Renderer{appName: appName, publicURL: strings.TrimRight(publicURL, "/")}
}

type ticketView struct {
	Ticket     domain.Ticket
	Recipient  string
	ResolvedBy string
	Link       string
	AppName    string
}

// TicketAssigned renders the email sent to a ticket's new assignee.
func (r *Renderer) TicketAssigned(ticket domain.Ticket, assignee domain.User) (Message, error) {
	view := r.view(ticket)
	view.Recipient = assignee.Name
	body, err := r.render("ticket_assigned.md.tmpl", view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{assignee.Email},
		Subject:  fmt.Sprintf("Ticket %s assigned to you", ticket.TicketNumber),
		HTMLBody: body,
	}, nil
}

// TicketResolved renders the resolution email for one recipient. resolvedBy is the
// assignee's name, or the creator's when the ticket is unassigned.
func (r *Renderer) TicketResolved(ticket domain.Ticket, recipient domain.User, resolvedBy string) (Message, error) {
	view := r.view(ticket)
	view.Recipient = recipient.Name
	view.ResolvedBy = resolvedBy
	body, err := r.render("ticket_resolved.md.tmpl", view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{recipient.Email},
		Subject:  fmt.Sprintf("Ticket %s resolved", ticket.TicketNumber),
		HTMLBody: body,
	}, nil
}

func (r *Renderer) view(ticket domain.Ticket) ticketView {
	return ticketView{
		Ticket:  ticket,
		Link:    fmt.Sprintf("%s/tickets/%d", r.publicURL, ticket.ID),
		AppName: r.appName,
	}
}

func (r *Renderer) render(name string, view ticketView) (string, error) {
	var src bytes.Buffer
	if err := templates.ExecuteTemplate(&src, name, view); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	var out bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &out); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out.String(), nil
}
