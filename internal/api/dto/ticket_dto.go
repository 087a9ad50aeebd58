package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload. Owner name/email are deliberately absent;
// they are taken from the verified identity record server-side.
type CreateTicketRequest struct {
	Subject string  `json:"subject"`
	Message string  `json:"message"`
	AssetID *string `json:"asset_id"`
}

// TicketResponse is the wire view of a ticket.
type TicketResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user"`
	UserName  string              `json:"user_name"`
	UserEmail string              `json:"user_email"`
	Subject   string              `json:"subject"`
	Message   string              `json:"message"`
	AssetID   *string             `json:"asset_id,omitempty"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket to its wire view.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		UserID:    ticket.UserID,
		UserName:  ticket.UserName,
		UserEmail: ticket.UserEmail,
		Subject:   ticket.Subject,
		Message:   ticket.Message,
		AssetID:   ticket.AssetID,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
