package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The lifecycle is
// a one-way progression: open tickets can be resolved, resolved tickets
// stay resolved. "Closing" a ticket is the same transition under a
// different entry point, not a distinct state.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
)

// Ticket is the aggregate for support requests. UserName and UserEmail
// are snapshots of the verified identity record taken at creation time;
// no mutation path exists for them afterwards.
type Ticket struct {
	ID        string
	UserID    string
	UserName  string
	UserEmail string
	Subject   string
	Message   string
	AssetID   *string
	Status    TicketStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
