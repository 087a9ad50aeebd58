package domain

import "time"

// Asset is a piece of equipment registered to a user. Tickets may
// reference an asset; the reference is validated at creation time only.
type Asset struct {
	ID        string
	OwnerID   string
	Name      string
	Serial    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
