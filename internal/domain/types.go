package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a bookable event. Numeric fields the client may leave out are
// pointers: nil means the value was never supplied, which is distinct from 0.
// The mixed-case JSON names are part of the contract consumed by the existing
// SPA client and must not be renamed.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Owner        string    `json:"owner"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	OrganizedBy  string    `json:"organizedBy"`
	EventDate    time.Time `json:"eventDate"`
	EventTime    string    `json:"eventTime"`
	Location     string    `json:"location"`
	Participants *int64    `json:"Participants"`
	Count        *int64    `json:"Count"`
	Income       *float64  `json:"Income"`
	TicketPrice  float64   `json:"ticketPrice"`
	Quantity     *int64    `json:"Quantity"`
	Image        string    `json:"image"`
	Likes        int64     `json:"likes"`
	Comments     []string  `json:"Comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Ticket references an event and a user by application-level foreign keys.
// Neither reference is checked at creation time; consistency is kept by the
// cascade on event deletion. Details carries whatever extra attributes the
// client sent, stored as raw JSON.
type Ticket struct {
	ID        uuid.UUID       `json:"id"`
	EventID   string          `json:"eventid"`
	UserID    string          `json:"userid"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// SweepReport is the outcome of one retention sweep.
type SweepReport struct {
	EventsRemoved  int64
	TicketsRemoved int64
}
