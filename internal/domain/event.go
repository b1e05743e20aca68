package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Date        time.Time    `json:"date"`
	Location    string       `json:"location"`
	MaxCapacity int          `json:"max_capacity"`
	TicketTypes []TicketType `json:"ticket_types"`
	TicketsSold int          `json:"tickets_sold"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TicketType is a named, priced inventory pool within an event. Quantity is
// the ceiling on tickets ever issued against the type; Sold and Remaining are
// derived from the issued tickets.
type TicketType struct {
	ID        uint            `json:"id"`
	EventID   uint            `json:"event_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Sold      int             `json:"sold"`
	Remaining int             `json:"remaining"`
}
