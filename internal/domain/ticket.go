package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is one issued admission. Price is a snapshot of the ticket type's
// price at issuance, later price edits never touch sold tickets.
type Ticket struct {
	ID           uint            `json:"id"`
	UserID       uint            `json:"user_id"`
	EventID      uint            `json:"event_id"`
	TicketTypeID uint            `json:"ticket_type_id"`
	Price        decimal.Decimal `json:"price"`
	IsUsed       bool            `json:"is_used"`
	CreatedAt    time.Time       `json:"created_at"`
}
