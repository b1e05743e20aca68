package request

import (
	"github.com/shopspring/decimal"

	validation "github.com/go-ozzo/ozzo-validation"
)

// CreateTicketRequest covers both self-service purchases and admin direct
// issuance. Quantity defaults to 1 when omitted. UserID is only honored for
// admins, who issue a single ticket for that user at the type's canonical
// price.
type CreateTicketRequest struct {
	UserID       uint `json:"user_id"`
	EventID      uint `json:"event_id"`
	TicketTypeID uint `json:"ticket_type_id"`
	Quantity     int  `json:"quantity"`
}

func (req *CreateTicketRequest) Validate() error {
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.TicketTypeID, validation.Required),
		validation.Field(&req.Quantity, validation.Min(1), validation.Max(20)),
	)
}

type UpdateTicketRequest struct {
	Price  *decimal.Decimal `json:"price"`
	IsUsed *bool            `json:"is_used"`
}

func (req *UpdateTicketRequest) Validate() error {
	if req.Price == nil && req.IsUsed == nil {
		return errEmptyUpdate
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return errPriceNegative
		}
		if req.Price.GreaterThan(maxTicketPrice) {
			return errPriceTooHigh
		}
	}

	return nil
}
