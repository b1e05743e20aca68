package request

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	maxTicketPrice = decimal.NewFromFloat(999999.99)

	errPriceNegative   = errors.New("price must not be negative")
	errPriceTooHigh    = errors.New("maximum price exceeded")
	errDateNotFuture   = errors.New("event date must be in the future")
	errNoTicketTypes   = errors.New("define at least one ticket type")
	errTooManyTypes    = errors.New("maximum number of ticket types exceeded")
	errEventDateFormat = errors.New("invalid date, use RFC 3339 format")
)

const maxTicketTypesPerEvent = 50

type TicketTypeRequest struct {
	// ID is set on update to modify an existing type in place; omitted IDs
	// create new types.
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (req *TicketTypeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(1000000)),
	)
	if err != nil {
		return err
	}

	if req.Price.IsNegative() {
		return errPriceNegative
	}
	if req.Price.GreaterThan(maxTicketPrice) {
		return errPriceTooHigh
	}

	return nil
}

type CreateEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Location    string              `json:"location"`
	MaxCapacity int                 `json:"max_capacity"`
	TicketTypes []TicketTypeRequest `json:"ticket_types"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&req.Description, validation.Length(10, 2000)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(3, 300)),
		validation.Field(&req.MaxCapacity, validation.Required, validation.Min(1), validation.Max(1000000)),
	)
	if err != nil {
		return err
	}

	if len(req.TicketTypes) == 0 {
		return errNoTicketTypes
	}
	if len(req.TicketTypes) > maxTicketTypesPerEvent {
		return errTooManyTypes
	}
	for i := range req.TicketTypes {
		if err = req.TicketTypes[i].Validate(); err != nil {
			return fmt.Errorf("ticket type %d: %w", i+1, err)
		}
	}

	date, err := req.ParsedDate()
	if err != nil {
		return err
	}
	if !date.After(time.Now()) {
		return errDateNotFuture
	}

	return nil
}

func (req *CreateEventRequest) ParsedDate() (time.Time, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return time.Time{}, errEventDateFormat
	}

	return date, nil
}

type UpdateEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Location    string              `json:"location"`
	MaxCapacity int                 `json:"max_capacity"`
	TicketTypes []TicketTypeRequest `json:"ticket_types"`
}

func (req *UpdateEventRequest) Validate() error {
	if req.Title == "" && req.Description == "" && req.Date == "" &&
		req.Location == "" && req.MaxCapacity == 0 && req.TicketTypes == nil {
		return errEmptyUpdate
	}

	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Length(3, 200)),
		validation.Field(&req.Description, validation.Length(10, 2000)),
		validation.Field(&req.Location, validation.Length(3, 300)),
		validation.Field(&req.MaxCapacity, validation.Min(0), validation.Max(1000000)),
	)
	if err != nil {
		return err
	}

	if len(req.TicketTypes) > maxTicketTypesPerEvent {
		return errTooManyTypes
	}
	for i := range req.TicketTypes {
		if err = req.TicketTypes[i].Validate(); err != nil {
			return fmt.Errorf("ticket type %d: %w", i+1, err)
		}
	}

	if req.Date != "" {
		date, err := req.ParsedDate()
		if err != nil {
			return err
		}
		if !date.After(time.Now()) {
			return errDateNotFuture
		}
	}

	return nil
}

func (req *UpdateEventRequest) ParsedDate() (time.Time, error) {
	if req.Date == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return time.Time{}, errEventDateFormat
	}

	return date, nil
}
