package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketAlreadyUsed     = errors.New("ticket already used")
	ErrInsufficientInventory = errors.New("insufficient inventory for ticket type")
)

type Ticket struct {
	ID uint `gorm:"primaryKey"`

	UserID       uint            `gorm:"not null;index"`
	EventID      uint            `gorm:"not null;index"`
	TicketTypeID uint            `gorm:"not null;index"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsUsed       bool            `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// InsertBatch issues quantity tickets against a ticket type, all-or-nothing.
// The type row is locked for the duration of the transaction so the
// count-then-insert sequence is evaluated against a consistent snapshot;
// concurrent purchases against the same type serialize on the row lock and
// cannot jointly exceed the configured quantity.
func (d *TicketDAO) InsertBatch(ctx context.Context, userID, eventID, ticketTypeID uint, quantity int) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticketType TicketType
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND event_id = ?", ticketTypeID, eventID).
			First(&ticketType).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketTypeNotFound
			}

			return err
		}

		var sold int64
		err = tx.Model(&Ticket{}).
			Where("ticket_type_id = ?", ticketTypeID).
			Count(&sold).Error
		if err != nil {
			return err
		}

		if quantity > ticketType.Quantity-int(sold) {
			return ErrInsufficientInventory
		}

		tickets = make([]Ticket, quantity)
		for i := range tickets {
			tickets[i] = Ticket{
				UserID:       userID,
				EventID:      eventID,
				TicketTypeID: ticketTypeID,
				Price:        ticketType.Price,
			}
		}

		return tx.Create(&tickets).Error
	})
	if err != nil {
		// A serialization abort means a concurrent purchase won the row;
		// surface it as an inventory failure, not an internal error.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure {
			return nil, ErrInsufficientInventory
		}

		return nil, err
	}

	return tickets, nil
}

func (d *TicketDAO) FindByID(ctx context.Context, id uint) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).First(&ticket, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindAll(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).Order("id").Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) FindByUserID(ctx context.Context, userID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// MarkUsed flips the ticket to USED under a row lock. Reuse is a hard error,
// the transition is never reverted.
func (d *TicketDAO) MarkUsed(ctx context.Context, id uint) (Ticket, error) {
	var ticket Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ticket, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}

			return err
		}

		if ticket.IsUsed {
			return ErrTicketAlreadyUsed
		}

		ticket.IsUsed = true

		return tx.Model(&ticket).Update("is_used", true).Error
	})
	if err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

// Update applies admin edits (price and/or used flag) to the ticket.
func (d *TicketDAO) Update(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (Ticket, error) {
	updates := map[string]any{}
	if price != nil {
		updates["price"] = *price
	}
	if isUsed != nil {
		updates["is_used"] = *isUsed
	}

	var ticket Ticket
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ticket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}

			return err
		}

		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&ticket).Updates(updates).Error
	})
	if err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

func (d *TicketDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Ticket{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}
