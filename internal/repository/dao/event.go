package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
)

// TicketTypesInUseError reports a rejected reconciliation: the named ticket
// types were absent from the submitted set but already have tickets sold.
type TicketTypesInUseError struct {
	Names []string
}

func (e *TicketTypesInUseError) Error() string {
	return fmt.Sprintf("cannot remove ticket types with sold tickets: %v", strings.Join(e.Names, ", "))
}

type Event struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string
	Date        time.Time `gorm:"not null"`
	Location    string    `gorm:"not null"`
	MaxCapacity int       `gorm:"not null"`

	TicketTypes []TicketType `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Tickets     []Ticket     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TicketType struct {
	ID uint `gorm:"primaryKey"`

	EventID  uint            `gorm:"not null;index"`
	Name     string          `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity int             `gorm:"not null"`

	// Sold is populated by queries, never stored.
	Sold int `gorm:"-"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).Preload("TicketTypes").First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	if err := d.fillSoldCounts(ctx, d.db, []*Event{&event}); err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Preload("TicketTypes").Order("date").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	refs := make([]*Event, len(events))
	for i := range events {
		refs[i] = &events[i]
	}
	if err := d.fillSoldCounts(ctx, d.db, refs); err != nil {
		return nil, err
	}

	return events, nil
}

// Update rewrites the event row and reconciles its ticket types against the
// submitted replacement set in a single transaction: types carrying an ID are
// updated in place, types without one are created, and existing types absent
// from the set are deleted unless they already have tickets sold. Any blocked
// deletion aborts the whole update with a TicketTypesInUseError.
func (d *EventDAO) Update(ctx context.Context, id uint, event Event, types []TicketType, replaceTypes bool) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Event
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		updates := map[string]any{}
		if event.Title != "" {
			updates["title"] = event.Title
		}
		if event.Description != "" {
			updates["description"] = event.Description
		}
		if !event.Date.IsZero() {
			updates["date"] = event.Date
		}
		if event.Location != "" {
			updates["location"] = event.Location
		}
		if event.MaxCapacity > 0 {
			updates["max_capacity"] = event.MaxCapacity
		}
		if len(updates) > 0 {
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return err
			}
		}

		if !replaceTypes {
			return nil
		}

		return d.reconcileTicketTypes(tx, id, types)
	})
	if err != nil {
		return Event{}, err
	}

	return d.FindByID(ctx, id)
}

func (d *EventDAO) reconcileTicketTypes(tx *gorm.DB, eventID uint, submitted []TicketType) error {
	// Lock the type rows first. Purchases lock the same rows in InsertBatch,
	// so an in-flight purchase commits its tickets before the sold counts are
	// read and a type can never be deleted out from under it.
	var existing []TicketType
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", eventID).
		Find(&existing).Error
	if err != nil {
		return err
	}

	submittedIDs := make(map[uint]bool, len(submitted))
	for _, t := range submitted {
		if t.ID != 0 {
			submittedIDs[t.ID] = true
		}
	}

	sold, err := soldCountsByType(tx, eventID)
	if err != nil {
		return err
	}

	var toDelete []uint
	var blocked []string
	for _, t := range existing {
		if submittedIDs[t.ID] {
			continue
		}
		if sold[t.ID] > 0 {
			blocked = append(blocked, t.Name)
			continue
		}
		toDelete = append(toDelete, t.ID)
	}
	if len(blocked) > 0 {
		return &TicketTypesInUseError{Names: blocked}
	}

	if len(toDelete) > 0 {
		if err := tx.Where("id IN ?", toDelete).Delete(&TicketType{}).Error; err != nil {
			return err
		}
	}

	for _, t := range submitted {
		if t.ID != 0 {
			result := tx.Model(&TicketType{}).
				Where("id = ? AND event_id = ?", t.ID, eventID).
				Updates(map[string]any{
					"name":     t.Name,
					"price":    t.Price,
					"quantity": t.Quantity,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrTicketTypeNotFound
			}

			continue
		}

		t.EventID = eventID
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
	}

	return nil
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Select("TicketTypes", "Tickets").Delete(&Event{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) fillSoldCounts(ctx context.Context, db *gorm.DB, events []*Event) error {
	for _, event := range events {
		sold, err := soldCountsByType(db.WithContext(ctx), event.ID)
		if err != nil {
			return err
		}

		for i := range event.TicketTypes {
			t := &event.TicketTypes[i]
			t.Sold = sold[t.ID]
		}
	}

	return nil
}

// soldCountsByType returns ticket counts grouped by ticket type for an event.
func soldCountsByType(tx *gorm.DB, eventID uint) (map[uint]int, error) {
	type row struct {
		TicketTypeID uint
		Count        int
	}

	var rows []row
	err := tx.Model(&Ticket{}).
		Select("ticket_type_id, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("ticket_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.TicketTypeID] = r.Count
	}

	return counts, nil
}
