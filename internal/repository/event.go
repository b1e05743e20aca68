package repository

import (
	"context"
	"fmt"

	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/repository/dao"
)

var (
	ErrEventNotFound      = dao.ErrEventNotFound
	ErrTicketTypeNotFound = dao.ErrTicketTypeNotFound
)

// TicketTypesInUseError is re-exported so callers outside the dao package can
// match the reconciliation conflict with errors.As.
type TicketTypesInUseError = dao.TicketTypesInUseError

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	Update(ctx context.Context, id uint, event dao.Event, types []dao.TicketType, replaceTypes bool) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

// Update replaces the event's scalar fields and, when replaceTypes is set,
// reconciles the ticket types against the submitted set as one atomic unit.
func (r *EventRepository) Update(ctx context.Context, id uint, event domain.Event, replaceTypes bool) (domain.Event, error) {
	types := make([]dao.TicketType, len(event.TicketTypes))
	for i, t := range event.TicketTypes {
		types[i] = dao.TicketType{
			ID:       t.ID,
			Name:     t.Name,
			Price:    t.Price,
			Quantity: t.Quantity,
		}
	}

	updated, err := r.dao.Update(ctx, id, r.domainToDao(event), types, replaceTypes)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	types := make([]dao.TicketType, len(e.TicketTypes))
	for i, t := range e.TicketTypes {
		types[i] = dao.TicketType{
			ID:       t.ID,
			EventID:  t.EventID,
			Name:     t.Name,
			Price:    t.Price,
			Quantity: t.Quantity,
		}
	}

	return dao.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		MaxCapacity: e.MaxCapacity,
		TicketTypes: types,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	types := make([]domain.TicketType, len(e.TicketTypes))
	sold := 0
	for i, t := range e.TicketTypes {
		types[i] = domain.TicketType{
			ID:        t.ID,
			EventID:   t.EventID,
			Name:      t.Name,
			Price:     t.Price,
			Quantity:  t.Quantity,
			Sold:      t.Sold,
			Remaining: t.Quantity - t.Sold,
		}
		sold += t.Sold
	}

	return domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		MaxCapacity: e.MaxCapacity,
		TicketTypes: types,
		TicketsSold: sold,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
