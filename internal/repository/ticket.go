package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/repository/dao"
)

var (
	ErrTicketNotFound        = dao.ErrTicketNotFound
	ErrTicketAlreadyUsed     = dao.ErrTicketAlreadyUsed
	ErrInsufficientInventory = dao.ErrInsufficientInventory
)

type TicketDAO interface {
	InsertBatch(ctx context.Context, userID, eventID, ticketTypeID uint, quantity int) ([]dao.Ticket, error)
	FindByID(ctx context.Context, id uint) (dao.Ticket, error)
	FindAll(ctx context.Context) ([]dao.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Ticket, error)
	MarkUsed(ctx context.Context, id uint) (dao.Ticket, error)
	Update(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (dao.Ticket, error)
	Delete(ctx context.Context, id uint) error
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

// CreateBatch issues quantity tickets at the ticket type's current price,
// all-or-nothing, respecting the type's remaining inventory.
func (r *TicketRepository) CreateBatch(ctx context.Context, userID, eventID, ticketTypeID uint, quantity int) ([]domain.Ticket, error) {
	created, err := r.dao.InsertBatch(ctx, userID, eventID, ticketTypeID, quantity)
	if err != nil {
		return nil, fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	tickets := make([]domain.Ticket, len(created))
	for i, t := range created {
		tickets[i] = r.daoToDomain(t)
	}

	return tickets, nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uint) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) FindAll(ctx context.Context) ([]domain.Ticket, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *TicketRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *TicketRepository) MarkUsed(ctx context.Context, id uint) (domain.Ticket, error) {
	used, err := r.dao.MarkUsed(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.MarkUsed -> %w", err)
	}

	return r.daoToDomain(used), nil
}

func (r *TicketRepository) Update(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (domain.Ticket, error) {
	updated, err := r.dao.Update(ctx, id, price, isUsed)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TicketRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:           t.ID,
		UserID:       t.UserID,
		EventID:      t.EventID,
		TicketTypeID: t.TicketTypeID,
		Price:        t.Price,
		IsUsed:       t.IsUsed,
		CreatedAt:    t.CreatedAt,
	}
}

func (r *TicketRepository) daosToDomain(ts []dao.Ticket) []domain.Ticket {
	tickets := make([]domain.Ticket, len(ts))
	for i, t := range ts {
		tickets[i] = r.daoToDomain(t)
	}

	return tickets
}
