package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ticketeria/ticketeria/internal/cache"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/metrics"
	"github.com/ticketeria/ticketeria/internal/mq"
	"github.com/ticketeria/ticketeria/internal/pkg/redemption"
	"github.com/ticketeria/ticketeria/internal/repository"
)

// MaxTicketsPerPurchase caps a single self-service purchase request.
const MaxTicketsPerPurchase = 20

var (
	ErrTicketNotFound        = repository.ErrTicketNotFound
	ErrTicketAlreadyUsed     = repository.ErrTicketAlreadyUsed
	ErrInsufficientInventory = repository.ErrInsufficientInventory
	ErrInvalidQuantity       = errors.New("quantity must be between 1 and 20")
	ErrNotTicketOwner        = errors.New("ticket belongs to another user")
)

type TicketRepository interface {
	CreateBatch(ctx context.Context, userID, eventID, ticketTypeID uint, quantity int) ([]domain.Ticket, error)
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
	FindAll(ctx context.Context) ([]domain.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Ticket, error)
	MarkUsed(ctx context.Context, id uint) (domain.Ticket, error)
	Update(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (domain.Ticket, error)
	Delete(ctx context.Context, id uint) error
}

type TicketService struct {
	repo      TicketRepository
	publisher *mq.Publisher
	cache     *cache.EventCache
}

func NewTicketService(repo TicketRepository, publisher *mq.Publisher, eventCache *cache.EventCache) *TicketService {
	return &TicketService{
		repo:      repo,
		publisher: publisher,
		cache:     eventCache,
	}
}

// Purchase issues quantity tickets for the requester at the ticket type's
// current price, or fails with no partial effect. The availability check and
// the inserts run as one atomic unit in the store.
func (s *TicketService) Purchase(ctx context.Context, requester domain.User, eventID, ticketTypeID uint, quantity int) ([]domain.Ticket, error) {
	if quantity < 1 || quantity > MaxTicketsPerPurchase {
		metrics.PurchaseFailures.WithLabelValues("invalid_quantity").Inc()
		return nil, ErrInvalidQuantity
	}

	tickets, err := s.repo.CreateBatch(ctx, requester.ID, eventID, ticketTypeID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientInventory):
			metrics.PurchaseFailures.WithLabelValues("insufficient_inventory").Inc()
		case errors.Is(err, repository.ErrTicketTypeNotFound):
			metrics.PurchaseFailures.WithLabelValues("ticket_type_not_found").Inc()
		default:
			metrics.PurchaseFailures.WithLabelValues("store_error").Inc()
		}

		return nil, fmt.Errorf("s.repo.CreateBatch -> %w", err)
	}

	metrics.TicketsIssued.WithLabelValues("purchase").Add(float64(len(tickets)))
	// Sold counts changed, the cached catalog is stale.
	s.cache.Invalidate(ctx)
	s.publishIssued(ctx, tickets)

	return tickets, nil
}

// AdminIssue creates a single ticket for an arbitrary user at the type's
// canonical price, subject to the same availability invariant as purchases.
func (s *TicketService) AdminIssue(ctx context.Context, userID, eventID, ticketTypeID uint) (domain.Ticket, error) {
	tickets, err := s.repo.CreateBatch(ctx, userID, eventID, ticketTypeID, 1)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientInventory) {
			metrics.PurchaseFailures.WithLabelValues("insufficient_inventory").Inc()
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.CreateBatch -> %w", err)
	}

	metrics.TicketsIssued.WithLabelValues("admin").Inc()
	s.cache.Invalidate(ctx)
	s.publishIssued(ctx, tickets)

	return tickets[0], nil
}

// ListTickets returns every ticket for admins and only the requester's own
// tickets otherwise.
func (s *TicketService) ListTickets(ctx context.Context, requester domain.User) ([]domain.Ticket, error) {
	var (
		tickets []domain.Ticket
		err     error
	)
	if requester.IsAdmin() {
		tickets, err = s.repo.FindAll(ctx)
	} else {
		tickets, err = s.repo.FindByUserID(ctx, requester.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) GetTicket(ctx context.Context, requester domain.User, id uint) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !requester.CanAccess(ticket.UserID) {
		return domain.Ticket{}, ErrNotTicketOwner
	}

	return ticket, nil
}

// UseTicket performs the one-time UNUSED -> USED transition and returns the
// updated ticket together with an ephemeral validation code. Reusing a used
// ticket is a hard error and leaves the ticket untouched.
func (s *TicketService) UseTicket(ctx context.Context, requester domain.User, id uint) (domain.Ticket, string, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, "", fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !requester.CanAccess(ticket.UserID) {
		return domain.Ticket{}, "", ErrNotTicketOwner
	}

	used, err := s.repo.MarkUsed(ctx, id)
	if err != nil {
		return domain.Ticket{}, "", fmt.Errorf("s.repo.MarkUsed -> %w", err)
	}

	code, err := redemption.NewCode()
	if err != nil {
		return domain.Ticket{}, "", fmt.Errorf("redemption.NewCode -> %w", err)
	}

	metrics.TicketsRedeemed.Inc()
	s.publishEvent(ctx, mq.EventTicketUsed, used)

	return used, code, nil
}

func (s *TicketService) UpdateTicket(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (domain.Ticket, error) {
	updated, err := s.repo.Update(ctx, id, price, isUsed)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *TicketService) DeleteTicket(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.cache.Invalidate(ctx)

	return nil
}

func (s *TicketService) publishIssued(ctx context.Context, tickets []domain.Ticket) {
	for _, t := range tickets {
		s.publishEvent(ctx, mq.EventTicketIssued, t)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, eventType string, t domain.Ticket) {
	err := s.publisher.Publish(ctx, mq.TicketEvent{
		Type:         eventType,
		TicketID:     t.ID,
		UserID:       t.UserID,
		EventID:      t.EventID,
		TicketTypeID: t.TicketTypeID,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		zap.L().Warn("ticket event publish failed",
			zap.String("type", eventType),
			zap.Uint("ticket_id", t.ID),
			zap.Error(err),
		)
	}
}
