package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketeria/ticketeria/internal/cache"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/repository"
)

type fakeTicketRepo struct {
	tickets   map[uint]domain.Ticket
	remaining int
	nextID    uint
	batchErr  error
}

func newFakeTicketRepo(remaining int) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:   make(map[uint]domain.Ticket),
		remaining: remaining,
		nextID:    1,
	}
}

func (f *fakeTicketRepo) CreateBatch(_ context.Context, userID, eventID, ticketTypeID uint, quantity int) ([]domain.Ticket, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if quantity > f.remaining {
		return nil, repository.ErrInsufficientInventory
	}

	created := make([]domain.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		t := domain.Ticket{
			ID:           f.nextID,
			UserID:       userID,
			EventID:      eventID,
			TicketTypeID: ticketTypeID,
			Price:        decimal.NewFromFloat(25.50),
		}
		f.tickets[t.ID] = t
		f.nextID++
		created = append(created, t)
	}
	f.remaining -= quantity

	return created, nil
}

func (f *fakeTicketRepo) FindByID(_ context.Context, id uint) (domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}

	return t, nil
}

func (f *fakeTicketRepo) FindAll(_ context.Context) ([]domain.Ticket, error) {
	all := make([]domain.Ticket, 0, len(f.tickets))
	for _, t := range f.tickets {
		all = append(all, t)
	}

	return all, nil
}

func (f *fakeTicketRepo) FindByUserID(_ context.Context, userID uint) ([]domain.Ticket, error) {
	var own []domain.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			own = append(own, t)
		}
	}

	return own, nil
}

func (f *fakeTicketRepo) MarkUsed(_ context.Context, id uint) (domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	if t.IsUsed {
		return domain.Ticket{}, repository.ErrTicketAlreadyUsed
	}

	t.IsUsed = true
	f.tickets[id] = t

	return t, nil
}

func (f *fakeTicketRepo) Update(_ context.Context, id uint, price *decimal.Decimal, isUsed *bool) (domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	if price != nil {
		t.Price = *price
	}
	if isUsed != nil {
		t.IsUsed = *isUsed
	}
	f.tickets[id] = t

	return t, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(f.tickets, id)

	return nil
}

func TestTicketService_Purchase(t *testing.T) {
	buyer := domain.User{ID: 7, Role: domain.RoleUser}

	t.Run("issues the requested quantity", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(10), nil, nil)

		tickets, err := svc.Purchase(context.Background(), buyer, 1, 1, 3)

		require.NoError(t, err)
		assert.Len(t, tickets, 3)
		for _, ticket := range tickets {
			assert.Equal(t, buyer.ID, ticket.UserID)
		}
	})

	t.Run("rejects zero or negative quantity", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(10), nil, nil)

		_, err := svc.Purchase(context.Background(), buyer, 1, 1, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.Purchase(context.Background(), buyer, 1, 1, -2)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects quantity over the cap", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(100), nil, nil)

		_, err := svc.Purchase(context.Background(), buyer, 1, 1, MaxTicketsPerPurchase+1)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("allows exactly the cap", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(100), nil, nil)

		tickets, err := svc.Purchase(context.Background(), buyer, 1, 1, MaxTicketsPerPurchase)

		require.NoError(t, err)
		assert.Len(t, tickets, MaxTicketsPerPurchase)
	})

	t.Run("surfaces insufficient inventory", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(2), nil, nil)

		_, err := svc.Purchase(context.Background(), buyer, 1, 1, 3)

		assert.ErrorIs(t, err, ErrInsufficientInventory)
	})

	t.Run("surfaces unknown ticket type", func(t *testing.T) {
		repo := newFakeTicketRepo(10)
		repo.batchErr = repository.ErrTicketTypeNotFound
		svc := NewTicketService(repo, nil, nil)

		_, err := svc.Purchase(context.Background(), buyer, 1, 99, 1)

		assert.ErrorIs(t, err, ErrTicketTypeNotFound)
	})
}

// A sale changes sold/remaining, so the cached event catalog must be dropped.
func TestTicketService_PurchaseInvalidatesEventCache(t *testing.T) {
	buyer := domain.User{ID: 7, Role: domain.RoleUser}

	t.Run("successful purchase invalidates", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel("events:list").SetVal(1)

		svc := NewTicketService(newFakeTicketRepo(10), nil, cache.NewEventCacheWithClient(client, time.Minute))

		_, err := svc.Purchase(context.Background(), buyer, 1, 1, 2)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed purchase leaves the cache alone", func(t *testing.T) {
		client, mock := redismock.NewClientMock()

		svc := NewTicketService(newFakeTicketRepo(1), nil, cache.NewEventCacheWithClient(client, time.Minute))

		_, err := svc.Purchase(context.Background(), buyer, 1, 1, 2)

		require.ErrorIs(t, err, ErrInsufficientInventory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin issuance invalidates", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel("events:list").SetVal(1)

		svc := NewTicketService(newFakeTicketRepo(10), nil, cache.NewEventCacheWithClient(client, time.Minute))

		_, err := svc.AdminIssue(context.Background(), 42, 1, 1)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketService_AdminIssue(t *testing.T) {
	t.Run("issues a single ticket for the target user", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(5), nil, nil)

		ticket, err := svc.AdminIssue(context.Background(), 42, 1, 1)

		require.NoError(t, err)
		assert.Equal(t, uint(42), ticket.UserID)
	})

	t.Run("respects the availability invariant", func(t *testing.T) {
		svc := NewTicketService(newFakeTicketRepo(0), nil, nil)

		_, err := svc.AdminIssue(context.Background(), 42, 1, 1)

		assert.ErrorIs(t, err, ErrInsufficientInventory)
	})
}

func TestTicketService_ListTickets(t *testing.T) {
	repo := newFakeTicketRepo(10)
	svc := NewTicketService(repo, nil, nil)

	alice := domain.User{ID: 1, Role: domain.RoleUser}
	bob := domain.User{ID: 2, Role: domain.RoleUser}
	admin := domain.User{ID: 3, Role: domain.RoleAdmin}

	_, err := svc.Purchase(context.Background(), alice, 1, 1, 2)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), bob, 1, 1, 3)
	require.NoError(t, err)

	t.Run("admin sees everything", func(t *testing.T) {
		tickets, err := svc.ListTickets(context.Background(), admin)

		require.NoError(t, err)
		assert.Len(t, tickets, 5)
	})

	t.Run("user sees only their own", func(t *testing.T) {
		tickets, err := svc.ListTickets(context.Background(), alice)

		require.NoError(t, err)
		assert.Len(t, tickets, 2)
		for _, ticket := range tickets {
			assert.Equal(t, alice.ID, ticket.UserID)
		}
	})
}

func TestTicketService_GetTicket(t *testing.T) {
	repo := newFakeTicketRepo(10)
	svc := NewTicketService(repo, nil, nil)

	owner := domain.User{ID: 1, Role: domain.RoleUser}
	stranger := domain.User{ID: 2, Role: domain.RoleUser}
	admin := domain.User{ID: 3, Role: domain.RoleAdmin}

	tickets, err := svc.Purchase(context.Background(), owner, 1, 1, 1)
	require.NoError(t, err)
	id := tickets[0].ID

	t.Run("owner can read", func(t *testing.T) {
		ticket, err := svc.GetTicket(context.Background(), owner, id)

		require.NoError(t, err)
		assert.Equal(t, id, ticket.ID)
	})

	t.Run("admin can read", func(t *testing.T) {
		_, err := svc.GetTicket(context.Background(), admin, id)

		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.GetTicket(context.Background(), stranger, id)

		assert.ErrorIs(t, err, ErrNotTicketOwner)
	})

	t.Run("missing ticket", func(t *testing.T) {
		_, err := svc.GetTicket(context.Background(), owner, 999)

		assert.ErrorIs(t, err, ErrTicketNotFound)
	})
}

func TestTicketService_UseTicket(t *testing.T) {
	repo := newFakeTicketRepo(10)
	svc := NewTicketService(repo, nil, nil)

	owner := domain.User{ID: 1, Role: domain.RoleUser}
	stranger := domain.User{ID: 2, Role: domain.RoleUser}

	tickets, err := svc.Purchase(context.Background(), owner, 1, 1, 2)
	require.NoError(t, err)

	t.Run("marks used and returns a validation code", func(t *testing.T) {
		used, code, err := svc.UseTicket(context.Background(), owner, tickets[0].ID)

		require.NoError(t, err)
		assert.True(t, used.IsUsed)
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
		}
	})

	t.Run("using twice is a hard failure", func(t *testing.T) {
		_, _, err := svc.UseTicket(context.Background(), owner, tickets[0].ID)

		assert.ErrorIs(t, err, ErrTicketAlreadyUsed)
	})

	t.Run("non-owner cannot redeem", func(t *testing.T) {
		_, _, err := svc.UseTicket(context.Background(), stranger, tickets[1].ID)

		assert.ErrorIs(t, err, ErrNotTicketOwner)
	})
}

func TestTicketService_UpdateTicket(t *testing.T) {
	repo := newFakeTicketRepo(10)
	svc := NewTicketService(repo, nil, nil)

	owner := domain.User{ID: 1, Role: domain.RoleUser}
	tickets, err := svc.Purchase(context.Background(), owner, 1, 1, 1)
	require.NoError(t, err)

	newPrice := decimal.NewFromFloat(99.99)
	reset := false

	updated, err := svc.UpdateTicket(context.Background(), tickets[0].ID, &newPrice, &reset)

	require.NoError(t, err)
	assert.True(t, newPrice.Equal(updated.Price))
	assert.False(t, updated.IsUsed)
}
