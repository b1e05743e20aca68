package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ticketeria/ticketeria/internal/api/middleware"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/service"
)

type stubTicketService struct {
	purchaseErr    error
	purchased      []domain.Ticket
	issued         domain.Ticket
	issuedForUser  uint
	useErr         error
	purchaseCalled bool
	issueCalled    bool
}

func (s *stubTicketService) Purchase(_ context.Context, requester domain.User, _, _ uint, quantity int) ([]domain.Ticket, error) {
	s.purchaseCalled = true
	if s.purchaseErr != nil {
		return nil, s.purchaseErr
	}

	tickets := make([]domain.Ticket, quantity)
	for i := range tickets {
		tickets[i] = domain.Ticket{ID: uint(i + 1), UserID: requester.ID}
	}
	s.purchased = tickets

	return tickets, nil
}

func (s *stubTicketService) AdminIssue(_ context.Context, userID, _, _ uint) (domain.Ticket, error) {
	s.issueCalled = true
	s.issuedForUser = userID
	s.issued = domain.Ticket{ID: 1, UserID: userID}

	return s.issued, nil
}

func (s *stubTicketService) ListTickets(_ context.Context, _ domain.User) ([]domain.Ticket, error) {
	return nil, nil
}

func (s *stubTicketService) GetTicket(_ context.Context, _ domain.User, _ uint) (domain.Ticket, error) {
	return domain.Ticket{}, nil
}

func (s *stubTicketService) UseTicket(_ context.Context, _ domain.User, id uint) (domain.Ticket, string, error) {
	if s.useErr != nil {
		return domain.Ticket{}, "", s.useErr
	}

	return domain.Ticket{ID: id, IsUsed: true}, "A1B2C3D4", nil
}

func (s *stubTicketService) UpdateTicket(_ context.Context, _ uint, _ *decimal.Decimal, _ *bool) (domain.Ticket, error) {
	return domain.Ticket{}, nil
}

func (s *stubTicketService) DeleteTicket(_ context.Context, _ uint) error {
	return nil
}

func newTicketRouter(svc TicketService, requester domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewTicketHandler(svc)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyAuthUser, requester)
	})
	router.POST("/tickets", handler.HandleCreateTicket)
	router.POST("/tickets/:ticketID/use", handler.HandleUseTicket)

	return router
}

func TestHandleCreateTicket(t *testing.T) {
	buyer := domain.User{ID: 7, Role: domain.RoleUser}
	admin := domain.User{ID: 1, Role: domain.RoleAdmin}

	t.Run("self purchase", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc, buyer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"event_id": 1, "ticket_type_id": 2, "quantity": 3}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, svc.purchaseCalled)
		assert.False(t, svc.issueCalled)
		assert.Contains(t, w.Body.String(), `"count":3`)
	})

	t.Run("admin issues for another user", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc, admin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"user_id": 42, "event_id": 1, "ticket_type_id": 2}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, svc.issueCalled)
		assert.False(t, svc.purchaseCalled)
		assert.Equal(t, uint(42), svc.issuedForUser)
	})

	t.Run("admin issuance rejects a quantity", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc, admin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"user_id": 42, "event_id": 1, "ticket_type_id": 2, "quantity": 3}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, svc.issueCalled)
		assert.False(t, svc.purchaseCalled)
	})

	t.Run("regular user cannot issue for someone else", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc, buyer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"user_id": 42, "event_id": 1, "ticket_type_id": 2}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, svc.issueCalled)
		assert.False(t, svc.purchaseCalled)
	})

	t.Run("insufficient inventory maps to conflict", func(t *testing.T) {
		svc := &stubTicketService{purchaseErr: service.ErrInsufficientInventory}
		router := newTicketRouter(svc, buyer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"event_id": 1, "ticket_type_id": 2}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc, buyer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets",
			strings.NewReader(`{"ticket_type_id": 2}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleUseTicket(t *testing.T) {
	owner := domain.User{ID: 7, Role: domain.RoleUser}

	t.Run("returns the validation code", func(t *testing.T) {
		router := newTicketRouter(&stubTicketService{}, owner)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets/5/use", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"validation_code":"A1B2C3D4"`)
	})

	t.Run("already used maps to conflict", func(t *testing.T) {
		router := newTicketRouter(&stubTicketService{useErr: service.ErrTicketAlreadyUsed}, owner)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets/5/use", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("foreign ticket maps to forbidden", func(t *testing.T) {
		router := newTicketRouter(&stubTicketService{useErr: service.ErrNotTicketOwner}, owner)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tickets/5/use", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
