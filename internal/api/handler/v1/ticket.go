package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ticketeria/ticketeria/internal/api/handler/v1/request"
	"github.com/ticketeria/ticketeria/internal/api/handler/v1/response"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/service"
)

var errQuantityOnIssue = errors.New("quantity is not allowed when issuing a ticket for another user")

type TicketService interface {
	Purchase(ctx context.Context, requester domain.User, eventID, ticketTypeID uint, quantity int) ([]domain.Ticket, error)
	AdminIssue(ctx context.Context, userID, eventID, ticketTypeID uint) (domain.Ticket, error)
	ListTickets(ctx context.Context, requester domain.User) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, requester domain.User, id uint) (domain.Ticket, error)
	UseTicket(ctx context.Context, requester domain.User, id uint) (domain.Ticket, string, error)
	UpdateTicket(ctx context.Context, id uint, price *decimal.Decimal, isUsed *bool) (domain.Ticket, error)
	DeleteTicket(ctx context.Context, id uint) error
}

type TicketHandler struct {
	svc TicketService
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{
		svc: svc,
	}
}

// HandleListTickets godoc
// @Summary      List tickets
// @Description  Admins see every ticket, users only their own
// @Tags         tickets
// @Produce      json
// @Success      200  {array}   domain.Ticket
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleListTickets(ctx *gin.Context) {
	requester, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tickets, err := h.svc.ListTickets(ctx.Request.Context(), requester)
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.svc.ListTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleGetTicket godoc
// @Summary      Get a ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Success      200       {object}  domain.Ticket
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID} [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	requester, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), requester, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		case errors.Is(err, service.ErrNotTicketOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotTicketOwner))
		default:
			err = fmt.Errorf("v1.HandleGetTicket -> h.svc.GetTicket -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleCreateTicket godoc
// @Summary      Purchase tickets, or issue one as an admin
// @Description  Regular users purchase for themselves with an optional quantity; an admin providing user_id issues a single ticket for that user instead
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTicketRequest true "request body"
// @Success      201      {object}  response.PurchaseResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets [post]
// @Security     BearerAuth
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	requester, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if req.UserID != 0 && req.UserID != requester.ID {
		if !requester.IsAdmin() {
			response.RenderErr(ctx, response.ErrPermissionDenied(errNotResourceOwner))
			return
		}

		// Direct issuance is one ticket per request; a quantity would be
		// silently dropped otherwise.
		if req.Quantity > 1 {
			response.RenderErr(ctx, response.ErrBadRequest(errQuantityOnIssue))
			return
		}

		ticket, err := h.svc.AdminIssue(ctx.Request.Context(), req.UserID, req.EventID, req.TicketTypeID)
		if err != nil {
			h.renderIssueErr(ctx, err, req.EventID, req.TicketTypeID)
			return
		}

		ctx.JSON(http.StatusCreated, response.PurchaseResponse{
			Tickets: []domain.Ticket{ticket},
			Count:   1,
		})
		return
	}

	tickets, err := h.svc.Purchase(ctx.Request.Context(), requester, req.EventID, req.TicketTypeID, req.Quantity)
	if err != nil {
		h.renderIssueErr(ctx, err, req.EventID, req.TicketTypeID)
		return
	}

	ctx.JSON(http.StatusCreated, response.PurchaseResponse{
		Tickets: tickets,
		Count:   len(tickets),
	})
}

// HandleUseTicket godoc
// @Summary      Redeem a ticket
// @Description  Marks the ticket used and returns a one-time validation code; a used ticket cannot be redeemed again
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Success      200       {object}  response.UseTicketResponse
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID}/use [post]
// @Security     BearerAuth
func (h *TicketHandler) HandleUseTicket(ctx *gin.Context) {
	requester, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, code, err := h.svc.UseTicket(ctx.Request.Context(), requester, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		case errors.Is(err, service.ErrNotTicketOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotTicketOwner))
		case errors.Is(err, service.ErrTicketAlreadyUsed):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTicketAlreadyUsed))
		default:
			err = fmt.Errorf("v1.HandleUseTicket -> h.svc.UseTicket -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.UseTicketResponse{
		Ticket:         ticket,
		ValidationCode: code,
	})
}

// HandleUpdateTicket godoc
// @Summary      Update a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Param        request   body      request.UpdateTicketRequest true "request body"
// @Success      200       {object}  domain.Ticket
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID} [put]
// @Security     BearerAuth
func (h *TicketHandler) HandleUpdateTicket(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateTicketRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.UpdateTicket(ctx.Request.Context(), id, req.Price, req.IsUsed)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateTicket -> h.svc.UpdateTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleDeleteTicket godoc
// @Summary      Delete a ticket
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Success      204       "No Content"
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID} [delete]
// @Security     BearerAuth
func (h *TicketHandler) HandleDeleteTicket(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.DeleteTicket(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteTicket -> h.svc.DeleteTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TicketHandler) renderIssueErr(ctx *gin.Context, err error, eventID, ticketTypeID uint) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidQuantity))
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrTicketTypeNotFound):
		response.RenderErr(ctx, response.ErrNotFound("ticket type", "ID", ticketTypeID))
	case errors.Is(err, service.ErrInsufficientInventory):
		response.RenderErr(ctx, response.ErrConflict(service.ErrInsufficientInventory))
	default:
		err = fmt.Errorf("v1.TicketHandler -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
