package response

import "github.com/ticketeria/ticketeria/internal/domain"

type PurchaseResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
	Count   int             `json:"count"`
}

type UseTicketResponse struct {
	Ticket         domain.Ticket `json:"ticket"`
	ValidationCode string        `json:"validation_code"`
}
