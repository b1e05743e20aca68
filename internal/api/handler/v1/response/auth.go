package response

import "github.com/ticketeria/ticketeria/internal/domain"

type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}
