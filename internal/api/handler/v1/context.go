package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ticketeria/ticketeria/internal/api/handler/v1/response"
	"github.com/ticketeria/ticketeria/internal/api/middleware"
	"github.com/ticketeria/ticketeria/internal/domain"
)

func getUserFromContext(ctx *gin.Context) (domain.User, *response.Err) {
	user, ok := middleware.AuthUser(ctx)
	if !ok {
		return domain.User{}, response.ErrMissingToken()
	}

	return user, nil
}
