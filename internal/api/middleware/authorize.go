package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ticketeria/ticketeria/internal/api/handler/v1/response"
)

var errAdminOnly = errors.New("administrator access required")

// RequireAdmin is the role gate: it must run after VerifyJWT and rejects any
// principal without the ADMIN role.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := AuthUser(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrMissingToken())
			return
		}

		if !user.IsAdmin() {
			response.RenderErr(ctx, response.ErrPermissionDenied(errAdminOnly))
			return
		}

		ctx.Next()
	}
}
