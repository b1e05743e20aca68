package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ticketeria/ticketeria/internal/api/handler/v1/response"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/pkg/jwthelper"
)

// ContextKeyAuthUser is the gin context key holding the authenticated user.
const ContextKeyAuthUser = "authUser"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// token's user in the request context for handlers.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.RenderErr(ctx, response.ErrMissingToken())
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.RenderErr(ctx, response.ErrInvalidToken())
			return
		}

		ctx.Set(ContextKeyAuthUser, domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  claims.Role,
		})

		ctx.Next()
	}
}

// AuthUser returns the user stored by VerifyJWT.
func AuthUser(ctx *gin.Context) (domain.User, bool) {
	value, exists := ctx.Get(ContextKeyAuthUser)
	if !exists {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)

	return user, ok
}
