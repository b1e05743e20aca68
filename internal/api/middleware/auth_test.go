package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/pkg/jwthelper"
)

const testSigningKey = "test-signing-key"

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handlers := append([]gin.HandlerFunc{NewAuthenticator(testSigningKey).VerifyJWT()}, extra...)
	handlers = append(handlers, func(ctx *gin.Context) {
		user, ok := AuthUser(ctx)
		if !ok {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	router.GET("/protected", handlers...)

	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestVerifyJWT(t *testing.T) {
	router := newProtectedRouter()

	t.Run("valid token passes and sets the user", func(t *testing.T) {
		token, err := jwthelper.GenerateToken([]byte(testSigningKey), domain.User{ID: 7, Role: domain.RoleUser})
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id": 7}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := doRequest(router, "Basic abc123")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		token, err := jwthelper.GenerateToken([]byte("other-key"), domain.User{ID: 7})
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	router := newProtectedRouter(RequireAdmin())

	t.Run("admin passes", func(t *testing.T) {
		token, err := jwthelper.GenerateToken([]byte(testSigningKey), domain.User{ID: 1, Role: domain.RoleAdmin})
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		token, err := jwthelper.GenerateToken([]byte(testSigningKey), domain.User{ID: 2, Role: domain.RoleUser})
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
