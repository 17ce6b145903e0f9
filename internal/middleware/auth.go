package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medicloud/docs-api/internal/handler"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/internal/service/auth"
)

const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"

	roleCacheTTL     = 5 * time.Minute
	roleCacheCleanup = 10 * time.Minute
)

type AuthMiddleware struct {
	authService *auth.Service
	userRepo    repository.UserRepository
	roleCache   *gocache.Cache
}

func NewAuthMiddleware(authService *auth.Service, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		roleCache:   gocache.New(roleCacheTTL, roleCacheCleanup),
	}
}

// Authenticate verifies the JWT bearer token and sets user info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route on the profile's current role. The role is read
// from the store, not the token, so a revoked admin loses access within the
// cache TTL rather than at token expiry.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetString(ContextUserID))
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
			c.Abort()
			return
		}

		currentRole, err := m.lookupRole(c, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to check role"))
			c.Abort()
			return
		}

		if currentRole != role {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) lookupRole(c *gin.Context, userID uuid.UUID) (string, error) {
	key := userID.String()
	if cached, found := m.roleCache.Get(key); found {
		return cached.(string), nil
	}

	user, err := m.userRepo.Get(c.Request.Context(), userID)
	if err != nil {
		return "", err
	}

	m.roleCache.Set(key, user.Role, gocache.DefaultExpiration)
	return user.Role, nil
}

// CurrentUserID returns the authenticated user's ID from the gin context.
func CurrentUserID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString(ContextUserID))
	return id
}
