package auth

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the resolved caller attached to the request context.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  models.UserRole
}

// Authenticator validates Casdoor-issued tokens and mirrors the user into
// local storage so attempts can reference them by id.
type Authenticator struct {
	client *casdoorsdk.Client
	users  repositories.UserRepository
	logger utils.Logger
}

// CasdoorConfig carries the identity provider connection settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

func NewAuthenticator(cfg CasdoorConfig, users repositories.UserRepository, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{
		client: client,
		users:  users,
		logger: logger,
	}
}

// Middleware authenticates the Bearer token and stores the Identity.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := a.client.ParseJwtToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.logger.Warn("Token validation failed", "error", err)
			abortUnauthorized(c, "invalid token")
			return
		}

		identity := Identity{
			ID:    claims.User.Id,
			Name:  claims.User.DisplayName,
			Email: claims.User.Email,
			Role:  roleFromClaims(claims),
		}
		if identity.ID == "" {
			abortUnauthorized(c, "token carries no subject")
			return
		}

		// Mirror the provider's record locally; a stale mirror is tolerable,
		// a failed sync is not fatal for the request.
		user := &models.User{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		}
		if err := a.users.Upsert(c.Request.Context(), user); err != nil {
			a.logger.Error("Failed to sync user mirror", "user_id", identity.ID, "error", err)
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.User.IsAdmin {
		return models.RoleAdmin
	}
	if role := models.UserRole(claims.User.Tag); role.IsValid() {
		return role
	}
	return models.RoleStudent
}

// RequireRole gates a route group to the given roles. Admins pass everywhere.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			abortUnauthorized(c, "not authenticated")
			return
		}
		if identity.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient permissions",
		})
	}
}

// IdentityFromContext retrieves the Identity set by Middleware.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": reason,
	})
}
