package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

// OwnerIDKey is the gin context key holding the authenticated owner's id
const OwnerIDKey = "owner_id"

// OwnerResolver looks up shop owners for the auth middleware
type OwnerResolver interface {
	OwnerExists(ctx context.Context, ownerID string) (bool, error)
	OwnerForSubject(ctx context.Context, subject string) (*models.Owner, error)
}

// Authenticator resolves the shop owner of a request from its session
// cookie or, when enabled, an identity provider bearer token
type Authenticator struct {
	sessions   services.SessionStore
	owners     OwnerResolver
	cookieName string
	jwt        *jwtmiddleware.JWTMiddleware
	log        *logger.Logger
}

// NewAuthenticator builds the middleware. Bearer tokens are accepted only
// when cfg has an Auth0 domain.
func NewAuthenticator(cfg *config.Config, sessions services.SessionStore, owners OwnerResolver, log *logger.Logger) (*Authenticator, error) {
	a := &Authenticator{
		sessions:   sessions,
		owners:     owners,
		cookieName: cfg.SessionCookieName,
		log:        log.With("middleware", "Authenticator"),
	}
	if !cfg.BearerAuthEnabled() {
		return a, nil
	}

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, err
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}
	a.WithTokenValidator(jwtValidator.ValidateToken)
	return a, nil
}

// WithTokenValidator enables bearer authentication with validate
func (a *Authenticator) WithTokenValidator(validate jwtmiddleware.ValidateToken) *Authenticator {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		a.log.Info("rejected bearer token", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`))
	}
	a.jwt = jwtmiddleware.New(validate, jwtmiddleware.WithErrorHandler(errorHandler))
	return a
}

// RequireOwner aborts with 401 unless the request carries a live session
// or a valid bearer token
func (a *Authenticator) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.jwt != nil && hasBearerToken(c.Request) {
			a.checkBearer(c)
			return
		}

		token, err := c.Cookie(a.cookieName)
		if err != nil || token == "" {
			unauthorized(c, "NOT_AUTHENTICATED", "Not authenticated")
			return
		}

		ownerID, err := a.sessions.Lookup(c.Request.Context(), token)
		if errors.Is(err, services.ErrSessionNotFound) {
			unauthorized(c, "SESSION_EXPIRED", "Session expired or invalid")
			return
		}
		if err != nil {
			a.log.Error("session lookup failed", "error", err)
			serverError(c)
			return
		}

		exists, err := a.owners.OwnerExists(c.Request.Context(), ownerID)
		if err != nil {
			a.log.Error("owner lookup failed", "owner_id", ownerID, "error", err)
			serverError(c)
			return
		}
		if !exists {
			unauthorized(c, "USER_NOT_FOUND", "User not found")
			return
		}

		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

func (a *Authenticator) checkBearer(c *gin.Context) {
	passed := false
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
		if !ok {
			unauthorized(c, "INVALID_TOKEN", "Failed to validate JWT.")
			return
		}

		owner, err := a.owners.OwnerForSubject(r.Context(), claims.RegisteredClaims.Subject)
		if err != nil {
			var se *services.ShopError
			if errors.As(err, &se) && se.Kind == services.KindUnauthenticated {
				unauthorized(c, se.Code, se.Message)
				return
			}
			a.log.Error("owner provisioning failed", "error", err)
			serverError(c)
			return
		}

		passed = true
		c.Request = r
		c.Set(OwnerIDKey, owner.ID)
		c.Next()
	}

	a.jwt.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
	if !passed {
		c.Abort()
	}
}

func hasBearerToken(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	return len(h) > 7 && strings.EqualFold(h[:7], "Bearer ")
}

func unauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func serverError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "SERVER_ERROR",
			"message": "Server error in authentication",
		},
	})
}

// GetOwnerID extracts the owner ID from the Gin context
func GetOwnerID(c *gin.Context) (string, error) {
	ownerID, exists := c.Get(OwnerIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_OWNER_ID", Message: "Owner ID not found in context"}
	}

	ownerIDStr, ok := ownerID.(string)
	if !ok || ownerIDStr == "" {
		return "", &AuthError{Code: "INVALID_OWNER_ID", Message: "Owner ID is not a string"}
	}

	return ownerIDStr, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
