package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"burger-order-api/apperr"
	"burger-order-api/models"
	"burger-order-api/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the cookie browsers send the session token in.
const TokenCookie = "token"

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Accounts resolves the user a token was issued to.
type Accounts interface {
	Profile(ctx context.Context, userID uint) (*models.User, error)
}

// Auth issues and verifies HS256 session tokens. With accounts set,
// Required also rejects tokens of deleted or deactivated users.
type Auth struct {
	secret   []byte
	ttl      time.Duration
	accounts Accounts
	now      func() time.Time
}

func NewAuth(secret []byte, ttl time.Duration, accounts Accounts) *Auth {
	return &Auth{secret: secret, ttl: ttl, accounts: accounts, now: time.Now}
}

func (a *Auth) TTL() time.Duration {
	return a.ttl
}

// GenerateToken creates a signed JWT for a given user
func (a *Auth) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken verifies a token and returns its claims.
func (a *Auth) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// tokenFrom prefers the Authorization header over the cookie.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Required validates the JWT and injects claims into context
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			abort(c, apperr.Unauthorized("not authorized, no token"))
			return
		}
		claims, err := a.ParseToken(tokenStr)
		if err != nil {
			abort(c, apperr.Unauthorized("invalid or expired token"))
			return
		}
		role := claims.Role
		if a.accounts != nil {
			user, err := a.accounts.Profile(c.Request.Context(), claims.UserID)
			switch {
			case apperr.Is(err, apperr.CodeNotFound):
				abort(c, apperr.Unauthorized("user no longer exists"))
				return
			case err != nil:
				_ = c.Error(err)
				abort(c, apperr.Internal(err, "internal server error"))
				return
			case !user.IsActive:
				abort(c, apperr.Unauthorized("account is deactivated"))
				return
			}
			role = user.Role
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, string(role))
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxRole); !exists {
			abort(c, apperr.Forbidden("role not found in context"))
			return
		}
		callerRole := GetRole(c)
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		abort(c, apperr.Forbidden("access denied, required role(s): %s", rolesString(roles)))
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err.Code), gin.H{
		"code":   err.Code,
		"error":  err.Message,
		"errors": err.Messages(),
	})
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(ctxRole))
}

// Actor is the service-level identity of the caller.
func Actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: GetUserID(c), Role: GetRole(c)}
}

// SetTokenCookie stores the session token for browser clients.
func (a *Auth) SetTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookie, token, int(a.ttl.Seconds()), "/", "", gin.Mode() == gin.ReleaseMode, true)
}

func ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookie, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)
}
