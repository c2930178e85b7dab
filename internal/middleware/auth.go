package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"repairshop/internal/model"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

var errInvalidClaims = errors.New("invalid token claims")

// JWTSecret returns the signing secret, refusing to start in release mode without one
func JWTSecret(secret string, release bool) []byte {
	if secret == "" {
		if release {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only
	}
	return []byte(secret)
}

// SetTokenCookie stores the access token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, release bool) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if release {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", token, int(ttl.Seconds()), "/", "", secure, true)
}

// Authenticator validates access tokens and exposes the caller identity
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// ParseToken verifies an HS256 token and extracts {id, tenantId, role}
func (a *Authenticator) ParseToken(tokenString string) (model.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Identity{}, errInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, errInvalidClaims
	}
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return model.Identity{}, errInvalidClaims
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return model.Identity{}, errInvalidClaims
	}

	identity := model.Identity{ID: uint(id), Role: role}
	if tenant, ok := claims["tenantId"].(float64); ok && tenant > 0 {
		tenantID := uint(tenant)
		identity.TenantID = &tenantID
	}
	return identity, nil
}

// Authenticate requires a valid token: cookie first, then the Authorization
// header, then the "token" query parameter (websocket upgrades).
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, response.MsgNoToken))
			return
		}

		identity, err := a.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, response.MsgInvalidToken))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, true
	}
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if tokenString := c.Query("token"); tokenString != "" {
		return tokenString, true
	}
	return "", false
}

// RequireRole lets through callers whose token role is in allowedRoles.
// It must run after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, response.MsgNoToken))
			return
		}

		for _, role := range allowedRoles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, response.MsgForbidden))
	}
}

// CurrentIdentity returns the caller set by Authenticate
func CurrentIdentity(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}
