package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"traveldesk/internal/model"
	"traveldesk/internal/travel"
	"traveldesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserID        = "userID"
	ContextUserRole      = "userRole"
	ContextEffectiveRole = "effectiveRole"
	ContextUser          = "currentUser"
)

// Claims are the bearer token claims. Subject carries the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserLookup loads the user behind a verified token.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Auth verifies HMAC bearer tokens issued by the company identity provider.
// Roles come from the users table, not from the token, so role changes and
// admin impersonation take effect without re-issuing tokens.
type Auth struct {
	secret []byte
	users  UserLookup
}

func NewAuth(secret []byte, users UserLookup) *Auth {
	return &Auth{secret: secret, users: users}
}

// ParseToken validates the signature and expiry and returns the claims.
func (a *Auth) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IssueToken mints a token for local development and tests.
func (a *Auth) IssueToken(userID uuid.UUID, role travel.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate resolves the caller from a token and loads their user row.
func (a *Auth) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := a.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid subject claim")
	}
	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("unknown user")
	}
	return user, nil
}

// RequireRole validates the token and checks the caller's effective role
// against allowedRoles. With no roles any authenticated user passes.
func (a *Auth) RequireRole(allowedRoles ...travel.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		user, err := a.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		effective := travel.ResolveEffectiveRole(user.Principal())
		if len(allowedRoles) > 0 && !containsRole(allowedRoles, effective) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextEffectiveRole, effective)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// CurrentUser returns the user stored by RequireRole.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// EffectiveRole returns the role the caller acts as for this request.
func EffectiveRole(c *gin.Context) travel.Role {
	v, _ := c.Get(ContextEffectiveRole)
	role, _ := v.(travel.Role)
	return role
}

// bearerToken reads the access_token cookie, falling back to the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, true
	}
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func containsRole(roles []travel.Role, r travel.Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}
