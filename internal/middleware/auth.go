package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/jwt"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// userKey is the per-request context key for the resolved identity. Carrying
// the snapshot in the request context keeps concurrent requests isolated.
const userKey = "current_user"

// RequireUser authenticates the bearer token and stores the embedded user
// snapshot in the request context. The snapshot is the user as it existed at
// token issuance; role changes apply on the next login.
func RequireUser(tokens *jwt.Manager, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			httputil.Fail(c, errors.ErrSignInFailure)
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			log.Warn("token validation failed",
				logger.String("request_id", httputil.GetRequestID(c)),
				logger.Err(err),
			)
			httputil.Fail(c, errors.ErrSignInFailure)
			return
		}

		user := userFromClaims(claims)
		if user == nil {
			httputil.Fail(c, errors.ErrUserParseError)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by RequireUser.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func userFromClaims(claims *jwt.Claims) *domain.User {
	if claims.UserID == "" || claims.Username == "" {
		return nil
	}
	return &domain.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     domain.RoleFromValue(claims.Role),
	}
}
