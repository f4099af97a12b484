package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openclinic/intake-api/internal/handler"
	"github.com/openclinic/intake-api/internal/model"
)

const identityKey = "identity"

// Authenticate validates the identity assertion header and sets the
// caller identity in the request context. The assertion is the literal
// string "<userId>:<role>". The role is taken from the assertion as-is
// and is not resolved against the credential store; a hardened
// deployment would replace this with a server-side session lookup.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		assertion := c.GetHeader("Authorization")
		if assertion == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		identity, ok := parseAssertion(assertion)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization header"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose asserted role does
// not match role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}
		if identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role"))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the caller identity set by Authenticate.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

func parseAssertion(assertion string) (model.Identity, bool) {
	idPart, role, found := strings.Cut(assertion, ":")
	if !found || role == "" {
		return model.Identity{}, false
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return model.Identity{}, false
	}

	return model.Identity{UserID: id, Role: role}, true
}
