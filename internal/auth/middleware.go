package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequirePrincipal rejects requests without a principal of one of the given
// kinds. With no kinds, any principal is accepted. Lookup failures other
// than ErrUnauthenticated answer 500.
func RequirePrincipal(lookup PrincipalLookup, kinds ...Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := lookup.CurrentPrincipal(c.Request)
		if err != nil && !errors.Is(err, ErrUnauthenticated) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if len(kinds) > 0 && !allowed(p.Kind, kinds) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequirePrincipal.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func allowed(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
