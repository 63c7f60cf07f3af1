package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally/internal/models"
)

const (
	// ActorKey is the gin context key holding the *models.Actor.
	ActorKey = "actor"

	// ActorIDHeader and ActorEmailHeader are set by the upstream gateway.
	ActorIDHeader    = "X-Actor-Id"
	ActorEmailHeader = "X-Actor-Email"
)

// Actor reads the gateway-supplied actor headers. Requests without them
// carry no actor and their audit entries record a null actor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := &models.Actor{
			ID:    strings.TrimSpace(c.GetHeader(ActorIDHeader)),
			Email: strings.TrimSpace(c.GetHeader(ActorEmailHeader)),
		}

		if !actor.IsZero() {
			c.Set(ActorKey, actor)
		}

		c.Next()
	}
}

// ActorFrom returns the request actor, or nil when none was supplied.
func ActorFrom(c *gin.Context) *models.Actor {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil
	}

	actor, _ := v.(*models.Actor)

	return actor
}
