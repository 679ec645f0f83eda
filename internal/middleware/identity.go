package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/carecircle/carecircle-api/internal/authz"
	apierrors "github.com/carecircle/carecircle-api/internal/errors"
	"github.com/carecircle/carecircle-api/internal/models"
	"github.com/carecircle/carecircle-api/internal/store"
)

const (
	// HeaderUserID carries the acting user's id. The admin surface trusts
	// the network boundary; there is no credential check here.
	HeaderUserID = "X-User-Id"

	// DefaultActorID is assumed when the header is absent, matching the
	// single-parent console that predates multi-user support.
	DefaultActorID = "owner"

	actorIDKey   = "actorID"
	actorRoleKey = "actorRole"
)

// Identity resolves the acting user from the X-User-Id header and stashes
// id and role on the request context. Ids not present in the roster keep
// working with Owner privileges so an out-of-date roster never locks the
// parent console out.
func Identity(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderUserID)
		if id == "" {
			id = DefaultActorID
		}

		role := models.RoleOwner
		if user, err := users.Find(id); err == nil {
			role = user.Role
		}

		c.Set(actorIDKey, id)
		c.Set(actorRoleKey, role)
		c.Next()
	}
}

// ActorID returns the acting user's id set by Identity.
func ActorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}

// ActorRole returns the acting user's role set by Identity.
func ActorRole(c *gin.Context) models.Role {
	if v, ok := c.Get(actorRoleKey); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleOwner
}

// RequirePermission aborts with 403 when the actor's role does not allow
// the action. Must run after Identity.
func RequirePermission(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.Allows(ActorRole(c), action) {
			apierrors.Forbidden(c, "Your role does not allow this action")
			c.Abort()
			return
		}
		c.Next()
	}
}
