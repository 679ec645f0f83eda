package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/carecircle/carecircle-api/internal/errors"
	"github.com/carecircle/carecircle-api/internal/store"
)

type UserHandler struct {
	store *store.UserStore
}

func NewUserHandler(s *store.UserStore) *UserHandler {
	return &UserHandler{store: s}
}

// ListUsers returns the family roster.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.store.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
