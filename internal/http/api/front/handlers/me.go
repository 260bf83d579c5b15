package handlers

import (
	"net/http"

	"github.com/brainpace/brainpace/internal/store"
	"github.com/gin-gonic/gin"
)

// MeHandler serves the current account.
type MeHandler struct {
	users store.UserStore
}

// NewMeHandler constructs a MeHandler.
func NewMeHandler(users store.UserStore) *MeHandler {
	return &MeHandler{users: users}
}

// Get returns the current user.
func (h *MeHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// Delete removes the current user and all of their data.
func (h *MeHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
