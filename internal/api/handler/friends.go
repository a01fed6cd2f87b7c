package handler

import (
	"net/http"
	"strconv"

	"sociogo/backend/internal/config"

	"github.com/gin-gonic/gin"
)

type friendRequestBody struct {
	TargetID uint `json:"target_id" binding:"required"`
}

// SendFriendRequest creates a PENDING friendship toward target_id.
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.Friends.Request(c.Request.Context(), currentUserID(c), body.TargetID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// AcceptFriendRequest — тільки адресат може прийняти запит.
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	f, err := h.Friends.Accept(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// RejectFriendRequest deletes a pending request addressed to the caller.
func (h *Handler) RejectFriendRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Friends.Reject(c.Request.Context(), id, currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelFriendRequest deletes a pending request sent by the caller.
func (h *Handler) CancelFriendRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Friends.Cancel(c.Request.Context(), id, currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListFriends(c *gin.Context) {
	users, err := h.Friends.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": users})
}

func (h *Handler) ListPendingReceived(c *gin.Context) {
	rows, err := h.Friends.ListPendingReceived(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": rows})
}

func (h *Handler) ListPendingSent(c *gin.Context) {
	rows, err := h.Friends.ListPendingSent(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": rows})
}

func (h *Handler) ListSuggestions(c *gin.Context) {
	users, err := h.Friends.ListSuggestions(c.Request.Context(), currentUserID(c), config.SuggestionLimit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": users})
}

// pathID parses a numeric :param, replying 400 on garbage.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
