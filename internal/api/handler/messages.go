package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sociogo/backend/internal/config"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type sendDirectBody struct {
	ReceiverID    uint   `json:"receiver_id"`
	ReceiverEmail string `json:"receiver_email"`
	Text          string `json:"text" binding:"required"`
}

// SendDirectMessage is the acknowledgement path for direct messages: the
// response carries the same durable ID as the room broadcast, so clients can
// reconcile an optimistic local echo either way.
func (h *Handler) SendDirectMessage(c *gin.Context) {
	var body sendDirectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiverID := body.ReceiverID
	if receiverID == 0 && body.ReceiverEmail != "" {
		user, err := h.Storage.GetUserByEmail(body.ReceiverEmail)
		if err != nil {
			abortWithError(c, err)
			return
		}
		receiverID = user.ID
	}

	desc, err := h.Dispatcher.SendDirect(c.Request.Context(), currentUserID(c), receiverID, body.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, desc)
}

// GetDirectHistory returns one page of the caller's conversation with
// :peerID, newest first, served through the cache-aside manager. The cursor
// is the smallest message ID of the previous page ("before" query param).
func (h *Handler) GetDirectHistory(c *gin.Context) {
	peerID, ok := pathID(c, "peerID")
	if !ok {
		return
	}
	before := cursorParam(c)

	pairKey := models.DirectRoomKey(currentUserID(c), peerID)
	cacheKey := storage.DirectHistoryKey(pairKey, before, config.HistoryPageSize)

	data, err := h.Cache.GetHistory(c.Request.Context(), cacheKey, func() ([]byte, error) {
		history, err := h.Storage.GetDirectHistory(pairKey, before, config.HistoryPageSize)
		if err != nil {
			return nil, err
		}
		return json.Marshal(history)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func cursorParam(c *gin.Context) uint {
	before, _ := strconv.ParseUint(c.Query("before"), 10, 64)
	return uint(before)
}
