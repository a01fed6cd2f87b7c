package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/config"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createGroupBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MemberIDs   []uint `json:"member_ids"`
}

type addMembersBody struct {
	MemberIDs []uint `json:"member_ids" binding:"required"`
}

type sendGroupBody struct {
	Text string `json:"text" binding:"required"`
}

// CreateGroup creates a group atomically with its initial member set. The
// creator is always a member regardless of the submitted list.
func (h *Handler) CreateGroup(c *gin.Context) {
	var body createGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creatorID := currentUserID(c)
	seen := map[uint]struct{}{creatorID: {}}
	members := []models.GroupMember{{UserID: creatorID}}
	for _, id := range body.MemberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, models.GroupMember{UserID: id})
	}

	group := &models.Group{
		Name:        body.Name,
		Description: body.Description,
		CreatorID:   creatorID,
		Members:     members,
	}
	if err := h.Storage.CreateGroup(group); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// AddGroupMembers appends members. Membership is append-only: there is no
// removal endpoint. Only an existing member may invite.
func (h *Handler) AddGroupMembers(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body addMembersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Storage.IsGroupMember(groupID, currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !member {
		abortWithError(c, fmt.Errorf("%w: not a member of group %d", apperrors.ErrForbidden, groupID))
		return
	}

	if err := h.Storage.AddGroupMembers(groupID, body.MemberIDs); err != nil {
		abortWithError(c, err)
		return
	}

	// Склад групи змінився — головна сторінка історії могла кешуватись для
	// нових учасників ще до їх додавання.
	h.Cache.Invalidate(storage.GroupHistoryKey(groupID, 0, config.HistoryPageSize))

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.Storage.ListGroupsForUser(currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// SendGroupMessage is the acknowledgement path for group messages.
func (h *Handler) SendGroupMessage(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body sendGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	desc, err := h.Dispatcher.SendGroup(c.Request.Context(), currentUserID(c), groupID, body.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, desc)
}

// GetGroupHistory returns one page of a group conversation. Members only.
func (h *Handler) GetGroupHistory(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	member, err := h.Storage.IsGroupMember(groupID, currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !member {
		abortWithError(c, fmt.Errorf("%w: not a member of group %d", apperrors.ErrForbidden, groupID))
		return
	}

	before := cursorParam(c)
	cacheKey := storage.GroupHistoryKey(groupID, before, config.HistoryPageSize)

	data, err := h.Cache.GetHistory(c.Request.Context(), cacheKey, func() ([]byte, error) {
		history, err := h.Storage.GetGroupHistory(groupID, before, config.HistoryPageSize)
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
