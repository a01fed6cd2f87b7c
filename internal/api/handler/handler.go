package handler

import (
	"errors"
	"net/http"

	"sociogo/backend/internal/apperrors"
	"sociogo/backend/internal/chathub"
	"sociogo/backend/internal/friends"
	"sociogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler містить залежності HTTP-шару.
type Handler struct {
	Hub        *chathub.Hub
	Dispatcher *chathub.DispatcherService
	Friends    *friends.Service
	Storage    storage.Storage
	Cache      *storage.HistoryCache
	JWTSecret  []byte
}

func NewHandler(hub *chathub.Hub, dispatcher *chathub.DispatcherService, friendsSvc *friends.Service, s storage.Storage, cache *storage.HistoryCache, jwtSecret []byte) *Handler {
	return &Handler{
		Hub:        hub,
		Dispatcher: dispatcher,
		Friends:    friendsSvc,
		Storage:    s,
		Cache:      cache,
		JWTSecret:  jwtSecret,
	}
}

// abortWithError maps the shared error taxonomy onto HTTP status codes in
// one place.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// currentUserID returns the authenticated user set by AuthRequired.
func currentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}
