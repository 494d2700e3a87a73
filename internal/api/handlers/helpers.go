package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/auth"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/store"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var bad errBadRequest
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSessionNotFound),
		errors.Is(err, game.ErrItemNotFound),
		errors.Is(err, store.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotInLayoutMode),
		errors.Is(err, game.ErrNotInPlayMode),
		errors.Is(err, game.ErrItemOverlaps),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrDuplicateBaffle),
		errors.Is(err, game.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, game.ErrMalformedLayout),
		errors.Is(err, game.ErrSchemaMismatch),
		errors.Is(err, game.ErrUnknownItemKind),
		errors.Is(err, game.ErrNotPlaceable),
		errors.Is(err, store.ErrEmptyName),
		errors.Is(err, auth.ErrEmptyEditKey):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEditKeyMismatch):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected errors are logged
// and hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseItem parses the :item path parameter. Ids that are not uuids name
// no item.
func parseItem(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("item"))
	if err != nil {
		return uuid.Nil, game.ErrItemNotFound
	}
	return id, nil
}
