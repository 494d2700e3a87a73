package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/models"
	"github.com/playmatatu/gizmoball/internal/store"
)

type saveLayoutRequest struct {
	Name    string          `json:"name"`
	Tags    []string        `json:"tags"`
	EditKey string          `json:"edit_key"`
	Items   json.RawMessage `json:"items" binding:"required"`
}

func writeLayout(c *gin.Context, status int, l *models.Layout) {
	c.Header("ETag", strconv.Quote(l.Checksum))
	c.JSON(status, l)
}

// ListLayouts returns saved layouts without their items.
func ListLayouts(repo store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		layouts, err := repo.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"layouts": layouts})
	}
}

func SaveLayout(repo store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveLayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, edit_key and items required"})
			return
		}
		items, err := game.DecodeLayout(req.Items)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		l, err := repo.Save(c.Request.Context(), req.Name, items, req.Tags, req.EditKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		writeLayout(c, http.StatusCreated, l)
	}
}

// GetLayout honours If-None-Match against the layout checksum.
func GetLayout(repo store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := repo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if c.GetHeader("If-None-Match") == strconv.Quote(l.Checksum) {
			c.Status(http.StatusNotModified)
			return
		}
		writeLayout(c, http.StatusOK, l)
	}
}

// OverwriteLayout replaces a layout's items. The edit key comes from the body
// or the X-Edit-Key header.
func OverwriteLayout(repo store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveLayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "items required"})
			return
		}
		if req.EditKey == "" {
			req.EditKey = c.GetHeader("X-Edit-Key")
		}
		items, err := game.DecodeLayout(req.Items)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		l, err := repo.Overwrite(c.Request.Context(), c.Param("id"), items, req.EditKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		writeLayout(c, http.StatusOK, l)
	}
}
