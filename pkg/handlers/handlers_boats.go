package handlers

import (
	"net/http"

	"github.com/arnavshah/crew-planner-api/pkg/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// ListBoats returns the stored fleet
func (h *Handler) ListBoats(c *gin.Context) {
	var boats []database.Boat
	if err := h.DB.Order("id asc").Find(&boats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list boats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boats": boats})
}

// UpsertBoat creates or replaces a boat definition and its available count
func (h *Handler) UpsertBoat(c *gin.Context) {
	var req struct {
		Label       string `json:"label"`
		Capacity    int    `json:"capacity" binding:"required"`
		IsStable    bool   `json:"is_stable"`
		MinSkippers int    `json:"min_skippers"`
		Available   int    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Capacity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
		return
	}
	if req.MinSkippers < 0 || req.Available < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_skippers and available cannot be negative"})
		return
	}

	boat := database.Boat{
		Slug:        c.Param("slug"),
		Label:       req.Label,
		Capacity:    req.Capacity,
		IsStable:    req.IsStable,
		MinSkippers: req.MinSkippers,
		Available:   req.Available,
	}
	if boat.Label == "" {
		boat.Label = boat.Slug
	}

	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "capacity", "is_stable", "min_skippers", "available", "updated_at"}),
	}).Create(&boat).Error
	if err != nil {
		h.Logger.Error("could not save boat", zap.String("slug", boat.Slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save boat"})
		return
	}

	h.DB.Where("slug = ?", boat.Slug).First(&boat)
	c.JSON(http.StatusOK, gin.H{"boat": boat})
}

// DeleteBoat removes a boat definition from the fleet
func (h *Handler) DeleteBoat(c *gin.Context) {
	res := h.DB.Where("slug = ?", c.Param("slug")).Delete(&database.Boat{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete boat"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boat not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Boat removed"})
}
