package api

import (
	"net/http"

	"chart-studio/internal/models"

	"github.com/gin-gonic/gin"
)

var presetFormats = map[string]bool{"png": true, "svg": true, "pdf": true}
var presetDPIs = map[int]bool{72: true, 150: true, 300: true}

type presetPayload struct {
	Name   string `json:"name" binding:"required"`
	Format string `json:"format" binding:"required"`
	DPI    int    `json:"dpi"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (p *presetPayload) validate() string {
	if !presetFormats[p.Format] {
		return "Format must be png, svg or pdf"
	}
	if p.DPI == 0 {
		p.DPI = 72
	}
	if !presetDPIs[p.DPI] {
		return "DPI must be 72, 150 or 300"
	}
	if p.Width < 0 || p.Height < 0 {
		return "Dimensions must be positive"
	}
	return ""
}

func (h *APIHandler) ListExportPresets(c *gin.Context) {
	var presets []models.ExportPreset
	query := h.db.Order("name ASC")
	if userID := requesterUserID(c); userID != 0 {
		query = query.Where("user_id = ? OR user_id = 0", userID)
	}
	if err := query.Find(&presets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch presets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets, "count": len(presets)})
}

func (h *APIHandler) CreateExportPreset(c *gin.Context) {
	var payload presetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := payload.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	preset := models.ExportPreset{
		UserID: requesterUserID(c),
		Name:   payload.Name,
		Format: payload.Format,
		DPI:    payload.DPI,
		Width:  payload.Width,
		Height: payload.Height,
	}
	if err := h.db.Create(&preset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create preset"})
		return
	}
	c.JSON(http.StatusCreated, preset)
}

func (h *APIHandler) UpdateExportPreset(c *gin.Context) {
	var preset models.ExportPreset
	if err := h.db.First(&preset, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return
	}
	if preset.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the preset owner"})
		return
	}

	var payload presetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := payload.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	preset.Name = payload.Name
	preset.Format = payload.Format
	preset.DPI = payload.DPI
	preset.Width = payload.Width
	preset.Height = payload.Height
	if err := h.db.Save(&preset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preset"})
		return
	}
	c.JSON(http.StatusOK, preset)
}

func (h *APIHandler) DeleteExportPreset(c *gin.Context) {
	var preset models.ExportPreset
	if err := h.db.First(&preset, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return
	}
	if preset.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the preset owner"})
		return
	}
	if err := h.db.Delete(&preset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete preset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preset deleted"})
}
