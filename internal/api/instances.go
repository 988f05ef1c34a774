package api

import (
	"net/http"
	"time"

	"chart-studio/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type instancePayload struct {
	TemplateID  uint           `json:"templateId"`
	Symbol      string         `json:"symbol" binding:"required"`
	Timeframe   string         `json:"timeframe" binding:"required"`
	Elements    datatypes.JSON `json:"elements"`
	PolygonData datatypes.JSON `json:"polygonData"`
}

// ListInstances returns the caller's chart instances.
func (h *APIHandler) ListInstances(c *gin.Context) {
	var instances []models.ChartInstance
	query := h.db.Order("updated_at DESC")
	if userID := requesterUserID(c); userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Find(&instances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instances"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instances": instances, "count": len(instances)})
}

func (h *APIHandler) CreateInstance(c *gin.Context) {
	var payload instancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.TemplateID != 0 {
		var count int64
		if err := h.db.Model(&models.ChartTemplate{}).Where("id = ?", payload.TemplateID).Count(&count).Error; err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Template not found"})
			return
		}
	}

	instance := models.ChartInstance{
		UserID:      requesterUserID(c),
		TemplateID:  payload.TemplateID,
		Symbol:      payload.Symbol,
		Timeframe:   payload.Timeframe,
		Elements:    payload.Elements,
		PolygonData: payload.PolygonData,
	}
	if len(payload.PolygonData) > 0 {
		now := time.Now()
		instance.LastDataUpdate = &now
	}
	if err := h.db.Create(&instance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create instance"})
		return
	}
	c.JSON(http.StatusCreated, instance)
}

func (h *APIHandler) GetInstance(c *gin.Context) {
	var instance models.ChartInstance
	if err := h.db.First(&instance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (h *APIHandler) UpdateInstance(c *gin.Context) {
	var instance models.ChartInstance
	if err := h.db.First(&instance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	if instance.UserID != 0 && instance.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the instance owner"})
		return
	}

	var payload instancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance.Symbol = payload.Symbol
	instance.Timeframe = payload.Timeframe
	instance.Elements = payload.Elements
	if payload.TemplateID != 0 {
		instance.TemplateID = payload.TemplateID
	}
	if len(payload.PolygonData) > 0 {
		instance.PolygonData = payload.PolygonData
		now := time.Now()
		instance.LastDataUpdate = &now
	}
	if err := h.db.Save(&instance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update instance"})
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (h *APIHandler) DeleteInstance(c *gin.Context) {
	var instance models.ChartInstance
	if err := h.db.First(&instance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	if instance.UserID != 0 && instance.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the instance owner"})
		return
	}
	if err := h.db.Delete(&instance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete instance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Instance deleted"})
}
