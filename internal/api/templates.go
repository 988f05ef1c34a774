package api

import (
	"net/http"
	"strconv"

	"chart-studio/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// requesterUserID parses the X-User-ID header; 0 means anonymous.
func requesterUserID(c *gin.Context) uint {
	id, err := strconv.ParseUint(requesterID(c), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

type templatePayload struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Config      datatypes.JSON `json:"config"`
	Elements    datatypes.JSON `json:"elements"`
	IsPublic    bool           `json:"isPublic"`
}

// ListTemplates returns public templates plus the caller's own.
func (h *APIHandler) ListTemplates(c *gin.Context) {
	userID := requesterUserID(c)

	var templates []models.ChartTemplate
	query := h.db.Order("updated_at DESC")
	if userID != 0 {
		query = query.Where("is_public = ? OR user_id = ?", true, userID)
	} else {
		query = query.Where("is_public = ?", true)
	}
	if err := query.Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

func (h *APIHandler) CreateTemplate(c *gin.Context) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := models.ChartTemplate{
		UserID:      requesterUserID(c),
		Name:        payload.Name,
		Description: payload.Description,
		Config:      payload.Config,
		Elements:    payload.Elements,
		IsPublic:    payload.IsPublic,
	}
	if err := h.db.Create(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *APIHandler) GetTemplate(c *gin.Context) {
	var template models.ChartTemplate
	if err := h.db.First(&template, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	if !template.IsPublic && template.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Template is private"})
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *APIHandler) UpdateTemplate(c *gin.Context) {
	var template models.ChartTemplate
	if err := h.db.First(&template, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	if template.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the template owner"})
		return
	}

	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template.Name = payload.Name
	template.Description = payload.Description
	template.Config = payload.Config
	template.Elements = payload.Elements
	template.IsPublic = payload.IsPublic
	if err := h.db.Save(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *APIHandler) DeleteTemplate(c *gin.Context) {
	var template models.ChartTemplate
	if err := h.db.First(&template, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	if template.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the template owner"})
		return
	}
	if err := h.db.Delete(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// ListTemplateInstances returns all chart instances derived from a template.
func (h *APIHandler) ListTemplateInstances(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	var count int64
	if err := h.db.Model(&models.ChartTemplate{}).Where("id = ?", templateID).Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	var instances []models.ChartInstance
	if err := h.db.Where("template_id = ?", templateID).Order("updated_at DESC").Find(&instances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instances"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instances": instances, "count": len(instances)})
}
