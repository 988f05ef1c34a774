package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"chart-studio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var fontFormats = map[string]bool{"woff": true, "woff2": true, "ttf": true, "otf": true}

var logoMimeTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/svg+xml": true,
}

// issueUpload creates a pending upload slot and returns its PUT target.
func (h *APIHandler) issueUpload(c *gin.Context, contentType string) {
	token := uuid.NewString()
	upload := models.Upload{
		Token:       token,
		UserID:      requesterUserID(c),
		ContentType: contentType,
	}
	if err := h.db.Create(&upload).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": "/api/uploads/" + token,
		"token":     token,
	})
}

func (h *APIHandler) RequestFontUpload(c *gin.Context) {
	h.issueUpload(c, "font/ttf")
}

func (h *APIHandler) RequestLogoUpload(c *gin.Context) {
	h.issueUpload(c, "image/png")
}

// ReceiveUpload stores the binary body against a previously issued token.
func (h *APIHandler) ReceiveUpload(c *gin.Context) {
	var upload models.Upload
	if err := h.db.Where("token = ?", c.Param("token")).First(&upload).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown upload token"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Upload exceeds %d bytes", h.maxUpload)})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty upload"})
		return
	}

	upload.Data = data
	if ct := c.ContentType(); ct != "" {
		upload.ContentType = ct
	}
	if err := h.db.Save(&upload).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": upload.Token, "size": len(data)})
}

// consumeUpload fetches a completed upload's bytes and deletes the slot.
func (h *APIHandler) consumeUpload(token string) ([]byte, string, error) {
	var upload models.Upload
	if err := h.db.Where("token = ?", token).First(&upload).Error; err != nil {
		return nil, "", fmt.Errorf("unknown upload token")
	}
	if len(upload.Data) == 0 {
		return nil, "", fmt.Errorf("upload has no data")
	}
	if err := h.db.Delete(&upload).Error; err != nil {
		return nil, "", err
	}
	return upload.Data, upload.ContentType, nil
}

func (h *APIHandler) ListFonts(c *gin.Context) {
	var fonts []models.CustomFont
	if err := h.db.Order("created_at DESC").Find(&fonts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fonts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fonts": fonts, "count": len(fonts)})
}

type fontPayload struct {
	Name   string `json:"name" binding:"required"`
	Family string `json:"family"`
	Format string `json:"format" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

// CreateFont registers an uploaded binary as a usable font.
func (h *APIHandler) CreateFont(c *gin.Context) {
	var payload fontPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := strings.ToLower(payload.Format)
	if !fontFormats[format] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported font format: " + payload.Format})
		return
	}

	data, _, err := h.consumeUpload(payload.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family := payload.Family
	if family == "" {
		family = payload.Name
	}
	font := models.CustomFont{
		UserID: requesterUserID(c),
		Name:   payload.Name,
		Family: family,
		Format: format,
		Data:   data,
	}
	if err := h.db.Create(&font).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register font"})
		return
	}
	c.JSON(http.StatusCreated, font)
}

// ServeFont streams the font binary with a long cache lifetime. Font files
// are immutable once registered.
func (h *APIHandler) ServeFont(c *gin.Context) {
	var font models.CustomFont
	if err := h.db.First(&font, c.Param("fontId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Font not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, "font/"+font.Format, font.Data)
}

// GetFont returns font metadata; the binary is served from /fonts/:fontId.
func (h *APIHandler) GetFont(c *gin.Context) {
	var font models.CustomFont
	if err := h.db.First(&font, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Font not found"})
		return
	}
	c.JSON(http.StatusOK, font)
}

func (h *APIHandler) DeleteFont(c *gin.Context) {
	var font models.CustomFont
	if err := h.db.First(&font, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Font not found"})
		return
	}
	if font.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the font owner"})
		return
	}
	if err := h.db.Delete(&font).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete font"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Font deleted"})
}

func (h *APIHandler) ListLogos(c *gin.Context) {
	var logos []models.CustomLogo
	if err := h.db.Order("created_at DESC").Find(&logos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logos": logos, "count": len(logos)})
}

type logoPayload struct {
	Name  string `json:"name" binding:"required"`
	Token string `json:"token" binding:"required"`
}

func (h *APIHandler) CreateLogo(c *gin.Context) {
	var payload logoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, contentType, err := h.consumeUpload(payload.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !logoMimeTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported logo type: " + contentType})
		return
	}

	logo := models.CustomLogo{
		UserID:   requesterUserID(c),
		Name:     payload.Name,
		MimeType: contentType,
		Data:     data,
	}
	if err := h.db.Create(&logo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register logo"})
		return
	}
	c.JSON(http.StatusCreated, logo)
}

// GetLogo returns logo metadata; the binary is served from /logos/:logoId.
func (h *APIHandler) GetLogo(c *gin.Context) {
	var logo models.CustomLogo
	if err := h.db.First(&logo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logo not found"})
		return
	}
	c.JSON(http.StatusOK, logo)
}

func (h *APIHandler) ServeLogo(c *gin.Context) {
	var logo models.CustomLogo
	if err := h.db.First(&logo, c.Param("logoId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logo not found"})
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, logo.MimeType, logo.Data)
}

func (h *APIHandler) DeleteLogo(c *gin.Context) {
	var logo models.CustomLogo
	if err := h.db.First(&logo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logo not found"})
		return
	}
	if logo.UserID != requesterUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the logo owner"})
		return
	}
	if err := h.db.Delete(&logo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete logo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logo deleted"})
}
