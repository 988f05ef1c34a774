package api

import (
	"log"
	"net/http"

	"chart-studio/internal/services/polygon"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIHandler holds the shared dependencies of all HTTP handlers.
type APIHandler struct {
	db        *gorm.DB
	stocks    *polygon.Service
	hub       *Hub
	maxUpload int64
}

func NewAPIHandler(db *gorm.DB, stocks *polygon.Service, hub *Hub, maxUpload int64) *APIHandler {
	return &APIHandler{db: db, stocks: stocks, hub: hub, maxUpload: maxUpload}
}

// SetupRoutes registers all API routes on the router.
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/fonts/:fontId", h.ServeFont)
	router.GET("/logos/:logoId", h.ServeLogo)
	router.GET("/ws", h.HandleWS)

	api := router.Group("/api")
	{
		api.GET("/stocks/:symbol/:timeframe", h.GetStockData)
		api.GET("/stocks/:symbol/:timeframe/export", h.ExportStockData)
		api.POST("/cache/clear", h.ClearCache)

		api.GET("/templates", h.ListTemplates)
		api.POST("/templates", h.CreateTemplate)
		api.GET("/templates/:id", h.GetTemplate)
		api.PUT("/templates/:id", h.UpdateTemplate)
		api.DELETE("/templates/:id", h.DeleteTemplate)
		api.GET("/templates/:id/instances", h.ListTemplateInstances)

		api.GET("/instances", h.ListInstances)
		api.POST("/instances", h.CreateInstance)
		api.GET("/instances/:id", h.GetInstance)
		api.PUT("/instances/:id", h.UpdateInstance)
		api.DELETE("/instances/:id", h.DeleteInstance)

		api.GET("/fonts", h.ListFonts)
		api.POST("/fonts", h.CreateFont)
		api.POST("/fonts/upload", h.RequestFontUpload)
		api.GET("/fonts/:id", h.GetFont)
		api.DELETE("/fonts/:id", h.DeleteFont)

		api.GET("/logos", h.ListLogos)
		api.POST("/logos", h.CreateLogo)
		api.POST("/logos/upload", h.RequestLogoUpload)
		api.GET("/logos/:id", h.GetLogo)
		api.DELETE("/logos/:id", h.DeleteLogo)

		api.PUT("/uploads/:token", h.ReceiveUpload)

		api.GET("/export-presets", h.ListExportPresets)
		api.POST("/export-presets", h.CreateExportPreset)
		api.PUT("/export-presets/:id", h.UpdateExportPreset)
		api.DELETE("/export-presets/:id", h.DeleteExportPreset)
	}
}

// requesterID reads the caller identity set by the auth proxy. Empty when the
// request is anonymous.
func requesterID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// GetStockData returns bars for one symbol or a merged multi-symbol series.
// Symbols may be separated by commas or spaces.
func (h *APIHandler) GetStockData(c *gin.Context) {
	symbolParam := c.Param("symbol")
	timeframe := c.Param("timeframe")

	symbols := polygon.SplitSymbols(symbolParam)
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No symbol provided"})
		return
	}

	var bars []polygon.Bar
	var err error
	if len(symbols) == 1 {
		bars, err = h.stocks.GetBars(symbols[0], timeframe)
	} else {
		bars, err = h.stocks.GetMultiBars(symbols, timeframe)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(gin.H{
			"type":      "data-refresh",
			"symbols":   symbols,
			"timeframe": timeframe,
			"bars":      len(bars),
		})
	}

	// the client consumes a bare time-sorted array
	c.JSON(http.StatusOK, bars)
}

// ClearCache drops expired market data cache rows.
func (h *APIHandler) ClearCache(c *gin.Context) {
	removed, err := h.stocks.ClearExpired()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}
	log.Printf("Cleared %d expired cache entries", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
