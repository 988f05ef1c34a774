package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chart-studio/internal/database"
	"chart-studio/internal/models"
	"chart-studio/internal/services/polygon"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	stocks := polygon.NewService("", time.Hour, db)
	handler := NewAPIHandler(db, stocks, nil, 1<<20)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeBars(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGetStockDataSingleSymbol(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/stocks/AAPL/1M", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	bars := decodeBars(t, w)
	require.Len(t, bars, 22)
	for _, bar := range bars {
		// single-symbol bars omit the symbol tag
		assert.NotContains(t, bar, "symbol")
		assert.Contains(t, bar, "close")
		assert.Contains(t, bar, "date")
	}
}

func TestGetStockDataMultiSymbol(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/stocks/AAPL,MSFT/1M", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	bars := decodeBars(t, w)
	require.Len(t, bars, 44)

	prev := float64(0)
	for _, bar := range bars {
		ts := bar["timestamp"].(float64)
		assert.GreaterOrEqual(t, ts, prev)
		prev = ts
		assert.Contains(t, []string{"AAPL", "MSFT"}, bar["symbol"])
	}
}

func TestGetStockDataBadTimeframe(t *testing.T) {
	router, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/api/stocks/AAPL/2W", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheClear(t *testing.T) {
	router, db := newTestServer(t)

	db.Create(&models.MarketDataCache{
		CacheKey:  "stocks:OLD:1M",
		Data:      []byte("[]"),
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	w := doJSON(t, router, http.MethodPost, "/api/cache/clear", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["removed"])
}

func TestTemplateCRUD(t *testing.T) {
	router, _ := newTestServer(t)

	create := doJSON(t, router, http.MethodPost, "/api/templates", "7", gin.H{
		"name":     "Dark Minimal",
		"config":   gin.H{"background": "#131722"},
		"isPublic": true,
	})
	require.Equal(t, http.StatusCreated, create.Code)
	id := decode(t, create)["id"].(float64)

	get := doJSON(t, router, http.MethodGet, "/api/templates/1", "", nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "Dark Minimal", decode(t, get)["name"])

	update := doJSON(t, router, http.MethodPut, "/api/templates/1", "7", gin.H{
		"name":     "Dark Minimal v2",
		"isPublic": true,
	})
	require.Equal(t, http.StatusOK, update.Code)
	assert.Equal(t, "Dark Minimal v2", decode(t, update)["name"])

	list := doJSON(t, router, http.MethodGet, "/api/templates", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(1), decode(t, list)["count"])

	del := doJSON(t, router, http.MethodDelete, "/api/templates/1", "7", nil)
	require.Equal(t, http.StatusOK, del.Code)

	gone := doJSON(t, router, http.MethodGet, "/api/templates/1", "", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)

	_ = id
}

func TestTemplateOwnership(t *testing.T) {
	router, _ := newTestServer(t)

	create := doJSON(t, router, http.MethodPost, "/api/templates", "7", gin.H{
		"name": "Private", "isPublic": false,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	// a stranger cannot read, update or delete a private template
	assert.Equal(t, http.StatusForbidden, doJSON(t, router, http.MethodGet, "/api/templates/1", "9", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, router, http.MethodPut, "/api/templates/1", "9", gin.H{"name": "Hijack"}).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, router, http.MethodDelete, "/api/templates/1", "9", nil).Code)

	// the private template is hidden from other users' lists
	list := decode(t, doJSON(t, router, http.MethodGet, "/api/templates", "9", nil))
	assert.Equal(t, float64(0), list["count"])

	own := decode(t, doJSON(t, router, http.MethodGet, "/api/templates", "7", nil))
	assert.Equal(t, float64(1), own["count"])
}

func TestInstanceCRUDAndTemplateInstances(t *testing.T) {
	router, _ := newTestServer(t)

	tmpl := doJSON(t, router, http.MethodPost, "/api/templates", "7", gin.H{"name": "Base", "isPublic": true})
	require.Equal(t, http.StatusCreated, tmpl.Code)

	create := doJSON(t, router, http.MethodPost, "/api/instances", "7", gin.H{
		"templateId":  1,
		"symbol":      "AAPL",
		"timeframe":   "1Y",
		"polygonData": []gin.H{{"timestamp": 1000, "close": 10.5}},
	})
	require.Equal(t, http.StatusCreated, create.Code)
	created := decode(t, create)
	assert.NotNil(t, created["lastDataUpdate"])

	get := doJSON(t, router, http.MethodGet, "/api/instances/1", "", nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "AAPL", decode(t, get)["symbol"])

	update := doJSON(t, router, http.MethodPut, "/api/instances/1", "7", gin.H{
		"symbol": "MSFT", "timeframe": "6M",
	})
	require.Equal(t, http.StatusOK, update.Code)
	assert.Equal(t, "MSFT", decode(t, update)["symbol"])

	byTemplate := doJSON(t, router, http.MethodGet, "/api/templates/1/instances", "", nil)
	require.Equal(t, http.StatusOK, byTemplate.Code)
	assert.Equal(t, float64(1), decode(t, byTemplate)["count"])

	missing := doJSON(t, router, http.MethodGet, "/api/templates/99/instances", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	del := doJSON(t, router, http.MethodDelete, "/api/instances/1", "7", nil)
	require.Equal(t, http.StatusOK, del.Code)
}

func TestInstanceRejectsUnknownTemplate(t *testing.T) {
	router, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodPost, "/api/instances", "7", gin.H{
		"templateId": 42, "symbol": "AAPL", "timeframe": "1Y",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadBinary(t *testing.T, router *gin.Engine, userID string, data []byte, contentType string) string {
	t.Helper()
	issue := doJSON(t, router, http.MethodPost, "/api/fonts/upload", userID, nil)
	if contentType != "font/ttf" {
		issue = doJSON(t, router, http.MethodPost, "/api/logos/upload", userID, nil)
	}
	require.Equal(t, http.StatusOK, issue.Code)
	out := decode(t, issue)
	token := out["token"].(string)
	require.True(t, strings.HasSuffix(out["uploadUrl"].(string), token))

	req := httptest.NewRequest(http.MethodPut, "/api/uploads/"+token, bytes.NewReader(data))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return token
}

func TestFontUploadFlow(t *testing.T) {
	router, _ := newTestServer(t)

	token := uploadBinary(t, router, "7", []byte("fake-font-bytes"), "font/ttf")

	create := doJSON(t, router, http.MethodPost, "/api/fonts", "7", gin.H{
		"name": "Inter", "family": "Inter", "format": "ttf", "token": token,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	// binary is served with a long cache lifetime
	serve := doJSON(t, router, http.MethodGet, "/fonts/1", "", nil)
	require.Equal(t, http.StatusOK, serve.Code)
	assert.Equal(t, "font/ttf", serve.Header().Get("Content-Type"))
	assert.Contains(t, serve.Header().Get("Cache-Control"), "max-age=31536000")
	assert.Equal(t, "fake-font-bytes", serve.Body.String())

	// the upload slot is consumed
	reuse := doJSON(t, router, http.MethodPost, "/api/fonts", "7", gin.H{
		"name": "Inter Again", "format": "ttf", "token": token,
	})
	assert.Equal(t, http.StatusBadRequest, reuse.Code)
}

func TestFontDeleteOwnership(t *testing.T) {
	router, _ := newTestServer(t)

	token := uploadBinary(t, router, "7", []byte("fake-font-bytes"), "font/ttf")
	create := doJSON(t, router, http.MethodPost, "/api/fonts", "7", gin.H{
		"name": "Inter", "format": "ttf", "token": token,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	denied := doJSON(t, router, http.MethodDelete, "/api/fonts/1", "9", nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	allowed := doJSON(t, router, http.MethodDelete, "/api/fonts/1", "7", nil)
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestFontRejectsBadFormat(t *testing.T) {
	router, _ := newTestServer(t)
	token := uploadBinary(t, router, "7", []byte("bytes"), "font/ttf")
	w := doJSON(t, router, http.MethodPost, "/api/fonts", "7", gin.H{
		"name": "Weird", "format": "eot", "token": token,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoUploadFlow(t *testing.T) {
	router, _ := newTestServer(t)

	token := uploadBinary(t, router, "7", []byte{0x89, 'P', 'N', 'G'}, "image/png")
	create := doJSON(t, router, http.MethodPost, "/api/logos", "7", gin.H{
		"name": "Brand", "token": token,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	serve := doJSON(t, router, http.MethodGet, "/logos/1", "", nil)
	require.Equal(t, http.StatusOK, serve.Code)
	assert.Equal(t, "image/png", serve.Header().Get("Content-Type"))
	assert.Contains(t, serve.Header().Get("Cache-Control"), "max-age=31536000")

	meta := doJSON(t, router, http.MethodGet, "/api/logos/1", "", nil)
	require.Equal(t, http.StatusOK, meta.Code)
	assert.Equal(t, "Brand", decode(t, meta)["name"])

	denied := doJSON(t, router, http.MethodDelete, "/api/logos/1", "9", nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

func TestUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	handler := NewAPIHandler(db, polygon.NewService("", time.Hour, db), nil, 16)
	router := gin.New()
	handler.SetupRoutes(router)

	issue := doJSON(t, router, http.MethodPost, "/api/fonts/upload", "7", nil)
	token := decode(t, issue)["token"].(string)

	req := httptest.NewRequest(http.MethodPut, "/api/uploads/"+token, bytes.NewReader(make([]byte, 64)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadUnknownToken(t *testing.T) {
	router, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPut, "/api/uploads/nope", bytes.NewReader([]byte("x")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportPresetCRUD(t *testing.T) {
	router, _ := newTestServer(t)

	create := doJSON(t, router, http.MethodPost, "/api/export-presets", "7", gin.H{
		"name": "Print", "format": "pdf", "dpi": 300, "width": 3840, "height": 2160,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	bad := doJSON(t, router, http.MethodPost, "/api/export-presets", "7", gin.H{
		"name": "Odd", "format": "gif",
	})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	badDPI := doJSON(t, router, http.MethodPost, "/api/export-presets", "7", gin.H{
		"name": "Odd", "format": "png", "dpi": 96,
	})
	assert.Equal(t, http.StatusBadRequest, badDPI.Code)

	update := doJSON(t, router, http.MethodPut, "/api/export-presets/1", "7", gin.H{
		"name": "Print A3", "format": "pdf", "dpi": 150,
	})
	require.Equal(t, http.StatusOK, update.Code)
	assert.Equal(t, "Print A3", decode(t, update)["name"])

	list := doJSON(t, router, http.MethodGet, "/api/export-presets", "7", nil)
	assert.Equal(t, float64(1), decode(t, list)["count"])

	denied := doJSON(t, router, http.MethodDelete, "/api/export-presets/1", "9", nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	del := doJSON(t, router, http.MethodDelete, "/api/export-presets/1", "7", nil)
	assert.Equal(t, http.StatusOK, del.Code)
}

func TestXLSXExport(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/stocks/AAPL/1M/export", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "AAPL_1M.xlsx")
	// xlsx files are zip archives
	assert.Equal(t, "PK", w.Body.String()[:2])
}
