// Command export-chart renders a stored chart instance to PNG, SVG or PDF
// without going through the HTTP server.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"chart-studio/internal/config"
	"chart-studio/internal/database"
	"chart-studio/internal/editor"
	"chart-studio/internal/export"
	"chart-studio/internal/models"
	"chart-studio/internal/services/polygon"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	instanceID := flag.Uint("instance", 0, "Chart instance ID to render")
	out := flag.String("out", "chart.png", "Output file path")
	format := flag.String("format", "png", "Output format: png, svg or pdf")
	dpi := flag.Int("dpi", 72, "Resolution preset: 72, 150 or 300")
	width := flag.Int("width", 1920, "Output width in pixels")
	height := flag.Int("height", 1080, "Output height in pixels")
	flag.Parse()

	if *instanceID == 0 {
		fmt.Fprintln(os.Stderr, "Usage: export-chart -instance <id> [-out chart.png] [-format png|svg|pdf] [-dpi 72|150|300]")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var instance models.ChartInstance
	if err := db.First(&instance, *instanceID).Error; err != nil {
		log.Fatalf("Instance %d not found: %v", *instanceID, err)
	}

	stocks := polygon.NewService(cfg.PolygonAPIKey, cfg.CacheTTL, db)
	bars, err := loadBars(&instance, stocks)
	if err != nil {
		log.Fatalf("Failed to load market data: %v", err)
	}

	session := editor.NewSession(nil, nil)
	session.LoadSeries(instance.Symbol, instance.Timeframe, export.SeriesFromBars(bars))

	renderer := export.NewRenderer()
	registerFonts(db, renderer)
	registerLogos(db, renderer)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	opts := export.Options{
		Format: export.Format(*format),
		Width:  *width,
		Height: *height,
		DPI:    *dpi,
	}
	if err := renderer.Render(session.Scene(), f, opts); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	log.Printf("Wrote %s (%s %dx%d @ %d DPI)", *out, *format, *width, *height, *dpi)
}

// loadBars prefers the data snapshot stored on the instance, falling back to
// a fresh fetch.
func loadBars(instance *models.ChartInstance, stocks *polygon.Service) ([]polygon.Bar, error) {
	if len(instance.PolygonData) > 0 {
		var bars []polygon.Bar
		if err := sonic.Unmarshal(instance.PolygonData, &bars); err == nil && len(bars) > 0 {
			return bars, nil
		}
		log.Println("Stored data snapshot unreadable, refetching")
	}
	return stocks.GetBars(instance.Symbol, instance.Timeframe)
}

// registerFonts loads every uploaded font so text set in a custom family
// renders with the real glyphs.
func registerFonts(db *gorm.DB, renderer *export.Renderer) {
	var fonts []models.CustomFont
	if err := db.Find(&fonts).Error; err != nil {
		log.Printf("Failed to load custom fonts: %v", err)
		return
	}
	for _, font := range fonts {
		if err := renderer.RegisterFont(font.Family, font.Data); err != nil {
			log.Printf("Skipping font %s: %v", font.Name, err)
		}
	}
}

func registerLogos(db *gorm.DB, renderer *export.Renderer) {
	var logos []models.CustomLogo
	if err := db.Find(&logos).Error; err != nil {
		log.Printf("Failed to load logos: %v", err)
		return
	}
	for _, logo := range logos {
		img, _, err := image.Decode(bytes.NewReader(logo.Data))
		if err != nil {
			log.Printf("Skipping logo %s: %v", logo.Name, err)
			continue
		}
		renderer.RegisterLogo(logo.ID, img)
	}
}
