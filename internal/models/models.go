package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a user in the system
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"unique;not null"`
	Username  string         `json:"username"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// ChartTemplate is a reusable chart design: styling config plus annotation
// elements, independent of any particular symbol.
type ChartTemplate struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"userId" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Config      datatypes.JSON `json:"config"`
	Elements    datatypes.JSON `json:"elements"`
	IsPublic    bool           `json:"isPublic" gorm:"default:false"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// ChartInstance is a template applied to a concrete symbol/timeframe,
// carrying its own element overrides and the fetched market data.
type ChartInstance struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"userId" gorm:"index"`
	User           User           `json:"-" gorm:"foreignKey:UserID"`
	TemplateID     uint           `json:"templateId" gorm:"index"`
	Template       ChartTemplate  `json:"-" gorm:"foreignKey:TemplateID"`
	Symbol         string         `json:"symbol" gorm:"not null"`
	Timeframe      string         `json:"timeframe" gorm:"not null"`
	Elements       datatypes.JSON `json:"elements"`
	PolygonData    datatypes.JSON `json:"polygonData"`
	LastDataUpdate *time.Time     `json:"lastDataUpdate"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// ExportPreset is a saved export configuration (format, DPI, dimensions).
type ExportPreset struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index"`
	Name      string    `json:"name" gorm:"not null"`
	Format    string    `json:"format" gorm:"not null"` // png, svg, pdf
	DPI       int       `json:"dpi" gorm:"default:72"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarketDataCache holds one cached upstream response keyed by symbol+timeframe.
type MarketDataCache struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CacheKey  string         `json:"cacheKey" gorm:"uniqueIndex;not null"`
	Data      datatypes.JSON `json:"data"`
	ExpiresAt time.Time      `json:"expiresAt" gorm:"index"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Upload is a pending binary received through an issued upload URL, not yet
// registered as a font or logo.
type Upload struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Token       string    `json:"token" gorm:"uniqueIndex;not null"`
	UserID      uint      `json:"userId" gorm:"index"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-" gorm:"type:longblob"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CustomFont is a user-uploaded font file.
type CustomFont struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"index"`
	Name      string         `json:"name" gorm:"not null"`
	Family    string         `json:"family"`
	Format    string         `json:"format" gorm:"not null"` // woff, woff2, ttf, otf
	Data      []byte         `json:"-" gorm:"type:longblob"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CustomLogo is a user-uploaded logo image.
type CustomLogo struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"index"`
	Name      string         `json:"name" gorm:"not null"`
	MimeType  string         `json:"mimeType" gorm:"not null"`
	Data      []byte         `json:"-" gorm:"type:longblob"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
