package polygon

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"chart-studio/internal/models"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

const apiBase = "https://api.polygon.io"

// Bar is one OHLCV bar as served to the client.
type Bar struct {
	Symbol    string  `json:"symbol,omitempty"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
	Date      string  `json:"date"`      // YYYY-MM-DD
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type Service struct {
	apiKey   string
	cacheTTL time.Duration
	client   *resty.Client
	db       *gorm.DB
}

func NewService(apiKey string, cacheTTL time.Duration, db *gorm.DB) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Service{
		apiKey:   apiKey,
		cacheTTL: cacheTTL,
		client:   client,
		db:       db,
	}
}

type aggsResponse struct {
	Ticker       string `json:"ticker"`
	ResultsCount int    `json:"resultsCount"`
	Status       string `json:"status"`
	Results      []struct {
		T int64   `json:"t"`
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
	} `json:"results"`
}

// GetBars returns the price series for one symbol/timeframe, consulting the
// cache first. Upstream failures and empty results fall back to a
// deterministic synthetic series, which is cached like a real one.
func (s *Service) GetBars(symbol, timeframe string) ([]Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tf, ok := resolveTimeframe(timeframe)
	if !ok {
		return nil, fmt.Errorf("unknown timeframe: %s", timeframe)
	}

	key := cacheKey(symbol, tf.Name)
	if bars, ok := s.cacheGet(key); ok {
		return bars, nil
	}

	bars, err := s.fetchAggregates(symbol, tf)
	if err != nil || len(bars) == 0 {
		if err != nil {
			log.Printf("Polygon fetch failed for %s %s, using synthetic data: %v", symbol, tf.Name, err)
		} else {
			log.Printf("Polygon returned no results for %s %s, using synthetic data", symbol, tf.Name)
		}
		bars = SyntheticBars(symbol, tf)
	}

	s.cachePut(key, bars)
	return bars, nil
}

// GetMultiBars handles comma/space separated symbol lists: per-symbol series
// are concatenated and re-sorted ascending by timestamp, each bar tagged with
// its symbol.
func (s *Service) GetMultiBars(symbols []string, timeframe string) ([]Bar, error) {
	var merged []Bar
	for _, sym := range symbols {
		bars, err := s.GetBars(sym, timeframe)
		if err != nil {
			return nil, err
		}
		tagged := strings.ToUpper(strings.TrimSpace(sym))
		for _, b := range bars {
			b.Symbol = tagged
			merged = append(merged, b)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged, nil
}

// SplitSymbols parses a request symbol segment into individual tickers.
func SplitSymbols(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (s *Service) fetchAggregates(symbol string, tf Timeframe) ([]Bar, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	to := time.Now().UTC()
	from := to.Add(-tf.Span)
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s?adjusted=true&sort=asc&limit=50000&apiKey=%s",
		apiBase, symbol, tf.Multiplier, tf.Timespan,
		from.Format("2006-01-02"), to.Format("2006-01-02"), s.apiKey)

	resp, err := s.client.R().Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("polygon returned status %d", resp.StatusCode())
	}

	var aggs aggsResponse
	if err := json.Unmarshal(resp.Body(), &aggs); err != nil {
		return nil, err
	}

	bars := make([]Bar, 0, len(aggs.Results))
	for _, r := range aggs.Results {
		bars = append(bars, Bar{
			Timestamp: r.T,
			Date:      time.UnixMilli(r.T).UTC().Format("2006-01-02"),
			Open:      r.O,
			High:      r.H,
			Low:       r.L,
			Close:     r.C,
			Volume:    r.V,
		})
	}
	return bars, nil
}

func cacheKey(symbol, timeframe string) string {
	return fmt.Sprintf("stocks:%s:%s", symbol, timeframe)
}

func (s *Service) cacheGet(key string) ([]Bar, bool) {
	if s.db == nil {
		return nil, false
	}
	var entry models.MarketDataCache
	if err := s.db.Where("cache_key = ?", key).First(&entry).Error; err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	var bars []Bar
	if err := json.Unmarshal(entry.Data, &bars); err != nil {
		log.Printf("Dropping unreadable cache entry %s: %v", key, err)
		s.db.Where("cache_key = ?", key).Delete(&models.MarketDataCache{})
		return nil, false
	}
	return bars, true
}

func (s *Service) cachePut(key string, bars []Bar) {
	if s.db == nil {
		return
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return
	}
	entry := models.MarketDataCache{
		CacheKey:  key,
		Data:      data,
		ExpiresAt: time.Now().Add(s.cacheTTL),
	}
	// upsert by cache key
	var existing models.MarketDataCache
	if err := s.db.Where("cache_key = ?", key).First(&existing).Error; err == nil {
		existing.Data = entry.Data
		existing.ExpiresAt = entry.ExpiresAt
		s.db.Save(&existing)
		return
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
}

// ClearExpired removes cache rows past their TTL and reports how many.
func (s *Service) ClearExpired() (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.MarketDataCache{})
	return res.RowsAffected, res.Error
}
