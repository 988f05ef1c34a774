package export

import (
	"chart-studio/internal/editor"
	"chart-studio/internal/services/polygon"
)

// SeriesFromBars converts fetched OHLC bars into the closing-price series the
// editor plots.
func SeriesFromBars(bars []polygon.Bar) []editor.DataPoint {
	points := make([]editor.DataPoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, editor.DataPoint{Timestamp: b.Timestamp, Value: b.Close})
	}
	return points
}
