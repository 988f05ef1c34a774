package polygon

import (
	"strings"
	"time"
)

// Timeframe maps a client timeframe name to a Polygon aggregates range.
type Timeframe struct {
	Name       string
	Multiplier int
	Timespan   string        // minute, hour, day, week
	Span       time.Duration // lookback window
	Bars       int           // synthetic series length
	Step       time.Duration // synthetic bar spacing
}

var timeframes = []Timeframe{
	{Name: "1D", Multiplier: 5, Timespan: "minute", Span: 24 * time.Hour, Bars: 78, Step: 5 * time.Minute},
	{Name: "5D", Multiplier: 30, Timespan: "minute", Span: 5 * 24 * time.Hour, Bars: 65, Step: 30 * time.Minute},
	{Name: "1M", Multiplier: 1, Timespan: "day", Span: 31 * 24 * time.Hour, Bars: 22, Step: 24 * time.Hour},
	{Name: "3M", Multiplier: 1, Timespan: "day", Span: 92 * 24 * time.Hour, Bars: 64, Step: 24 * time.Hour},
	{Name: "6M", Multiplier: 1, Timespan: "day", Span: 183 * 24 * time.Hour, Bars: 128, Step: 24 * time.Hour},
	{Name: "1Y", Multiplier: 1, Timespan: "day", Span: 365 * 24 * time.Hour, Bars: 252, Step: 24 * time.Hour},
	{Name: "5Y", Multiplier: 1, Timespan: "week", Span: 5 * 365 * 24 * time.Hour, Bars: 260, Step: 7 * 24 * time.Hour},
}

func resolveTimeframe(name string) (Timeframe, bool) {
	needle := strings.ToUpper(strings.TrimSpace(name))
	for _, tf := range timeframes {
		if tf.Name == needle {
			return tf, true
		}
	}
	return Timeframe{}, false
}

// Timeframes lists the supported timeframe names.
func Timeframes() []string {
	out := make([]string, len(timeframes))
	for i, tf := range timeframes {
		out[i] = tf.Name
	}
	return out
}
