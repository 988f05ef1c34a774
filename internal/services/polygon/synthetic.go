package polygon

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// SyntheticBars generates a deterministic price series for a symbol when the
// upstream provider fails or returns nothing. The same symbol and timeframe
// always produce the same series: the generator is seeded by the ticker, with
// base price, volatility and trend all derived from that seed.
func SyntheticBars(symbol string, tf Timeframe) []Bar {
	seed := symbolSeed(symbol)
	rng := rand.New(rand.NewSource(int64(seed)))

	base := 20.0 + float64(seed%480)              // 20..500
	volatility := 0.005 + float64(seed%20)/1000.0 // 0.5%..2.5% per bar
	trend := (float64(seed%9) - 4.0) / 10000.0    // -0.04%..+0.04% drift per bar

	// Anchor on a fixed recent midnight so the series is stable within a day
	// and cache refreshes do not jitter historical bars.
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-time.Duration(tf.Bars) * tf.Step)

	bars := make([]Bar, 0, tf.Bars)
	price := base
	for i := 0; i < tf.Bars; i++ {
		t := start.Add(time.Duration(i) * tf.Step)

		change := rng.NormFloat64()*volatility + trend
		open := price
		close := open * (1 + change)
		spread := math.Abs(open-close) + open*volatility*0.5
		high := math.Max(open, close) + rng.Float64()*spread*0.5
		low := math.Min(open, close) - rng.Float64()*spread*0.5
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}
		volume := float64(100000 + rng.Intn(900000))

		bars = append(bars, Bar{
			Timestamp: t.UnixMilli(),
			Date:      t.Format("2006-01-02"),
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(close),
			Volume:    volume,
		})
		price = close
	}
	return bars
}

func symbolSeed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
