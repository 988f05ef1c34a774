package editor

import "math"

// DecimationFactor converts a smoothness setting in [0,1] to the stride used
// to subsample the series before curve interpolation: smoothness 0 keeps
// every 11th point, smoothness 1 keeps every point.
func DecimationFactor(smoothness float64) int {
	if smoothness < 0 {
		smoothness = 0
	}
	if smoothness > 1 {
		smoothness = 1
	}
	factor := int(math.Floor((1-smoothness)*10)) + 1
	if factor < 1 {
		factor = 1
	}
	return factor
}

// Decimate keeps every factor-th data point and always forces inclusion of
// the final point.
func Decimate(data []DataPoint, factor int) []DataPoint {
	if len(data) == 0 {
		return nil
	}
	if factor <= 1 {
		out := make([]DataPoint, len(data))
		copy(out, data)
		return out
	}
	var out []DataPoint
	for i := 0; i < len(data); i += factor {
		out = append(out, data[i])
	}
	last := data[len(data)-1]
	if out[len(out)-1].Timestamp != last.Timestamp {
		out = append(out, last)
	}
	return out
}
