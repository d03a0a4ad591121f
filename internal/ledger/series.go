package ledger

import (
	"bilancio/internal/core"
)

// Point is one sample of the running-balance series, in chart-friendly form.
type Point struct {
	Date      core.Date
	Balance   float64 // main currency units
	Projected bool
}

// Points extracts the balance series from a report, one point per row.
func (r Report) Points() []Point {
	pts := make([]Point, len(r.Rows))
	for i, row := range r.Rows {
		pts[i] = Point{
			Date:      row.Date,
			Balance:   float64(row.Balance) / 100.0,
			Projected: row.Projected,
		}
	}
	return pts
}

// Smooth applies a centered three-point moving average to the balance values,
// leaving dates and flags alone. Series shorter than three points come back
// unchanged.
func Smooth(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	out := make([]Point, len(pts))
	for i := range pts {
		lo, hi := i-1, i+2
		if lo < 0 {
			lo = 0
		}
		if hi > len(pts) {
			hi = len(pts)
		}
		var sum float64
		for _, p := range pts[lo:hi] {
			sum += p.Balance
		}
		out[i] = pts[i]
		out[i].Balance = sum / float64(hi-lo)
	}
	return out
}

// Trend fits a least-squares line balance = slope*index + intercept over the
// series. ok is false when there are fewer than two points.
func Trend(pts []Point) (slope, intercept float64, ok bool) {
	n := float64(len(pts))
	if n < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, p := range pts {
		x := float64(i)
		sumX += x
		sumY += p.Balance
		sumXY += x * p.Balance
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
