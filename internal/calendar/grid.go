package calendar

import "time"

// Grid arranges month buckets into Monday-first weeks of seven cells, padding
// the edges with zero buckets so every row is full.
func Grid(buckets []Bucket) [][]Bucket {
	if len(buckets) == 0 {
		return nil
	}

	lead := (int(buckets[0].Date.Weekday()) - int(time.Monday) + 7) % 7
	cells := make([]Bucket, 0, lead+len(buckets)+6)
	for i := 0; i < lead; i++ {
		cells = append(cells, Bucket{})
	}
	cells = append(cells, buckets...)
	for len(cells)%7 != 0 {
		cells = append(cells, Bucket{})
	}

	weeks := make([][]Bucket, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}
