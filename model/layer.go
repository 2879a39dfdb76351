package model

import "math"

// Point is a cell coordinate in a layer; X is the column, Y the row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layer is a row-major integer grid such as a unit-type or ownership map.
type Layer struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Cells  []int `json:"cells"`
}

// At returns the value at (x, y), or 0 outside the grid.
func (l Layer) At(x, y int) int {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return 0
	}
	i := y*l.Width + x
	if i >= len(l.Cells) {
		return 0
	}
	return l.Cells[i]
}

// Find returns every cell holding v in row-major order.
func (l Layer) Find(v int) []Point {
	var out []Point
	if l.Width <= 0 {
		return nil
	}
	for i, c := range l.Cells {
		if c == v {
			out = append(out, Point{X: i % l.Width, Y: i / l.Width})
		}
	}
	return out
}

// Count returns the number of cells holding v.
func (l Layer) Count(v int) int {
	n := 0
	for _, c := range l.Cells {
		if c == v {
			n++
		}
	}
	return n
}

// Any reports whether at least one cell holds v.
func (l Layer) Any(v int) bool {
	for _, c := range l.Cells {
		if c == v {
			return true
		}
	}
	return false
}

// Centroid returns the mean position of pts. ok is false for an empty set.
func Centroid(pts []Point) (x, y float64, ok bool) {
	if len(pts) == 0 {
		return 0, 0, false
	}
	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return float64(sx) / n, float64(sy) / n, true
}

// RoundedCentroid is Centroid snapped to the nearest cell, halves to even.
func RoundedCentroid(pts []Point) (Point, bool) {
	x, y, ok := Centroid(pts)
	if !ok {
		return Point{}, false
	}
	return Point{X: int(math.RoundToEven(x)), Y: int(math.RoundToEven(y))}, true
}
