package model

import "math"

// Coord is a planar coordinate in meters.
type Coord struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DistanceTo returns the straight-line distance to other in meters.
func (c Coord) DistanceTo(other Coord) float64 {
	return math.Sqrt(c.SquaredDistanceTo(other))
}

// SquaredDistanceTo returns the squared straight-line distance to other.
// It avoids the square root when only ordering matters.
func (c Coord) SquaredDistanceTo(other Coord) float64 {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return dx*dx + dy*dy
}
