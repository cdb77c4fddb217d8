package model

import "math"

// Position is a point in the game world. Value type, passed by value;
// two positions are compared only by distance, never by identity.
// Z defaults to 0 where the source data carries no height.
type Position struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Map int32   `json:"map"`
}

// Distance returns the 2D Euclidean distance to another point.
func (p Position) Distance(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance3D returns the 3D Euclidean distance to another point.
func (p Position) Distance3D(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	dz := other.Z - p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Lerp returns the position at the given progress [0,1] on the straight
// line to another point. The map identifier of the receiver is kept.
func (p Position) Lerp(to Position, progress float64) Position {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return Position{
		X:   p.X + (to.X-p.X)*progress,
		Y:   p.Y + (to.Y-p.Y)*progress,
		Z:   p.Z + (to.Z-p.Z)*progress,
		Map: p.Map,
	}
}
