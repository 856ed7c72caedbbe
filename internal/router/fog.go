package router

import "math"

type fogBracket struct {
	density    float64
	visibility float64 // meters
}

// Density to visibility range, interpolated linearly between neighbours.
var fogBrackets = []fogBracket{
	{0.0, 30000},
	{0.25, 1600},
	{0.5, 400},
	{0.75, 100},
	{1.0, 25},
}

// FogVisibility converts a fog density in [0,1] to a visibility range in
// meters. Densities outside the range are clamped.
func FogVisibility(density float64) float64 {
	first, last := fogBrackets[0], fogBrackets[len(fogBrackets)-1]
	switch {
	case math.IsNaN(density) || density <= first.density:
		return first.visibility
	case density >= last.density:
		return last.visibility
	}

	for i := 1; i < len(fogBrackets); i++ {
		hi := fogBrackets[i]
		if density > hi.density {
			continue
		}
		lo := fogBrackets[i-1]
		t := (density - lo.density) / (hi.density - lo.density)
		return lo.visibility + t*(hi.visibility-lo.visibility)
	}
	return last.visibility
}
