package router

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFogVisibility(t *testing.T) {
	tests := []struct {
		density float64
		want    float64
	}{
		{-1, 30000},
		{0, 30000},
		{0.10, 18640},
		{0.25, 1600},
		{0.375, 1000},
		{0.5, 400},
		{0.75, 100},
		{1, 25},
		{2, 25},
		{math.NaN(), 30000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FogVisibility(tt.density), 1e-6, "density %v", tt.density)
	}
}

func TestFogVisibilityMonotonic(t *testing.T) {
	prev := FogVisibility(0)
	for d := 0.01; d <= 1; d += 0.01 {
		v := FogVisibility(d)
		assert.LessOrEqual(t, v, prev, "density %v", d)
		prev = v
	}
}
