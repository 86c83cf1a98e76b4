package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestArea_GlobalSize tests that the whole sphere has surface 4πR².
func TestArea_GlobalSize(t *testing.T) {
	expected := 4 * math.Pi * AreaEarthRadius * AreaEarthRadius
	got := GlobalArea().Size()
	if math.Abs(got-expected)/expected > 1e-12 {
		t.Errorf("Global area: expected %.6e, got %.6e", expected, got)
	}
}

// TestArea_SizeIsAdditive tests that splitting a box preserves its surface.
func TestArea_SizeIsAdditive(t *testing.T) {
	whole := NewArea(40, 10, -20, 30)
	north := NewArea(40, 10, 10, 30)
	south := NewArea(10, 10, -20, 30)
	assert.InDelta(t, whole.Size(), north.Size()+south.Size(), whole.Size()*1e-12)

	west := NewArea(40, 10, -20, 20)
	east := NewArea(40, 20, -20, 30)
	assert.InDelta(t, whole.Size(), west.Size()+east.Size(), whole.Size()*1e-12)
}

func TestNewArea_Normalisation(t *testing.T) {
	tests := []struct {
		name     string
		in       Area
		expected Area
	}{
		{"clamp poles", Area{North: 95, West: 0, South: -100, East: 10}, Area{North: 90, West: 0, South: -90, East: 10}},
		{"crossing meridian", Area{North: 10, West: 350, South: 0, East: 10}, Area{North: 10, West: -10, South: 0, East: 10}},
		{"negative east", Area{North: 10, West: 0, South: 0, East: -20}, Area{North: 10, West: 0, South: 0, East: 340}},
	}

	for _, tt := range tests {
		got := NewArea(tt.in.North, tt.in.West, tt.in.South, tt.in.East)
		assert.Equal(t, tt.expected, got, tt.name)
	}
}

func TestArea_ContainsAndIntersection(t *testing.T) {
	outer := NewArea(50, 0, -50, 100)
	inner := NewArea(10, 20, -10, 30)
	crossing := NewArea(60, 90, 40, 120)

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.False(t, outer.Contains(crossing))

	got, ok := outer.Intersection(crossing)
	assert.True(t, ok)
	assert.Equal(t, Area{North: 50, West: 90, South: 40, East: 100}, got)

	_, ok = outer.Intersection(NewArea(80, 200, 70, 210))
	assert.False(t, ok)
}

// TestArea_IntersectionSizeAcrossMeridian tests overlap of a cell straddling 0°.
func TestArea_IntersectionSizeAcrossMeridian(t *testing.T) {
	global := GlobalArea()
	cell := NewArea(1, 359, -1, 1)
	assert.InDelta(t, cell.Size(), global.IntersectionSize(cell), cell.Size()*1e-9)
}
