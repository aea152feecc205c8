package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2DDistanceAndMidpoint(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(30, 40)

	assert.InDelta(t, 50.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 50.0, b.Distance(a), 1e-9)
	assert.Equal(t, NewPoint2D(15, 20), a.Midpoint(b))
	assert.Zero(t, a.Distance(a))
}

func TestPoint2DArithmetic(t *testing.T) {
	p := NewPoint2D(3, -2)
	q := NewPoint2D(1, 5)

	assert.Equal(t, NewPoint2D(4, 3), p.Add(q))
	assert.Equal(t, NewPoint2D(2, -7), p.Sub(q))
	assert.Equal(t, NewPoint2D(6, -4), p.Scale(2))
}

func TestSizeIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		size Size
		want bool
	}{
		{name: "zero", size: Size{}, want: true},
		{name: "zero width", size: NewSize(0, 10), want: true},
		{name: "negative height", size: NewSize(10, -1), want: true},
		{name: "nan", size: NewSize(math.NaN(), 10), want: true},
		{name: "inf", size: NewSize(math.Inf(1), 10), want: true},
		{name: "laid out", size: NewSize(800, 600), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.size.IsEmpty())
		})
	}
}

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 100, 50)

	assert.Equal(t, NewPoint2D(60, 45), r.Center())
	assert.Equal(t, NewPoint2D(10, 20), r.TopLeft())
	assert.Equal(t, NewSize(100, 50), r.Size())
	assert.True(t, r.Contains(NewPoint2D(10, 20)))
	assert.True(t, r.Contains(NewPoint2D(110, 70)))
	assert.False(t, r.Contains(NewPoint2D(111, 70)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(0.5, 1, 5))
	assert.Equal(t, 5.0, Clamp(7, 1, 5))
	assert.Equal(t, 3.0, Clamp(3, 1, 5))
}
