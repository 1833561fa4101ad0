// Package viewport holds the pan/zoom transform between screen and board
// coordinates. It is presentational only and never persisted.
package viewport

import (
	"math"

	"moodboard/internal/model"
)

const (
	MinScale = 0.1
	MaxScale = 5

	// WheelFactor is applied once per zoom-at-pointer input.
	WheelFactor = 1.1
	// StepFactor is applied by the zoom in/out buttons.
	StepFactor = 1.2
)

// Viewport maps world to screen as screen = world*Scale + Offset.
// The zero value is not usable; call New.
type Viewport struct {
	Scale  float64     `json:"scale"`
	Offset model.Point `json:"offset"`
}

func New() Viewport {
	return Viewport{Scale: 1}
}

func clamp(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// ZoomAt zooms by WheelFactor^sign(delta) keeping the world point under
// pointer fixed on screen. Positive delta zooms in.
func (v *Viewport) ZoomAt(delta float64, pointer model.Point) {
	switch {
	case delta > 0:
		v.zoomTo(v.Scale*WheelFactor, pointer)
	case delta < 0:
		v.zoomTo(v.Scale/WheelFactor, pointer)
	}
}

func (v *Viewport) ZoomIn(center model.Point)  { v.zoomTo(v.Scale*StepFactor, center) }
func (v *Viewport) ZoomOut(center model.Point) { v.zoomTo(v.Scale/StepFactor, center) }

func (v *Viewport) zoomTo(scale float64, pointer model.Point) {
	world := v.ScreenToWorld(pointer)
	v.Scale = clamp(scale)
	v.Offset = model.Point{
		X: pointer.X - world.X*v.Scale,
		Y: pointer.Y - world.Y*v.Scale,
	}
}

// Pan moves the canvas by a screen-space drag delta. Unbounded.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

func (v *Viewport) Reset() {
	*v = New()
}

// Percent is the rounded zoom level for display.
func (v Viewport) Percent() int {
	return int(math.Round(v.Scale * 100))
}

func (v Viewport) ScreenToWorld(p model.Point) model.Point {
	return model.Point{X: (p.X - v.Offset.X) / v.Scale, Y: (p.Y - v.Offset.Y) / v.Scale}
}

func (v Viewport) WorldToScreen(p model.Point) model.Point {
	return model.Point{X: p.X*v.Scale + v.Offset.X, Y: p.Y*v.Scale + v.Offset.Y}
}
