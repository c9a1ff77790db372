package spritesheet

import (
	"image"
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is the default scene clear color.
var ColorBlack = Color{0, 0, 0, 1}

// toRGBA converts to premultiplied color.RGBA, clamping each component.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Rect is an integer pixel rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{r.X + dx, r.Y + dy, r.Width, r.Height}
}

// Union returns the smallest rectangle containing both r and other.
// Empty rectangles are ignored.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Image returns the rectangle as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// State is the playback state of a Sprite.
type State uint8

const (
	StateIdle    State = iota // never played
	StatePlaying              // timer armed, frames advancing
	StateStopped              // finished or stopped explicitly
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
