package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Line is a world-space segment.
type Line struct {
	From, To mgl32.Vec3
}

// Grid is the floor-plan grid drawn behind 2D models. The step adapts to
// the camera distance so roughly Density minor lines span the view.
type Grid struct {
	Enabled    bool
	Density    float32
	MajorEvery int
	MinorColor mgl32.Vec4
	MajorColor mgl32.Vec4
}

func NewGrid() *Grid {
	return &Grid{
		Enabled:    true,
		Density:    20,
		MajorEvery: 10,
		MinorColor: mgl32.Vec4{0.8, 0.8, 0.8, 1},
		MajorColor: mgl32.Vec4{0.55, 0.55, 0.55, 1},
	}
}

// Step returns the minor line spacing for a camera distance: the largest
// power of ten not above 2*distance/Density.
func (g *Grid) Step(distance float32) float32 {
	density := g.Density
	if density <= 0 {
		density = 20
	}
	target := float64(max(distance, 0.001)) * 2 / float64(density)

	step := 1.0
	for step*10 <= target {
		step *= 10
	}
	for step > target*(1+1e-9) {
		step /= 10
	}
	return float32(step)
}

// Lines returns the minor and major lines covering the rectangle
// [min, max] in the XY plane at the given depth.
func (g *Grid) Lines(minPt, maxPt mgl32.Vec2, depth, distance float32) (minor, major []Line) {
	step := g.Step(distance)
	every := g.MajorEvery
	if every <= 0 {
		every = 10
	}

	emit := func(i int, line Line) {
		if i%every == 0 {
			major = append(major, line)
		} else {
			minor = append(minor, line)
		}
	}

	x0 := int(math.Floor(float64(minPt[0] / step)))
	x1 := int(math.Ceil(float64(maxPt[0] / step)))
	for i := x0; i <= x1; i++ {
		x := float32(i) * step
		emit(i, Line{From: mgl32.Vec3{x, minPt[1], depth}, To: mgl32.Vec3{x, maxPt[1], depth}})
	}

	y0 := int(math.Floor(float64(minPt[1] / step)))
	y1 := int(math.Ceil(float64(maxPt[1] / step)))
	for i := y0; i <= y1; i++ {
		y := float32(i) * step
		emit(i, Line{From: mgl32.Vec3{minPt[0], y, depth}, To: mgl32.Vec3{maxPt[0], y, depth}})
	}
	return minor, major
}
