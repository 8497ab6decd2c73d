package main

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/config"
	"github.com/plus3/floorplan/object"
	"github.com/stretchr/testify/assert"
)

func defaultControls() Controls {
	return NewControls(config.Default().Input.Sensitivity)
}

func TestOrbitIgnoresPlanCamera(t *testing.T) {
	c := defaultControls()

	plan := object.NewOrthographicCamera("plan", 10, 1, 0.1, 100)
	c.Orbit(plan, 40, 40)
	assert.Zero(t, plan.Yaw)
	assert.Zero(t, plan.Pitch)

	cam := object.NewPerspectiveCamera("cam", 60, 1, 0.1, 100)
	c.Orbit(cam, 100, 0)
	assert.InDelta(t, -0.5, cam.Yaw, 1e-6)

	c.Orbit(nil, 1, 1)
}

func TestZoomPlan(t *testing.T) {
	c := defaultControls()
	plan := object.NewOrthographicCamera("plan", 10, 1, 0.1, 100)

	c.Zoom(plan, 1)
	assert.InDelta(t, 9, plan.Zoom, 1e-4)
	c.Zoom(plan, -1)
	assert.InDelta(t, 10, plan.Zoom, 1e-4)

	c.Zoom(plan, 100)
	assert.Equal(t, float32(minOrthoZoom), plan.Zoom)
}

func TestZoomDolliesForward(t *testing.T) {
	c := defaultControls()
	cam := object.NewPerspectiveCamera("cam", 60, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 5, 10}

	c.Zoom(cam, 1)
	assert.Less(t, cam.Position.Z(), float32(10))
	assert.InDelta(t, 5, cam.Position.Y(), 1e-5, "level camera keeps its height")
}

func TestPanPlan(t *testing.T) {
	c := defaultControls()
	plan := object.NewOrthographicCamera("plan", 5, 1, 0.1, 100)

	// 100 px of a 100 px tall view is the full 10 unit extent.
	c.Pan(plan, 100, 0, 100)
	assert.InDelta(t, -10, plan.Position.X(), 1e-5)
	c.Pan(plan, 0, 50, 100)
	assert.InDelta(t, 5, plan.Position.Y(), 1e-5)
}

func TestGroundAxes(t *testing.T) {
	cam := object.NewPerspectiveCamera("cam", 60, 1, 0.1, 100)

	right, forward := groundAxes(cam)
	assert.InDelta(t, 1, right.X(), 1e-6)
	assert.InDelta(t, -1, forward.Z(), 1e-6)

	cam.Yaw = math.Pi / 2
	right, forward = groundAxes(cam)
	assert.InDelta(t, -1, right.Z(), 1e-6)
	assert.InDelta(t, -1, forward.X(), 1e-6)
	assert.Zero(t, forward.Y())
}

func TestNewControlsScales(t *testing.T) {
	c := NewControls(config.Sensitivity{Move: 50, Rotate: 200, Zoom: 100})
	assert.InDelta(t, 0.5, c.move, 1e-6)
	assert.InDelta(t, 2, c.rotate, 1e-6)
	assert.InDelta(t, 1, c.zoom, 1e-6)
}
