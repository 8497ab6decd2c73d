package scene

import (
	"fmt"
	"image/color"

	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
)

// PixelReader reads one pixel of a render target attachment back from the
// device. Coordinates are pixels with the origin top-left.
type PixelReader interface {
	ReadPixel(target string, attachment, x, y int) (color.RGBA, error)
}

// GetModelAtPoint returns the color id of the model drawn at (x, y) in the
// last frame, NoColorID for the background. The 3D view reads the GBuffer id
// attachment, the floor-plan view the NoAA one.
func (s *Scene) GetModelAtPoint(r PixelReader, x, y int) (object.ColorID, error) {
	target := GBufferTarget
	if s.Is2D() {
		target = NoAATarget
	}
	c, err := r.ReadPixel(target, AttachID, x, y)
	if err != nil {
		return object.NoColorID, fmt.Errorf("pick at %d,%d: %w", x, y, err)
	}
	id := object.ColorIDFromRGB(c.R, c.G, c.B)
	if !s.known(id) {
		return object.NoColorID, nil
	}
	return id, nil
}

// GetEntityAtPoint is GetModelAtPoint resolved to the model's entity.
func (s *Scene) GetEntityAtPoint(r PixelReader, x, y int) (*ecs.Entity, error) {
	id, err := s.GetModelAtPoint(r, x, y)
	if err != nil || id == object.NoColorID {
		return nil, err
	}
	return s.Owner(id), nil
}
