package soft

import (
	"fmt"
	"image"
	"image/color"
)

// Image copies one color attachment of a target into an RGBA image.
func (d *Device) Image(name string, attachment int) (*image.RGBA, error) {
	t, ok := d.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTarget, name)
	}
	if attachment < 0 || attachment >= len(t.desc.Attachments) {
		return nil, fmt.Errorf("%w: %q attachment %d", ErrNoAttachment, name, attachment)
	}
	w, h := t.desc.Width, t.desc.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	plane := t.layers[0].color[attachment]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := toRGBA(plane[y*w+x])
			c.A = 255
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// DepthImage renders one layer's depth plane as grey, near is dark.
func (d *Device) DepthImage(name string, layer int) (*image.Gray, error) {
	t, ok := d.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTarget, name)
	}
	if layer < 0 || layer >= len(t.layers) || t.layers[layer].depth == nil {
		return nil, fmt.Errorf("%w: %q has no depth in layer %d", ErrNoAttachment, name, layer)
	}
	w, h := t.desc.Width, t.desc.Height
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, z := range t.layers[layer].depth {
		img.SetGray(i%w, i/w, color.Gray{Y: toByte(z)})
	}
	return img, nil
}
