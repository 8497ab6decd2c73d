package soft

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/render"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// MeasureText returns the pixel size of s in the device font.
func (d *Device) MeasureText(s string) (int, int) {
	return font.MeasureString(d.face, s).Ceil(), d.face.Metrics().Height.Ceil()
}

// Text draws s with its top-left corner at (x, y) in the bound target,
// alpha blended over attachment 0.
func (d *Device) Text(s string, x, y int, c mgl32.Vec4) {
	d.record(Command{Op: OpText, Target: d.boundName, Text: s})
	l := d.current()
	if l == nil || len(l.color) == 0 || s == "" {
		return
	}
	w, h := d.MeasureText(s)
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	dr := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: d.face,
		Dot:  fixed.P(0, d.face.Metrics().Ascent.Ceil()),
	}
	dr.DrawString(s)

	t := d.bound.desc
	saved := d.state.Blend
	d.state.Blend = render.BlendAlpha
	defer func() { d.state.Blend = saved }()
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			a := mask.AlphaAt(px, py).A
			tx, ty := x+px, y+py
			if a == 0 || tx < 0 || ty < 0 || tx >= t.Width || ty >= t.Height {
				continue
			}
			d.blend(l.color[0], ty*t.Width+tx, mgl32.Vec4{c[0], c[1], c[2], c[3] * float32(a) / 255})
		}
	}
}
