package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is raw pixel data, rows top to bottom.
type Texture struct {
	Name   string
	Width  int
	Height int
	BPP    int
	Pixels []byte
}

// At returns the texel at (x, y) as RGBA in [0,1], clamping to the edges.
func (t *Texture) At(x, y int) [4]float32 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return [4]float32{1, 1, 1, 1}
	}
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)
	i := (y*t.Width + x) * t.BPP
	var out [4]float32
	out[3] = 1
	for c := 0; c < t.BPP && c < 4; c++ {
		out[c] = float32(t.Pixels[i+c]) / 255
	}
	if t.BPP == 1 {
		out[1], out[2] = out[0], out[0]
	}
	return out
}

// Sample does nearest-neighbour lookup with repeat wrapping.
func (t *Texture) Sample(u, v float32) [4]float32 {
	if t == nil || t.Width == 0 {
		return [4]float32{1, 1, 1, 1}
	}
	u -= float32(int(u))
	v -= float32(int(v))
	if u < 0 {
		u++
	}
	if v < 0 {
		v++
	}
	// v runs top to bottom, same as pixel rows
	return t.At(int(u*float32(t.Width)), int(v*float32(t.Height)))
}

// WhiteTexture is the 1x1 fully lit texture.
func WhiteTexture() *Texture {
	return &Texture{Name: "white", Width: 1, Height: 1, BPP: 4, Pixels: []byte{255, 255, 255, 255}}
}

// StubTexture is the magenta checker used when an image cannot be loaded.
func StubTexture() *Texture {
	return &Texture{
		Name:  "stub",
		Width: 2, Height: 2, BPP: 4,
		Pixels: []byte{
			255, 0, 255, 255, 0, 0, 0, 255,
			0, 0, 0, 255, 255, 0, 255, 255,
		},
	}
}

// DecodeTexture decodes an encoded image (png, jpeg, bmp, tiff, webp) into
// RGBA, resampling to power-of-two dimensions.
func DecodeTexture(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	return FromImage(name, img), nil
}

// FromImage converts any image to an RGBA texture.
func FromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	w, h := nextPowerOfTwo(b.Dx()), nextPowerOfTwo(b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return &Texture{Name: name, Width: w, Height: h, BPP: 4, Pixels: dst.Pix}
}

// Image returns the texture as an RGBA image.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(c[0] * 255), G: uint8(c[1] * 255), B: uint8(c[2] * 255), A: uint8(c[3] * 255),
			})
		}
	}
	return img
}

// LoadTexture reads and decodes an image file.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTexture(path, data)
}

// LoadTextureOrStub falls back to StubTexture when the image cannot be read.
func LoadTextureOrStub(path string, logger *zap.Logger) *Texture {
	tex, err := LoadTexture(path)
	if err != nil {
		if logger != nil {
			logger.Warn("texture unavailable, using stub", zap.String("path", path), zap.Error(err))
		}
		stub := StubTexture()
		stub.Name = path
		return stub
	}
	return tex
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
