package asset

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// maxBytes bounds the payload any header in a stream may announce.
	maxBytes = 1 << 30
	// readChunk is how many bytes a section is read in at a time, so memory
	// grows with the data actually present rather than with the header.
	readChunk = 64 << 10
)

var order = binary.LittleEndian

// Save writes the asset in the compressed binary format: vertices, materials,
// textures, indices, per-material offsets, per-material counts. The layout has
// no version field.
func (a *Asset3D) Save(w io.Writer) error {
	if a.ready {
		return fmt.Errorf("save %q: %w", a.Name, ErrNotResident)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	zw := zlib.NewWriter(w)
	bw := bufio.NewWriter(zw)

	if err := writeSlice(bw, a.Vertices); err != nil {
		return err
	}
	if err := writeSlice(bw, a.Materials); err != nil {
		return err
	}
	if err := writeTextures(bw, a.Textures); err != nil {
		return err
	}
	if err := writeSlice(bw, a.Indices); err != nil {
		return err
	}
	if err := binary.Write(bw, order, a.Offsets); err != nil {
		return err
	}
	if err := binary.Write(bw, order, a.Counts); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return zw.Close()
}

// SaveFile writes the asset to path.
func (a *Asset3D) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads an asset written by Save.
func Load(name string, r io.Reader) (*Asset3D, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	a := &Asset3D{}
	a.Name = name

	if a.Vertices, err = readSlice[Vertex3D](br); err != nil {
		return nil, corrupt(name, "vertices", err)
	}
	if a.Materials, err = readSlice[Material](br); err != nil {
		return nil, corrupt(name, "materials", err)
	}
	if a.Textures, err = readTextures(br); err != nil {
		return nil, corrupt(name, "textures", err)
	}
	if a.Indices, err = readSlice[uint32](br); err != nil {
		return nil, corrupt(name, "indices", err)
	}

	n := len(a.Materials)
	a.Offsets = make([]uint32, n)
	a.Counts = make([]uint32, n)
	if err := binary.Read(br, order, a.Offsets); err != nil {
		return nil, corrupt(name, "offsets", err)
	}
	if err := binary.Read(br, order, a.Counts); err != nil {
		return nil, corrupt(name, "counts", err)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.ComputeBounds()
	return a, nil
}

// LoadFile reads a binary asset from disk.
func LoadFile(path string) (*Asset3D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(path, f)
}

func corrupt(name, section string, err error) error {
	if errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("%q %s: %w", name, section, err)
	}
	return fmt.Errorf("%w: %q %s: %v", ErrCorrupt, name, section, err)
}

func writeSlice[T any](w io.Writer, s []T) error {
	if err := binary.Write(w, order, uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return binary.Write(w, order, s)
}

func readSlice[T any](r io.Reader) ([]T, error) {
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return nil, err
	}
	var zero T
	elem := binary.Size(zero)
	if elem <= 0 {
		return nil, fmt.Errorf("%T has no fixed size", zero)
	}
	if uint64(n)*uint64(elem) > maxBytes {
		return nil, fmt.Errorf("%w: %d records of %d bytes exceed limit", ErrCorrupt, n, elem)
	}

	batch := max(readChunk/elem, 1)
	s := make([]T, 0, min(int(n), batch))
	for left := int(n); left > 0; {
		k := min(left, batch)
		chunk := make([]T, k)
		if err := binary.Read(r, order, chunk); err != nil {
			return nil, err
		}
		s = append(s, chunk...)
		left -= k
	}
	return s, nil
}

// Textures are written per material; a material without a texture is
// recorded with zero dimensions.
func writeTextures(w io.Writer, texs []*Texture) error {
	if err := binary.Write(w, order, uint32(len(texs))); err != nil {
		return err
	}
	for _, t := range texs {
		var hdr [3]uint32
		var pix []byte
		if t != nil {
			hdr = [3]uint32{uint32(t.Width), uint32(t.Height), uint32(t.BPP)}
			pix = t.Pixels
		}
		if err := binary.Write(w, order, hdr); err != nil {
			return err
		}
		if _, err := w.Write(pix); err != nil {
			return err
		}
	}
	return nil
}

func readTextures(r io.Reader) ([]*Texture, error) {
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return nil, err
	}
	if uint64(n)*12 > maxBytes {
		return nil, fmt.Errorf("%w: texture count %d exceeds limit", ErrCorrupt, n)
	}
	texs := make([]*Texture, 0, min(int(n), 64))
	for i := 0; i < int(n); i++ {
		var hdr [3]uint32
		if err := binary.Read(r, order, &hdr); err != nil {
			return nil, err
		}
		size := uint64(hdr[0]) * uint64(hdr[1]) * uint64(hdr[2])
		if size == 0 {
			texs = append(texs, nil)
			continue
		}
		if size > maxBytes {
			return nil, fmt.Errorf("%w: texture %d too large", ErrCorrupt, i)
		}
		pix, err := readBytes(r, size)
		if err != nil {
			return nil, err
		}
		texs = append(texs, &Texture{Width: int(hdr[0]), Height: int(hdr[1]), BPP: int(hdr[2]), Pixels: pix})
	}
	return texs, nil
}

// readBytes reads exactly size bytes, growing the buffer as they arrive.
func readBytes(r io.Reader, size uint64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(size, readChunk)))
	got, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) && uint64(got) < size {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
