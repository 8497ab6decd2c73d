package asset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupported is returned for OBJ constructs outside the supported subset.
var ErrUnsupported = errors.New("asset: unsupported obj construct")

// OBJLoader imports the Wavefront OBJ/MTL subset: v, vn, vt, triangular f,
// usemtl and mtllib; Ka, Kd, Ks, Ns, d and map_Kd.
type OBJLoader struct {
	// Open resolves mtllib and map_Kd references. Defaults to os.Open relative to Dir.
	Open   func(name string) (io.ReadCloser, error)
	Dir    string
	Logger *zap.Logger
}

type objMaterial struct {
	mat Material
	tex *Texture
}

type objState struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	vertices []Vertex3D
	indices  []uint32
	byPos    map[int][]uint32

	materials map[string]objMaterial
	current   objMaterial
	groupOpen bool
	groupAt   uint32

	asset *Asset3D
}

// LoadFile parses an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Asset3D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if l.Dir == "" {
		l.Dir = filepath.Dir(path)
	}
	return l.Load(path, f)
}

// Load parses OBJ text. Vertices sharing a position are merged unless their
// normal or uv differ, in which case another vertex record is appended.
func (l *OBJLoader) Load(name string, r io.Reader) (*Asset3D, error) {
	st := &objState{
		byPos:     make(map[int][]uint32),
		materials: make(map[string]objMaterial),
		current:   objMaterial{mat: DefaultMaterial()},
		asset:     &Asset3D{},
	}
	st.asset.Name = name

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			v, err = parseFloats3(fields[1:])
			st.positions = append(st.positions, v)
		case "vn":
			var v [3]float32
			v, err = parseFloats3(fields[1:])
			st.normals = append(st.normals, v)
		case "vt":
			var uv [2]float32
			uv, err = parseFloats2(fields[1:])
			uv[1] = 1 - uv[1]
			st.uvs = append(st.uvs, uv)
		case "f":
			err = st.face(fields[1:])
		case "usemtl":
			st.closeGroup()
			if len(fields) > 1 {
				m, ok := st.materials[fields[1]]
				if !ok {
					l.logger().Warn("unknown material", zap.String("obj", name), zap.String("material", fields[1]))
					m = objMaterial{mat: DefaultMaterial()}
				}
				st.current = m
			}
		case "mtllib":
			for _, lib := range fields[1:] {
				if err = l.loadMTL(lib, st.materials); err != nil {
					break
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	st.closeGroup()

	a := st.asset
	a.Vertices = st.vertices
	a.Indices = st.indices
	a.ComputeBounds()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (st *objState) face(refs []string) error {
	if len(refs) != 3 {
		return fmt.Errorf("%w: face with %d vertices", ErrUnsupported, len(refs))
	}
	if !st.groupOpen {
		st.groupOpen = true
		st.groupAt = uint32(len(st.indices))
	}
	for _, ref := range refs {
		idx, err := st.vertex(ref)
		if err != nil {
			return err
		}
		st.indices = append(st.indices, idx)
	}
	return nil
}

func (st *objState) closeGroup() {
	if !st.groupOpen {
		return
	}
	st.groupOpen = false
	count := uint32(len(st.indices)) - st.groupAt
	if count == 0 {
		return
	}
	st.asset.AddSubmesh(st.current.tex, st.current.mat, st.groupAt, count)
}

func (st *objState) vertex(ref string) (uint32, error) {
	parts := strings.Split(ref, "/")
	pi, err := resolveIndex(parts[0], len(st.positions))
	if err != nil {
		return 0, err
	}
	v := Vertex3D{Position: st.positions[pi]}
	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(st.uvs))
		if err != nil {
			return 0, err
		}
		v.UV = st.uvs[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(st.normals))
		if err != nil {
			return 0, err
		}
		v.Normal = st.normals[ni]
	}

	for _, existing := range st.byPos[pi] {
		e := st.vertices[existing]
		if e.Normal == v.Normal && e.UV == v.UV {
			return existing, nil
		}
	}
	idx := uint32(len(st.vertices))
	st.vertices = append(st.vertices, v)
	st.byPos[pi] = append(st.byPos[pi], idx)
	return idx, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q: %w", s, err)
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, n)
	}
	return i, nil
}

func (l *OBJLoader) loadMTL(name string, into map[string]objMaterial) error {
	rc, err := l.open(name)
	if err != nil {
		l.logger().Warn("material library unavailable", zap.String("mtllib", name), zap.Error(err))
		return nil
	}
	defer rc.Close()

	var cur string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return fmt.Errorf("%s: newmtl without name", name)
			}
			cur = fields[1]
			into[cur] = objMaterial{mat: DefaultMaterial()}
			continue
		}
		if cur == "" {
			continue
		}
		m := into[cur]
		switch fields[0] {
		case "Ka", "Kd", "Ks":
			c, err := parseFloats3(fields[1:])
			if err != nil {
				return fmt.Errorf("%s: %s: %w", name, fields[0], err)
			}
			rgba := [4]float32{c[0], c[1], c[2], m.mat.Opacity}
			switch fields[0] {
			case "Ka":
				m.mat.Ambient = rgba
			case "Kd":
				m.mat.Diffuse = rgba
			case "Ks":
				m.mat.Specular = rgba
			}
		case "Ns":
			if len(fields) > 1 {
				ns, err := strconv.ParseFloat(fields[1], 32)
				if err != nil {
					return fmt.Errorf("%s: Ns: %w", name, err)
				}
				m.mat.Shininess = float32(ns)
			}
		case "d":
			if len(fields) > 1 {
				d, err := strconv.ParseFloat(fields[1], 32)
				if err != nil {
					return fmt.Errorf("%s: d: %w", name, err)
				}
				m.mat.Opacity = float32(d)
				m.mat.Diffuse[3] = float32(d)
			}
		case "map_Kd":
			if len(fields) > 1 {
				m.tex = l.loadTexture(fields[len(fields)-1])
			}
		}
		into[cur] = m
	}
	return sc.Err()
}

func (l *OBJLoader) loadTexture(name string) *Texture {
	rc, err := l.open(name)
	if err != nil {
		l.logger().Warn("texture unavailable, using stub", zap.String("path", name), zap.Error(err))
		return StubTexture()
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err == nil {
		var tex *Texture
		if tex, err = DecodeTexture(name, data); err == nil {
			return tex
		}
	}
	l.logger().Warn("texture unreadable, using stub", zap.String("path", name), zap.Error(err))
	return StubTexture()
}

func (l *OBJLoader) open(name string) (io.ReadCloser, error) {
	if l.Open != nil {
		return l.Open(name)
	}
	return os.Open(filepath.Join(l.Dir, name))
}

func (l *OBJLoader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func parseFloats3(fields []string) ([3]float32, error) {
	var out [3]float32
	if len(fields) < 3 {
		return out, fmt.Errorf("expected 3 values, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseFloats2(fields []string) ([2]float32, error) {
	var out [2]float32
	if len(fields) < 2 {
		return out, fmt.Errorf("expected 2 values, got %d", len(fields))
	}
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
