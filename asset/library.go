package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// BuiltinPrefix names procedurally generated assets, e.g. "builtin:box".
const BuiltinPrefix = "builtin:"

// Library loads assets once and shares them between models. Keys are the
// xxhash of the cleaned path; textures are shared by content hash.
type Library struct {
	logger   *zap.Logger
	assets3d map[uint64]*Asset3D
	assets2d map[uint64]*Asset2D
	textures map[uint64]*Texture
}

// NewLibrary creates an empty library.
func NewLibrary(logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		logger:   logger.Named("assets"),
		assets3d: make(map[uint64]*Asset3D),
		assets2d: make(map[uint64]*Asset2D),
		textures: make(map[uint64]*Texture),
	}
}

func key(name string) uint64 {
	if !strings.HasPrefix(name, BuiltinPrefix) {
		name = filepath.Clean(name)
	}
	return xxhash.Sum64String(name)
}

// Register adds an asset under name. The first registration for a name wins.
func (l *Library) Register(name string, a *Asset3D) *Asset3D {
	k := key(name)
	if existing, ok := l.assets3d[k]; ok {
		return existing
	}
	l.assets3d[k] = a
	return a
}

// Register2D adds a 2D asset under name.
func (l *Library) Register2D(name string, a *Asset2D) *Asset2D {
	k := key(name)
	if existing, ok := l.assets2d[k]; ok {
		return existing
	}
	l.assets2d[k] = a
	return a
}

// Asset3D returns the asset for name, loading it on first use. Names with the
// builtin prefix are generated; .obj files are imported; anything else is
// read as the binary format.
func (l *Library) Asset3D(name string) (*Asset3D, error) {
	k := key(name)
	if a, ok := l.assets3d[k]; ok {
		return a, nil
	}

	var (
		a   *Asset3D
		err error
	)
	switch {
	case strings.HasPrefix(name, BuiltinPrefix):
		a, err = builtin3D(name)
	case strings.EqualFold(filepath.Ext(name), ".obj"):
		loader := &OBJLoader{Dir: filepath.Dir(name), Logger: l.logger}
		a, err = loader.LoadFile(name)
	default:
		a, err = LoadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load asset %q: %w", name, err)
	}
	for i, t := range a.Textures {
		a.Textures[i] = l.shareTexture(t)
	}
	l.assets3d[k] = a
	l.logger.Debug("asset loaded", zap.String("name", name), zap.Int("vertices", len(a.Vertices)))
	return a, nil
}

// Asset2D returns a floor-plan asset. Image files become textured quads,
// builtins are generated and anything else is the footprint of the 3D asset
// with the same name.
func (l *Library) Asset2D(name string) (*Asset2D, error) {
	k := key(name)
	if a, ok := l.assets2d[k]; ok {
		return a, nil
	}

	var a *Asset2D
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case strings.HasPrefix(name, BuiltinPrefix):
		a = Quad2D(name, 1, 1, [4]float32{1, 1, 1, 1}, nil)
	case ext == ".png" || ext == ".jpg" || ext == ".jpeg" || ext == ".bmp" || ext == ".webp" || ext == ".tiff":
		tex := l.Texture(name)
		aspect := float32(1)
		if tex.Width > 0 {
			aspect = float32(tex.Height) / float32(tex.Width)
		}
		a = Quad2D(name, 1, aspect, [4]float32{1, 1, 1, 1}, tex)
	default:
		src, err := l.Asset3D(name)
		if err != nil {
			return nil, err
		}
		a = Footprint2D(name, src, [4]float32{0.85, 0.85, 0.85, 1})
	}
	l.assets2d[k] = a
	return a, nil
}

// Texture loads an image, falling back to the stub texture.
func (l *Library) Texture(path string) *Texture {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadTextureOrStub(path, l.logger)
	}
	k := xxhash.Sum64(data)
	if t, ok := l.textures[k]; ok {
		return t
	}
	t, err := DecodeTexture(path, data)
	if err != nil {
		l.logger.Warn("texture unreadable, using stub", zap.String("path", path), zap.Error(err))
		return StubTexture()
	}
	l.textures[k] = t
	return t
}

func (l *Library) shareTexture(t *Texture) *Texture {
	if t == nil || len(t.Pixels) == 0 {
		return t
	}
	k := xxhash.Sum64(t.Pixels)
	if existing, ok := l.textures[k]; ok && existing.Width == t.Width && existing.Height == t.Height {
		return existing
	}
	l.textures[k] = t
	return t
}

// Len returns how many 3D and 2D assets are cached.
func (l *Library) Len() (int, int) {
	return len(l.assets3d), len(l.assets2d)
}

func builtin3D(name string) (*Asset3D, error) {
	switch strings.TrimPrefix(name, BuiltinPrefix) {
	case "box":
		return Box(name, mgl32.Vec3{1, 1, 1}, [4]float32{0.8, 0.8, 0.8, 1}, true), nil
	case "cube":
		return Box(name, mgl32.Vec3{1, 1, 1}, [4]float32{0.8, 0.8, 0.8, 1}, false), nil
	case "floor":
		return Box(name, mgl32.Vec3{10, 0.05, 10}, [4]float32{0.6, 0.6, 0.6, 1}, false), nil
	case "wall":
		return Box(name, mgl32.Vec3{4, 2.5, 0.15}, [4]float32{0.95, 0.95, 0.9, 1}, true), nil
	}
	return nil, fmt.Errorf("unknown builtin asset %q", name)
}
