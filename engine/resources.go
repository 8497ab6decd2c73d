package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/ecs"
	"go.uber.org/zap"
)

// ResourceKind selects how a resource entry is loaded.
type ResourceKind string

const (
	Resource3D      ResourceKind = "3d"
	Resource2D      ResourceKind = "2d"
	ResourceTexture ResourceKind = "texture"
)

// Resource is one entry of a resources file. Name is the alias renderables
// refer to; Path is loaded through the asset library.
type Resource struct {
	Name string
	Path string
	Kind ResourceKind
}

// ParseResources reads the "resources" list of a resources document.
// Relative paths are made relative to dir; builtin names are kept as is.
func ParseResources(data []byte, dir string) ([]Resource, error) {
	doc, err := ecs.ParseObject(data)
	if err != nil {
		return nil, err
	}
	entries, err := doc.Objects("resources")
	if err != nil {
		return nil, err
	}

	out := make([]Resource, 0, len(entries))
	for i, o := range entries {
		r := Resource{
			Name: o.String("name", ""),
			Path: o.String("path", ""),
			Kind: ResourceKind(strings.ToLower(o.String("kind", string(Resource3D)))),
		}
		if r.Path == "" {
			return nil, fmt.Errorf("resource %d: %w: %q", i, ecs.ErrMissingField, "path")
		}
		switch r.Kind {
		case Resource3D, Resource2D, ResourceTexture:
		default:
			return nil, fmt.Errorf("resource %d: unknown kind %q", i, r.Kind)
		}
		if !strings.HasPrefix(r.Path, asset.BuiltinPrefix) && !filepath.IsAbs(r.Path) && dir != "" {
			r.Path = filepath.Join(dir, r.Path)
		}
		if r.Name == "" {
			r.Name = r.Path
		}
		out = append(out, r)
	}
	return out, nil
}

// loadResources preloads every entry of the resources file at path into
// lib, registering each asset under its alias as well as its path.
func loadResources(lib *asset.Library, path string, logger *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read resources: %w", err)
	}
	list, err := ParseResources(data, filepath.Dir(path))
	if err != nil {
		return 0, fmt.Errorf("resources %s: %w", path, err)
	}

	for _, r := range list {
		switch r.Kind {
		case Resource3D:
			a, err := lib.Asset3D(r.Path)
			if err != nil {
				return 0, fmt.Errorf("resources %s: %w", path, err)
			}
			lib.Register(r.Name, a)
		case Resource2D:
			a, err := lib.Asset2D(r.Path)
			if err != nil {
				return 0, fmt.Errorf("resources %s: %w", path, err)
			}
			lib.Register2D(r.Name, a)
		case ResourceTexture:
			lib.Texture(r.Path)
		}
		logger.Debug("resource loaded", zap.String("name", r.Name), zap.String("kind", string(r.Kind)))
	}
	return len(list), nil
}
