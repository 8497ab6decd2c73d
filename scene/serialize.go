package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/geom"
	"go.uber.org/zap"
)

// Deserialize replaces the scene's contents with a scene document:
//
//	{
//	  "name": "...",
//	  "rendertarget": "NoAA",
//	  "rendertargets": [{"name": "...", "type": "MSAA", "clearcolor": [r, g, b, a]}],
//	  "constraints3d": {"min": [x, y, z], "max": [x, y, z]},
//	  "grid": {"enabled": true, "density": 20, "majorevery": 10},
//	  "camera": "camera3d", "camera2d": "camera2d", "camera3d": "camera3d",
//	  "entities": [ ... ]
//	}
//
// Entities are created through the entity manager, so prefab references and
// overrides resolve there. Errors leave the scene partially built.
func (s *Scene) Deserialize(doc ecs.Object) error {
	s.reset()
	s.Name = doc.String("name", "")

	if name := doc.String("rendertarget", ""); name != "" {
		t, err := ParseTargetType(name)
		if err != nil {
			return err
		}
		s.setTarget(newTargetSpec(name, t, s.defaultClear(t)))
	}
	if doc.Has("rendertargets") {
		specs, err := doc.Objects("rendertargets")
		if err != nil {
			return fmt.Errorf("rendertargets: %w", err)
		}
		for i, o := range specs {
			spec, err := parseTargetSpec(o)
			if err != nil {
				return fmt.Errorf("rendertargets[%d]: %w", i, err)
			}
			s.setTarget(spec)
		}
	}

	if c, ok := doc.Object("constraints3d"); ok {
		b := geom.AABB{
			Min: c.Vec3("min", mgl32.Vec3{}),
			Max: c.Vec3("max", mgl32.Vec3{}),
		}
		if err := s.SetBounds(b); err != nil {
			return fmt.Errorf("%w: min %v max %v", err, b.Min, b.Max)
		}
	}

	if g, ok := doc.Object("grid"); ok {
		s.Grid.Enabled = g.Bool("enabled", s.Grid.Enabled)
		s.Grid.Density = g.Float32("density", s.Grid.Density)
		s.Grid.MajorEvery = g.Int("majorevery", s.Grid.MajorEvery)
		s.Grid.MinorColor = g.Color("minorcolor", s.Grid.MinorColor)
		s.Grid.MajorColor = g.Color("majorcolor", s.Grid.MajorColor)
	}

	s.camera2d = doc.String("camera2d", DefaultCamera2D)
	s.camera3d = doc.String("camera3d", DefaultCamera3D)

	blocks, err := doc.Objects("entities")
	if err != nil {
		return fmt.Errorf("entities: %w", err)
	}
	for i, block := range blocks {
		e, err := s.entities.CreateEntityFromData(block)
		if err != nil {
			return fmt.Errorf("entities[%d]: %w", i, err)
		}
		if !s.AddEntity(e) {
			s.logger.Debug("entity has nothing to show", zap.String("name", e.Name()))
		}
	}
	s.LinkBuddies()

	if name := doc.String("camera", ""); name != "" && !s.SetActiveCamera(name) {
		s.logger.Warn("active camera not found", zap.String("camera", name))
	}

	cams, m3, m2, lights := s.Len()
	s.logger.Info("scene loaded",
		zap.String("name", s.Name),
		zap.Int("cameras", cams),
		zap.Int("models3d", m3),
		zap.Int("models2d", m2),
		zap.Int("lights", lights),
	)
	return nil
}

func (s *Scene) defaultClear(t TargetType) mgl32.Vec4 {
	for _, spec := range s.targets {
		if spec.Type == t {
			return spec.Clear
		}
	}
	return mgl32.Vec4{0, 0, 0, 1}
}

// setTarget adds spec or replaces the target with the same name.
func (s *Scene) setTarget(spec TargetSpec) {
	for i, t := range s.targets {
		if t.Name == spec.Name {
			s.targets[i] = spec
			return
		}
	}
	s.targets = append(s.targets, spec)
}

// Serialize writes the scene document Deserialize reads, with every live
// entity.
func (s *Scene) Serialize() ecs.Object {
	doc := ecs.Object{"name": s.Name}

	targets := make([]any, 0, len(s.targets))
	for _, t := range s.targets {
		targets = append(targets, t.serialize())
	}
	doc["rendertargets"] = targets

	if s.constrained {
		c := ecs.Object{}
		c.SetVec3("min", s.bounds.Min)
		c.SetVec3("max", s.bounds.Max)
		doc["constraints3d"] = c
	}

	g := ecs.Object{
		"enabled":    s.Grid.Enabled,
		"density":    float64(s.Grid.Density),
		"majorevery": s.Grid.MajorEvery,
	}
	g.SetColor("minorcolor", s.Grid.MinorColor)
	g.SetColor("majorcolor", s.Grid.MajorColor)
	doc["grid"] = g

	if s.active != nil {
		doc["camera"] = s.active.Name
	}
	doc["camera2d"] = s.camera2d
	doc["camera3d"] = s.camera3d

	entities := make([]any, 0, s.entities.Len())
	for _, e := range s.entities.Entities() {
		if s.entities.Pending(e.ID()) {
			continue
		}
		entities = append(entities, e.Serialize())
	}
	doc["entities"] = entities
	return doc
}

// LoadFile reads and deserializes a scene document. A file that cannot be
// opened or parsed is returned as an error and leaves the scene untouched.
func (s *Scene) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	doc, err := ecs.ParseObject(data)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", path, err)
	}
	if err := s.Deserialize(doc); err != nil {
		return fmt.Errorf("load scene %s: %w", path, err)
	}
	return nil
}

// SaveFile writes Serialize as indented JSON.
func (s *Scene) SaveFile(path string) error {
	data, err := json.MarshalIndent(s.Serialize(), "", "  ")
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}
