package ecs

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
)

// PrefabDefinitionKey is the top-level key holding a prefab in its file.
const PrefabDefinitionKey = "prefabdefinition"

// PrefabManager holds named entity templates.
type PrefabManager struct {
	logger  *zap.Logger
	prefabs map[string]Object
	sources map[string]string
}

func NewPrefabManager(logger *zap.Logger) *PrefabManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrefabManager{
		logger:  logger.Named("prefabs"),
		prefabs: make(map[string]Object),
		sources: make(map[string]string),
	}
}

// AddPrefab loads the prefab defined in path.
func (pm *PrefabManager) AddPrefab(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prefab: %w", err)
	}
	return pm.AddPrefabData(data, path)
}

// AddPrefabData registers the prefab defined in a JSON document. source is
// only used in messages. A prefab may list each component type once. It
// panics when the prefab name is already taken.
func (pm *PrefabManager) AddPrefabData(data []byte, source string) error {
	doc, err := ParseObject(data)
	if err != nil {
		return fmt.Errorf("prefab %s: %w", source, err)
	}

	def, ok := doc.Object(PrefabDefinitionKey)
	if !ok {
		return fmt.Errorf("prefab %s: %w: %q", source, ErrMissingField, PrefabDefinitionKey)
	}
	name, err := def.RequireString("name")
	if err != nil {
		return fmt.Errorf("prefab %s: %w", source, err)
	}

	// overrides patch the first component of a type, so a second one could
	// never be reached
	comps, err := def.Objects("components")
	if err != nil {
		return fmt.Errorf("prefab %s: %w", source, err)
	}
	seen := make(map[string]bool, len(comps))
	for _, c := range comps {
		typeName := c.String("type", "")
		if seen[typeName] {
			return fmt.Errorf("prefab %s: %w: %q", source, ErrDuplicateComponent, typeName)
		}
		seen[typeName] = true
	}

	if prev, ok := pm.sources[name]; ok {
		panic(fmt.Sprintf("ecs: prefab %q from %s already defined by %s", name, source, prev))
	}

	pm.prefabs[name] = def
	pm.sources[name] = source
	pm.logger.Debug("prefab added", zap.String("name", name), zap.String("source", source))
	return nil
}

// GetPrefab returns a copy of the named prefab. It panics on unknown names.
func (pm *PrefabManager) GetPrefab(name string) Object {
	def, ok := pm.prefabs[name]
	if !ok {
		panic(fmt.Sprintf("ecs: unknown prefab %q", name))
	}
	return def.Clone()
}

// Lookup is GetPrefab for callers that can handle a missing prefab.
func (pm *PrefabManager) Lookup(name string) (Object, bool) {
	def, ok := pm.prefabs[name]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

// Names lists the registered prefab names in sorted order.
func (pm *PrefabManager) Names() []string {
	names := make([]string, 0, len(pm.prefabs))
	for name := range pm.prefabs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pm *PrefabManager) Len() int { return len(pm.prefabs) }

// MergeOverride returns base patched by override. Top-level fields of
// override replace those of base. Each override component patches the first
// base component with the same "type", field by field, or is appended when
// base has none. Nested values are replaced whole, never merged.
func MergeOverride(base, override Object) (Object, error) {
	merged := base.Clone()
	if merged == nil {
		merged = Object{}
	}

	for k, v := range override {
		if k == "components" {
			continue
		}
		merged[k] = cloneValue(v)
	}

	patches, err := override.Objects("components")
	if err != nil {
		return nil, fmt.Errorf("override: %w", err)
	}
	if len(patches) == 0 {
		return merged, nil
	}

	comps, err := merged.Objects("components")
	if err != nil {
		return nil, fmt.Errorf("prefab: %w", err)
	}

	for i, patch := range patches {
		typeName, err := patch.RequireString("type")
		if err != nil {
			return nil, fmt.Errorf("override component %d: %w", i, err)
		}

		target := -1
		for j, c := range comps {
			if c.String("type", "") == typeName {
				target = j
				break
			}
		}

		if target < 0 {
			comps = append(comps, patch.Clone())
			continue
		}
		for k, v := range patch {
			comps[target][k] = cloneValue(v)
		}
	}

	out := make([]any, len(comps))
	for i, c := range comps {
		out[i] = c
	}
	merged["components"] = out
	return merged, nil
}
