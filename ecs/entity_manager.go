package ecs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// EntityManager owns the live entities. Destruction is deferred: an entity
// passed to DestroyEntity stays resolvable until the next Update.
type EntityManager struct {
	registry *Registry
	prefabs  *PrefabManager
	subs     *Subscriptions
	logger   *zap.Logger

	entities []*Entity
	index    *intmap.Map[EntityID, *Entity]
	pending  []*Entity
	nextID   EntityID

	// singletons maps a type to the *T shared by the world.
	singletons map[reflect.Type]any

	created   int64
	destroyed int64
}

// NewEntityManager creates an entity manager over registry. prefabs may be
// nil when no prefab resolution is needed.
func NewEntityManager(registry *Registry, prefabs *PrefabManager, logger *zap.Logger) *EntityManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefabs == nil {
		prefabs = NewPrefabManager(logger)
	}
	return &EntityManager{
		registry: registry,
		prefabs:  prefabs,
		subs:     newSubscriptions(),
		logger:   logger.Named("entities"),
		index:    intmap.New[EntityID, *Entity](256),
		nextID:   1,

		singletons: make(map[reflect.Type]any),
	}
}

func (em *EntityManager) Registry() *Registry { return em.registry }

func (em *EntityManager) Prefabs() *PrefabManager { return em.prefabs }

// Subscriptions is the message table entities of this manager dispatch through.
func (em *EntityManager) Subscriptions() *Subscriptions { return em.subs }

// CreateEntity creates an unnamed entity.
func (em *EntityManager) CreateEntity() *Entity {
	return em.CreateNamedEntity("")
}

// CreateNamedEntity creates an entity called name.
func (em *EntityManager) CreateNamedEntity(name string) *Entity {
	e, err := em.build(EntityTypeName)
	if err != nil {
		panic(err)
	}
	e.name = name
	em.add(e)
	return e
}

// AddEntity adopts an entity built outside the manager, for instance by a
// custom factory constructor. Adding an entity that is already live panics.
func (em *EntityManager) AddEntity(e *Entity) {
	if e.world != nil && e.world != em {
		panic(fmt.Sprintf("ecs: entity %d belongs to another entity manager", e.id))
	}
	if e.id == 0 {
		e.id = em.nextID
		em.nextID++
	}
	if e.typeName == "" {
		e.typeName = EntityTypeName
	}
	if e.world == nil {
		e.active = true
	}
	e.world = em
	em.add(e)
}

// CreateEntityFromData builds an entity from a document. A "prefab" key is
// resolved through the prefab manager and the document is merged over it.
// On error nothing is added and any created components are released.
func (em *EntityManager) CreateEntityFromData(data Object) (*Entity, error) {
	prefab := data.String("prefab", "")
	if prefab != "" {
		base, ok := em.prefabs.Lookup(prefab)
		if !ok {
			return nil, fmt.Errorf("entity %q: unknown prefab %q", data.String("name", ""), prefab)
		}
		merged, err := MergeOverride(base, data)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", data.String("name", ""), err)
		}
		data = merged
	}

	e, err := em.build(data.String("type", EntityTypeName))
	if err != nil {
		return nil, err
	}
	e.prefab = prefab

	if id, ok := toInt(data["id"]); ok && id > 0 {
		if _, taken := em.index.Get(EntityID(id)); taken {
			em.logger.Warn("entity id already in use, assigning a new one", zap.Int64("id", id))
		} else {
			e.id = EntityID(id)
			if e.id >= em.nextID {
				em.nextID = e.id + 1
			}
		}
	}

	if err := e.Deserialize(data); err != nil {
		e.release()
		return nil, err
	}

	em.add(e)
	return e, nil
}

// CreateEntityFromJSON parses data and delegates to CreateEntityFromData.
func (em *EntityManager) CreateEntityFromJSON(data []byte) (*Entity, error) {
	o, err := ParseObject(data)
	if err != nil {
		return nil, err
	}
	return em.CreateEntityFromData(o)
}

// CreateEntityFromPrefab instantiates the named prefab. Unknown names panic.
func (em *EntityManager) CreateEntityFromPrefab(name string) (*Entity, error) {
	if _, ok := em.prefabs.Lookup(name); !ok {
		panic(fmt.Sprintf("ecs: unknown prefab %q", name))
	}
	return em.CreateEntityFromData(Object{"prefab": name})
}

// DestroyEntity schedules the entity with id for removal on the next Update.
// It returns false when no live entity has that id.
func (em *EntityManager) DestroyEntity(id EntityID) bool {
	e, ok := em.index.Get(id)
	if !ok {
		return false
	}
	for _, p := range em.pending {
		if p == e {
			return true
		}
	}
	em.pending = append(em.pending, e)
	return true
}

// Pending reports whether the entity is scheduled for destruction.
func (em *EntityManager) Pending(id EntityID) bool {
	for _, p := range em.pending {
		if p.id == id {
			return true
		}
	}
	return false
}

// Update erases entities destroyed since the last call.
func (em *EntityManager) Update() {
	if len(em.pending) == 0 {
		return
	}

	doomed := em.pending
	em.pending = nil

	for _, e := range doomed {
		e.release()
		em.index.Del(e.id)
		for i, live := range em.entities {
			if live == e {
				em.entities = append(em.entities[:i], em.entities[i+1:]...)
				break
			}
		}
		e.world = nil
		em.destroyed++
		em.logger.Debug("entity destroyed", zap.Uint64("id", uint64(e.id)), zap.String("name", e.name))
	}
}

func (em *EntityManager) GetEntityByID(id EntityID) *Entity {
	e, _ := em.index.Get(id)
	return e
}

// GetEntityByName returns the first entity called name.
func (em *EntityManager) GetEntityByName(name string) *Entity {
	for _, e := range em.entities {
		if e.name == name {
			return e
		}
	}
	return nil
}

// GetEntityByNameSubstring returns the first entity whose name contains sub.
func (em *EntityManager) GetEntityByNameSubstring(sub string) *Entity {
	for _, e := range em.entities {
		if strings.Contains(e.name, sub) {
			return e
		}
	}
	return nil
}

func (em *EntityManager) GetEntitiesByName(name string) []*Entity {
	var out []*Entity
	for _, e := range em.entities {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (em *EntityManager) GetEntitiesByNameSubstring(sub string) []*Entity {
	var out []*Entity
	for _, e := range em.entities {
		if strings.Contains(e.name, sub) {
			out = append(out, e)
		}
	}
	return out
}

// Entities returns the live entities in creation order.
func (em *EntityManager) Entities() []*Entity {
	out := make([]*Entity, len(em.entities))
	copy(out, em.entities)
	return out
}

func (em *EntityManager) Len() int { return len(em.entities) }

// Broadcast sends msg to every live entity.
func (em *EntityManager) Broadcast(msg Message) {
	for _, e := range em.entities {
		e.Send(msg)
	}
}

// Stats summarizes the entity manager and every component manager.
type Stats struct {
	Entities   int
	Pending    int
	Created    int64
	Destroyed  int64
	Components []ComponentStats
}

type ComponentStats struct {
	ID       ComponentID
	Name     string
	Count    int
	Capacity int
	Priority int
}

// CollectStats gathers counts for diagnostics.
func (em *EntityManager) CollectStats() Stats {
	s := Stats{
		Entities:  len(em.entities),
		Pending:   len(em.pending),
		Created:   em.created,
		Destroyed: em.destroyed,
	}
	for _, m := range em.registry.Managers() {
		s.Components = append(s.Components, ComponentStats{
			ID:       m.ID(),
			Name:     m.Name(),
			Count:    m.Len(),
			Capacity: m.Cap(),
			Priority: em.registry.UpdatePriority(m.ID()),
		})
	}
	return s
}

func (em *EntityManager) build(typeName string) (*Entity, error) {
	built, err := em.registry.factory.Create(typeName)
	if err != nil {
		return nil, err
	}
	e, ok := built.(*Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not build an entity", ErrUnknownType, typeName)
	}

	e.id = em.nextID
	em.nextID++
	e.typeName = typeName
	e.active = true
	e.world = em
	return e, nil
}

func (em *EntityManager) add(e *Entity) {
	if existing, ok := em.index.Get(e.id); ok {
		if existing == e {
			panic(fmt.Sprintf("ecs: entity %d added twice", e.id))
		}
		panic(fmt.Sprintf("ecs: entity id %d already in use", e.id))
	}
	em.entities = append(em.entities, e)
	em.index.Put(e.id, e)
	em.created++
}
