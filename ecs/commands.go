package ecs

import "go.uber.org/zap"

// Commands buffers structural changes requested while systems run. The
// scheduler flushes it once every system has executed.
type Commands struct {
	spawns   []Object
	prefabs  []string
	destroys []EntityID
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Defer queues fn to run at flush time.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity from a document.
func (c *Commands) Spawn(data Object) {
	c.spawns = append(c.spawns, data)
}

// SpawnPrefab queues the creation of an entity from a prefab.
func (c *Commands) SpawnPrefab(name string) {
	c.prefabs = append(c.prefabs, name)
}

// Destroy queues an entity for destruction.
func (c *Commands) Destroy(id EntityID) {
	c.destroys = append(c.destroys, id)
}

// Flush applies the buffered commands to em and resets the buffer.
// Destroyed entities are only scheduled; they disappear on em's next Update.
func (c *Commands) Flush(em *EntityManager) {
	for _, id := range c.destroys {
		em.DestroyEntity(id)
	}

	for _, data := range c.spawns {
		if _, err := em.CreateEntityFromData(data); err != nil {
			em.logger.Warn("deferred spawn failed", zap.Error(err))
		}
	}

	for _, name := range c.prefabs {
		if _, err := em.CreateEntityFromPrefab(name); err != nil {
			em.logger.Warn("deferred prefab spawn failed", zap.String("prefab", name), zap.Error(err))
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.prefabs = c.prefabs[:0]
	c.destroys = c.destroys[:0]
	c.defers = c.defers[:0]
}
