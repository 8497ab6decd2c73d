package engine

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/plus3/floorplan/ecs"
	"go.uber.org/zap"
)

// CatalogDefinitionKey is the top-level key holding a catalog in its file.
const CatalogDefinitionKey = "catalogdefinition"

var (
	ErrUnknownCatalog = errors.New("engine: unknown catalog")
	ErrUnknownItem    = errors.New("engine: unknown catalog item")
)

// CatalogItem is one placeable piece of furniture or fixture.
type CatalogItem struct {
	Name      string
	Prefab    string
	Category  string
	Thumbnail string
}

// Catalog is a named list of items, kept in file order.
type Catalog struct {
	Name  string
	Items []CatalogItem
}

// Item returns the item called name.
func (c *Catalog) Item(name string) (CatalogItem, bool) {
	i := slices.IndexFunc(c.Items, func(it CatalogItem) bool { return it.Name == name })
	if i < 0 {
		return CatalogItem{}, false
	}
	return c.Items[i], true
}

// Categories lists the distinct item categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, it := range c.Items {
		if it.Category != "" && !slices.Contains(out, it.Category) {
			out = append(out, it.Category)
		}
	}
	return out
}

// Catalogs holds every loaded catalog by name.
type Catalogs struct {
	logger   *zap.Logger
	catalogs map[string]*Catalog
	sources  map[string]string
}

func NewCatalogs(logger *zap.Logger) *Catalogs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalogs{
		logger:   logger.Named("catalogs"),
		catalogs: make(map[string]*Catalog),
		sources:  make(map[string]string),
	}
}

// Add loads the catalog defined in path.
func (cs *Catalogs) Add(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	return cs.AddData(data, path)
}

// AddData registers the catalog defined in a JSON document. It panics when
// the catalog name is already taken.
func (cs *Catalogs) AddData(data []byte, source string) error {
	doc, err := ecs.ParseObject(data)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", source, err)
	}
	def, ok := doc.Object(CatalogDefinitionKey)
	if !ok {
		return fmt.Errorf("catalog %s: %w: %q", source, ecs.ErrMissingField, CatalogDefinitionKey)
	}
	name, err := def.RequireString("name")
	if err != nil {
		return fmt.Errorf("catalog %s: %w", source, err)
	}
	items, err := def.Objects("items")
	if err != nil {
		return fmt.Errorf("catalog %s: %w", source, err)
	}

	c := &Catalog{Name: name, Items: make([]CatalogItem, 0, len(items))}
	for i, o := range items {
		item := CatalogItem{
			Name:      o.String("name", ""),
			Prefab:    o.String("prefab", ""),
			Category:  o.String("category", ""),
			Thumbnail: o.String("thumbnail", ""),
		}
		if item.Name == "" || item.Prefab == "" {
			return fmt.Errorf("catalog %s: item %d: %w: name and prefab", source, i, ecs.ErrMissingField)
		}
		if _, dup := c.Item(item.Name); dup {
			cs.logger.Warn("duplicate catalog item, keeping the first",
				zap.String("catalog", name), zap.String("item", item.Name))
			continue
		}
		c.Items = append(c.Items, item)
	}

	if prev, dup := cs.sources[name]; dup {
		panic(fmt.Sprintf("engine: catalog %q from %s already defined by %s", name, source, prev))
	}
	cs.catalogs[name] = c
	cs.sources[name] = source
	cs.logger.Debug("catalog added", zap.String("name", name), zap.Int("items", len(c.Items)))
	return nil
}

func (cs *Catalogs) Get(name string) (*Catalog, bool) {
	c, ok := cs.catalogs[name]
	return c, ok
}

// Item looks up one item of one catalog.
func (cs *Catalogs) Item(catalog, item string) (CatalogItem, error) {
	c, ok := cs.catalogs[catalog]
	if !ok {
		return CatalogItem{}, fmt.Errorf("%w: %q", ErrUnknownCatalog, catalog)
	}
	it, ok := c.Item(item)
	if !ok {
		return CatalogItem{}, fmt.Errorf("%w: %q in %q", ErrUnknownItem, item, catalog)
	}
	return it, nil
}

// Names lists the catalogs in name order.
func (cs *Catalogs) Names() []string {
	names := make([]string, 0, len(cs.catalogs))
	for n := range cs.catalogs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (cs *Catalogs) Len() int { return len(cs.catalogs) }
