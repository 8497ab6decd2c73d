package components

import "github.com/plus3/floorplan/ecs"

// Catalog records which catalog item an entity was placed from.
type Catalog struct {
	ecs.Base
	Catalog   string `inspect:"readonly"`
	Item      string `inspect:"readonly"`
	Category  string `inspect:"readonly"`
	Thumbnail string
}

func (c *Catalog) Serialize(o ecs.Object) {
	o["catalog"] = c.Catalog
	o["item"] = c.Item
	if c.Category != "" {
		o["category"] = c.Category
	}
	if c.Thumbnail != "" {
		o["thumbnail"] = c.Thumbnail
	}
}

func (c *Catalog) Deserialize(o ecs.Object) error {
	c.Catalog = o.String("catalog", c.Catalog)
	c.Item = o.String("item", c.Item)
	c.Category = o.String("category", c.Category)
	c.Thumbnail = o.String("thumbnail", c.Thumbnail)
	return nil
}
