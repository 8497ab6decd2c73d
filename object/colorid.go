package object

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
)

// ColorID identifies a model by the 24-bit color it is drawn with in the
// picking attachment.
type ColorID uint32

const (
	// NoColorID is the background: nothing was drawn there.
	NoColorID ColorID = 0
	// MaxColorID is the largest id that fits in an RGB8 attachment.
	MaxColorID ColorID = 0xFFFFFF
)

// RGB returns the id as a normalized color, red holding the low byte.
func (id ColorID) RGB() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(id&0xFF) / 255,
		float32(id>>8&0xFF) / 255,
		float32(id>>16&0xFF) / 255,
	}
}

// ColorIDFromRGB is the inverse of RGB for 8-bit channels.
func ColorIDFromRGB(r, g, b uint8) ColorID {
	return ColorID(r) | ColorID(g)<<8 | ColorID(b)<<16
}

func (id ColorID) String() string {
	return fmt.Sprintf("#%06x", uint32(id))
}

// IDAllocator hands out unique color ids, skipping reserved ones.
type IDAllocator struct {
	next     ColorID
	used     *intmap.Map[ColorID, struct{}]
	reserved *intmap.Map[ColorID, struct{}]
}

func NewIDAllocator() *IDAllocator {
	a := &IDAllocator{
		next:     1,
		used:     intmap.New[ColorID, struct{}](256),
		reserved: intmap.New[ColorID, struct{}](8),
	}
	a.Reserve(MaxColorID)
	return a
}

// Reserve keeps id from ever being allocated.
func (a *IDAllocator) Reserve(id ColorID) {
	a.reserved.Put(id, struct{}{})
}

// Alloc returns the next free id. It panics once the id space is exhausted.
func (a *IDAllocator) Alloc() ColorID {
	for tries := ColorID(0); tries < MaxColorID; tries++ {
		id := a.next
		a.next++
		if a.next > MaxColorID {
			a.next = 1
		}
		if a.reserved.Has(id) || a.used.Has(id) {
			continue
		}
		a.used.Put(id, struct{}{})
		return id
	}
	panic("object: color id space exhausted")
}

// Claim marks a specific id as used. It returns false if the id is reserved
// or already taken.
func (a *IDAllocator) Claim(id ColorID) bool {
	if id == NoColorID || id > MaxColorID || a.reserved.Has(id) || a.used.Has(id) {
		return false
	}
	a.used.Put(id, struct{}{})
	return true
}

// Release returns id to the pool.
func (a *IDAllocator) Release(id ColorID) {
	a.used.Del(id)
}

func (a *IDAllocator) Len() int { return a.used.Len() }
