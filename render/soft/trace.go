package soft

import (
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
)

// Op is a recorded device call.
type Op uint8

const (
	OpCreate Op = iota
	OpBind
	OpClear
	OpState
	OpDraw
	OpLines
	OpNormals
	OpLight
	OpText
)

var opNames = [...]string{"create", "bind", "clear", "state", "draw", "lines", "normals", "light", "text"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Command is one entry of the device trace. Only the fields relevant to Op
// are set; Target is the bound target at the time of the call.
type Command struct {
	Op      Op
	Target  string
	Layer   int
	Program render.Program
	Mesh    uint32
	ID      object.ColorID
	State   render.State
	Clear   render.ClearFlags
	Source  string
	Shadow  string
	Text    string
	Count   int
}

func (d *Device) record(c Command) {
	d.trace = append(d.trace, c)
}

// Trace returns the commands recorded since the last ResetTrace.
func (d *Device) Trace() []Command { return d.trace }

func (d *Device) ResetTrace() { d.trace = d.trace[:0] }
