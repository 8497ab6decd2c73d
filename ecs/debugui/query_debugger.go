package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/floorplan/ecs"
)

// QueryDebugger lists the entities carrying every selected component type.
type QueryDebugger struct {
	selectedComponentTypes map[string]bool
	componentTypes         []string
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selectedComponentTypes: make(map[string]bool),
	}
}

func (qd *QueryDebugger) Render(em *ecs.EntityManager) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(em.Registry())

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, compType := range qd.componentTypes {
		selected := qd.selectedComponentTypes[compType]
		if imgui.Checkbox(compType, &selected) {
			qd.Toggle(compType, selected)
		}
	}

	imgui.Separator()

	mask, ok := qd.Mask(em.Registry())
	if !ok {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matching := MatchMask(em, mask)
	imgui.Text(fmt.Sprintf("Mask: 0x%X", mask))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matching)))

	if imgui.TreeNodeStr("Entity Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryEntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity ID")
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Mask")
			imgui.TableHeadersRow()

			for _, e := range matching {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%d", e.ID()))

				imgui.TableSetColumnIndex(1)
				imgui.Text(e.Name())

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("0x%X", e.Mask()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// Toggle adds or removes a component type name from the query.
func (qd *QueryDebugger) Toggle(name string, on bool) {
	if on {
		qd.selectedComponentTypes[name] = true
		return
	}
	delete(qd.selectedComponentTypes, name)
}

// Mask is the capability mask of the selected types. It reports false when
// nothing registered is selected.
func (qd *QueryDebugger) Mask(reg *ecs.Registry) (uint64, bool) {
	var mask uint64
	for name := range qd.selectedComponentTypes {
		if m := reg.GetByCompName(name); m != nil {
			mask |= 1 << m.ID()
		}
	}
	return mask, mask != 0
}

func (qd *QueryDebugger) rebuildCacheIfNeeded(reg *ecs.Registry) {
	if len(qd.componentTypes) == reg.Count() {
		return
	}

	qd.componentTypes = make([]string, 0, reg.Count())
	for _, m := range reg.Managers() {
		qd.componentTypes = append(qd.componentTypes, m.Name())
	}

	sort.Strings(qd.componentTypes)
}

// MatchMask returns the entities whose capability mask contains mask.
func MatchMask(em *ecs.EntityManager, mask uint64) []*ecs.Entity {
	matching := make([]*ecs.Entity, 0)
	for _, e := range em.Entities() {
		if e.Mask()&mask == mask {
			matching = append(matching, e)
		}
	}
	return matching
}
