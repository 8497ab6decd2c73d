package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/floorplan/ecs"
)

// ManagerViewerCache holds the last collected manager rows.
type ManagerViewerCache struct {
	managers      []ecs.ComponentStats
	sortColumn    int
	sortAscending bool
}

// ManagerViewer tabulates the registry's component managers: live count
// against capacity and update priority.
type ManagerViewer struct {
	cache      *ManagerViewerCache
	selectedID ecs.ComponentID
	selected   bool
}

func NewManagerViewer() *ManagerViewer {
	return &ManagerViewer{
		cache: &ManagerViewerCache{
			sortColumn:    0,
			sortAscending: true,
		},
	}
}

// Render draws the table and returns the manager clicked this frame.
func (mv *ManagerViewer) Render(em *ecs.EntityManager) (ecs.ComponentID, bool) {
	if !imgui.BeginV("Component Managers", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return 0, false
	}

	mv.Refresh(em)

	var (
		clicked   ecs.ComponentID
		isClicked bool
	)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ManagerTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Live / Capacity")
		imgui.TableSetupColumn("Priority")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			mv.cache.sortColumn = int(spec.ColumnIndex())
			mv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			mv.sortManagers()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, m := range mv.cache.managers {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := mv.selected && mv.selectedID == m.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", m.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				mv.selectedID, mv.selected = m.ID, true
				clicked, isClicked = m.ID, true
			}

			imgui.TableNextColumn()
			imgui.Text(m.Name)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d / %d", m.Count, m.Capacity))
			if m.Capacity > 0 {
				barWidth := float32(m.Count) / float32(m.Capacity) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", m.Priority))
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked, isClicked
}

// Refresh collects the current manager statistics.
func (mv *ManagerViewer) Refresh(em *ecs.EntityManager) {
	mv.cache.managers = em.CollectStats().Components
	mv.sortManagers()
}

func (mv *ManagerViewer) Rows() []ecs.ComponentStats {
	return mv.cache.managers
}

func (mv *ManagerViewer) sortManagers() {
	sort.SliceStable(mv.cache.managers, func(i, j int) bool {
		a, b := mv.cache.managers[i], mv.cache.managers[j]
		var less bool

		switch mv.cache.sortColumn {
		case 1:
			less = a.Name < b.Name
		case 2:
			less = a.Count < b.Count
		case 3:
			less = a.Priority < b.Priority
		default:
			less = a.ID < b.ID
		}

		if !mv.cache.sortAscending {
			return !less
		}
		return less
	})
}
