package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/floorplan/ecs"
)

// maxInspectDepth bounds how far nested structs are expanded.
const maxInspectDepth = 4

// ComponentInspector shows and edits the fields of one entity's components.
// Edits write straight into the live component.
type ComponentInspector struct {
	selectedEntityId ecs.EntityID
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(em *ecs.EntityManager, selectedEntityId ecs.EntityID) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	entity := em.GetEntityByID(ci.selectedEntityId)
	if entity == nil {
		imgui.Text(fmt.Sprintf("Entity %d not found", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", entity.ID()))
	imgui.Text(fmt.Sprintf("Name: %s", entity.Name()))
	if entity.Prefab() != "" {
		imgui.Text(fmt.Sprintf("Prefab: %s", entity.Prefab()))
	}
	active := entity.Active()
	if imgui.Checkbox("Active", &active) {
		entity.SetActive(active)
	}
	if em.Pending(entity.ID()) {
		imgui.TextColored(imgui.NewVec4(1.0, 0.4, 0.4, 1.0), "pending destruction")
	} else if imgui.Button("Destroy") {
		em.DestroyEntity(entity.ID())
	}
	imgui.Separator()

	reg := em.Registry()
	for _, c := range entity.ComponentsByCreation() {
		name := fmt.Sprintf("#%d", c.TypeID())
		if m := reg.GetByCompID(c.TypeID()); m != nil {
			name = m.Name()
		}

		if imgui.TreeNodeStr(fmt.Sprintf("%s (priority %d)", name, c.UpdatePriority())) {
			ci.renderComponent(c)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(component ecs.Component) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}

		ci.renderField(field.Name, field.Name, fieldVal, field, 0)
	}
}

// renderField draws one editable field. id keeps ImGui labels unique
// across nested fields with the same name.
func (ci *ComponentInspector) renderField(name, id string, val reflect.Value, field FieldInfo, depth int) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.Kind() == reflect.Ptr && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	if field.ReadOnly {
		imgui.TextColored(imgui.NewVec4(0.6, 0.6, 0.6, 1), fmt.Sprintf("%s: %v", name, val.Interface()))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", id), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", id), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", id), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(fmt.Sprintf("%s##%s", name, id), &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", id), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Array:
		if field.Vector == 0 {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
			return
		}
		ci.renderVector(name, id, val)

	case reflect.Struct:
		if depth >= maxInspectDepth {
			imgui.Text(fmt.Sprintf("%s: %s", name, val.Type()))
			return
		}
		if imgui.TreeNodeStr(fmt.Sprintf("%s##%s", name, id)) {
			for _, nf := range globalReflectionCache.GetFields(val.Type()) {
				nestedVal := val.Field(nf.Index)
				if nf.IsPointer && !nestedVal.IsNil() {
					nestedVal = nestedVal.Elem()
				}
				ci.renderField(nf.Name, id+"."+nf.Name, nestedVal, nf, depth+1)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

// renderVector edits small float arrays (vectors, colors) in one row.
func (ci *ComponentInspector) renderVector(name, id string, val reflect.Value) {
	imgui.Text(fmt.Sprintf("%s:", name))
	for i := 0; i < val.Len(); i++ {
		imgui.SameLine()
		imgui.SetNextItemWidth(70)
		v := float32(val.Index(i).Float())
		if imgui.InputFloat(fmt.Sprintf("##%s.%d", id, i), &v) && val.Index(i).CanSet() {
			val.Index(i).SetFloat(float64(v))
		}
	}
}
