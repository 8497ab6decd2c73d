package debugui

import (
	"reflect"
	"sync"

	"github.com/plus3/floorplan/ecs"
)

var baseType = reflect.TypeFor[ecs.Base]()

// inspectTag controls a field in the inspector: "-" hides it, "readonly"
// shows it without an input.
const inspectTag = "inspect"

type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	IsStruct  bool
	IsSlice   bool
	IsMap     bool
	IsArray   bool
	// Vector is the length of a float array of at most 4 elements
	// (positions, colors), otherwise 0.
	Vector    int
	ReadOnly  bool
}

type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

// GetFields lists the exported fields of struct type t, leaving out the
// embedded component bookkeeping and fields tagged inspect:"-".
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get(inspectTag)
			if !field.IsExported() || field.Type == baseType || tag == "-" {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
				IsStruct:  fieldType.Kind() == reflect.Struct,
				IsSlice:   fieldType.Kind() == reflect.Slice,
				IsMap:     fieldType.Kind() == reflect.Map,
				IsArray:   fieldType.Kind() == reflect.Array,
				Vector:    vectorLen(fieldType),
				ReadOnly:  tag == "readonly",
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

func vectorLen(t reflect.Type) int {
	if t.Kind() != reflect.Array || t.Len() > 4 {
		return 0
	}
	switch t.Elem().Kind() {
	case reflect.Float32, reflect.Float64:
		return t.Len()
	}
	return 0
}

var globalReflectionCache = NewReflectionCache()
