package ecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Object is a decoded JSON document node. Numbers decoded by ParseObject are
// json.Number so integer and float fields can be told apart on read.
type Object map[string]any

// Number is the set of element types a JSON vector can be decoded into.
type Number interface {
	float32 | float64 | int | int32 | int64 | uint8 | uint16 | uint32
}

// ParseObject decodes a JSON object.
func ParseObject(data []byte) (Object, error) {
	return ReadObject(bytes.NewReader(data))
}

// ReadObject decodes a single JSON object from r.
func ReadObject(r io.Reader) (Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var o Object
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("decode object: %w: document is null", ErrFieldType)
	}
	return o, nil
}

// Marshal encodes the object as indented JSON.
func (o Object) Marshal() ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o Object) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// RequireString returns the string at key or ErrMissingField.
func (o Object) RequireString(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrFieldType, key, v)
	}
	return s, nil
}

func (o Object) Float(key string, def float64) float64 {
	if f, ok := toFloat(o[key]); ok {
		return f
	}
	return def
}

func (o Object) Float32(key string, def float32) float32 {
	if f, ok := toFloat(o[key]); ok {
		return float32(f)
	}
	return def
}

func (o Object) Int(key string, def int) int {
	if i, ok := toInt(o[key]); ok {
		return int(i)
	}
	return def
}

func (o Object) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	switch v := o[key].(type) {
	case Object:
		return v, true
	case map[string]any:
		return Object(v), true
	}
	return nil, false
}

// Objects returns the array of objects at key. A missing key yields nil.
func (o Object) Objects(key string) ([]Object, error) {
	v, ok := o[key]
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]Object); ok {
			return typed, nil
		}
		return nil, fmt.Errorf("%w: %q is %T, want array", ErrFieldType, key, v)
	}

	out := make([]Object, 0, len(arr))
	for i, item := range arr {
		switch obj := item.(type) {
		case Object:
			out = append(out, obj)
		case map[string]any:
			out = append(out, Object(obj))
		default:
			return nil, fmt.Errorf("%w: %s[%d] is %T, want object", ErrFieldType, key, i, item)
		}
	}
	return out, nil
}

// Strings returns the string array at key. A lone string is a one-element list.
func (o Object) Strings(key string) []string {
	switch v := o[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Vector decodes the array at key into dst. Float targets take the number as
// written; integer targets round it. It returns false, leaving dst untouched,
// when the key is missing or the array length differs from len(dst).
func Vector[E Number](o Object, key string, dst []E) bool {
	arr, ok := o[key].([]any)
	if !ok || len(arr) != len(dst) {
		return false
	}

	var zero E
	isFloat := false
	switch any(zero).(type) {
	case float32, float64:
		isFloat = true
	}

	tmp := make([]E, len(dst))
	for i, item := range arr {
		if isFloat {
			f, ok := toFloat(item)
			if !ok {
				return false
			}
			tmp[i] = E(f)
			continue
		}
		n, ok := toInt(item)
		if !ok {
			return false
		}
		tmp[i] = E(n)
	}
	copy(dst, tmp)
	return true
}

func (o Object) Vec2(key string, def mgl32.Vec2) mgl32.Vec2 {
	Vector(o, key, def[:])
	return def
}

func (o Object) Vec3(key string, def mgl32.Vec3) mgl32.Vec3 {
	Vector(o, key, def[:])
	return def
}

func (o Object) Vec4(key string, def mgl32.Vec4) mgl32.Vec4 {
	Vector(o, key, def[:])
	return def
}

// Quat reads a rotation stored as [x, y, z, w]. Values that are not unit
// length are normalized; unit values are returned exactly as stored.
func (o Object) Quat(key string, def mgl32.Quat) mgl32.Quat {
	var v [4]float32
	if !Vector(o, key, v[:]) {
		return def
	}
	q := mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
	if l := q.Len(); l > 0 && math.Abs(float64(l)-1) > 1e-5 {
		q = q.Normalize()
	}
	return q
}

// Color reads a 0-255 RGBA array and normalizes it to [0,1].
func (o Object) Color(key string, def mgl32.Vec4) mgl32.Vec4 {
	var c [4]int
	if !Vector(o, key, c[:]) {
		return def
	}
	var out mgl32.Vec4
	for i, ch := range c {
		out[i] = float32(min(max(ch, 0), 255)) / 255
	}
	return out
}

func (o Object) SetVec2(key string, v mgl32.Vec2) { o[key] = floats(v[:]) }
func (o Object) SetVec3(key string, v mgl32.Vec3) { o[key] = floats(v[:]) }
func (o Object) SetVec4(key string, v mgl32.Vec4) { o[key] = floats(v[:]) }

func (o Object) SetQuat(key string, q mgl32.Quat) {
	o[key] = floats([]float32{q.V[0], q.V[1], q.V[2], q.W})
}

// SetColor stores a [0,1] color as a 0-255 RGBA array.
func (o Object) SetColor(key string, c mgl32.Vec4) {
	out := make([]any, 4)
	for i, ch := range c {
		out[i] = int(math.Round(float64(min(max(ch, 0), 1)) * 255))
	}
	o[key] = out
}

// Clone deep-copies nested objects and arrays. Leaf values are shared.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	return cloneValue(o).(Object)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Object:
		out := make(Object, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(Object, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []Object:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

func floats(v []float32) []any {
	out := make([]any, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(math.Round(f)), err == nil
	case float64:
		return int64(math.Round(n)), true
	case float32:
		return int64(math.Round(float64(n))), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
