package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Valuer is implemented by types that convert themselves into a Value.
// Errors returned by TemplateValue abort the render and reach the caller.
type Valuer interface {
	TemplateValue() (Value, error)
}

var (
	valueType  = reflect.TypeOf(Value{})
	valuerType = reflect.TypeOf((*Valuer)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
)

// From converts an arbitrary Go value into a Value.
//
//   - nil, nil pointers, nil maps/slices/interfaces become Null
//   - bool, integer and float kinds become Bool and Number
//   - strings, time.Time (RFC 3339) and fmt.Stringer scalars become String
//   - slices and arrays become List
//   - maps become Record with keys sorted
//   - structs become Record of their exported fields; embedded structs are
//     flattened, the tag `tpl:"name"` renames a field and `tpl:"-"` skips it
//   - Valuer implementations convert themselves
//
// Cycles are cut: a pointer, map or slice already being converted becomes
// Null where it recurs.
func From(v any) (Value, error) {
	c := converter{visiting: make(map[visitKey]bool)}
	return c.convert(reflect.ValueOf(v))
}

// MustFrom is like From but panics on error. It is intended for tests and
// static models.
func MustFrom(v any) Value {
	out, err := From(v)
	if err != nil {
		panic(err)
	}
	return out
}

// visitKey identifies a pointer, map or slice under conversion. Slices
// sharing a backing array differ by length.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type converter struct {
	visiting map[visitKey]bool
}

// enter marks rv as being converted. It returns false when rv is already
// on the conversion path.
func (c *converter) enter(rv reflect.Value) (visitKey, bool) {
	key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if c.visiting[key] {
		return key, false
	}
	c.visiting[key] = true
	return key, true
}

func (c *converter) convert(rv reflect.Value) (Value, error) {
	if !rv.IsValid() || !rv.CanInterface() {
		return Null(), nil
	}

	if rv.Type() == valueType {
		return rv.Interface().(Value), nil
	}

	if rv.Type().Implements(valuerType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return Null(), nil
		}
		out, err := rv.Interface().(Valuer).TemplateValue()
		if err != nil {
			return Null(), fmt.Errorf("%s: %w", rv.Type(), err)
		}
		return out, nil
	}

	if rv.Type() == timeType {
		return String(rv.Interface().(time.Time).Format(time.RFC3339)), nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		key, ok := c.enter(rv)
		if !ok {
			return Null(), nil
		}
		defer delete(c.visiting, key)
		return c.convert(rv.Elem())

	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convert(rv.Elem())
	}

	if s, ok := stringer(rv); ok {
		return String(s), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		key, ok := c.enter(rv)
		if !ok {
			return Null(), nil
		}
		defer delete(c.visiting, key)
		return c.convertList(rv)
	case reflect.Array:
		return c.convertList(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		key, ok := c.enter(rv)
		if !ok {
			return Null(), nil
		}
		defer delete(c.visiting, key)
		return c.convertMap(rv)
	case reflect.Struct:
		rec := NewRecord(rv.NumField())
		if err := c.convertStruct(rv, rec); err != nil {
			return Null(), err
		}
		return RecordValue(rec), nil
	default:
		// Channels, funcs and complex numbers have no template form.
		return Null(), nil
	}
}

// stringer reports the String() form of scalar named types such as enums.
// Structs, maps and slices keep their structure even when they implement
// fmt.Stringer.
func stringer(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return "", false
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

func (c *converter) convertList(rv reflect.Value) (Value, error) {
	items := make([]Value, rv.Len())
	for i := range items {
		item, err := c.convert(rv.Index(i))
		if err != nil {
			return Null(), fmt.Errorf("[%d]: %w", i, err)
		}
		items[i] = item
	}
	return List(items...), nil
}

func (c *converter) convertMap(rv reflect.Value) (Value, error) {
	type entry struct {
		name  string
		value reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{name: keyString(iter.Key()), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	rec := NewRecord(len(entries))
	for _, e := range entries {
		v, err := c.convert(e.value)
		if err != nil {
			return Null(), fmt.Errorf("%s: %w", e.name, err)
		}
		rec.Set(e.name, v)
	}
	return RecordValue(rec), nil
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func (c *converter) convertStruct(rv reflect.Value, rec *Record) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("tpl")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if field.Anonymous && name == "" {
			embedded := rv.Field(i)
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && embedded.Type() != timeType {
				if err := c.convertStruct(embedded, rec); err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		v, err := c.convert(rv.Field(i))
		if err != nil {
			return fmt.Errorf("%s.%s: %w", rt.Name(), field.Name, err)
		}
		rec.Set(name, v)
	}
	return nil
}
