package serial

import (
	"reflect"
	"strings"
)

// field is one serialized struct field.
type field struct {
	name  string
	index []int
	typ   reflect.Type
}

// schema is the serialized field list of a struct type, most-derived
// fields first.
type schema struct {
	fields []field
	byName map[string]int
}

func (s *schema) lookup(name string) (field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return field{}, false
	}
	return s.fields[i], true
}

// schemaOf returns the cached schema of the struct type t.
func (r *Registry) schemaOf(t reflect.Type) *schema {
	if s, ok := r.schemas.Load(t); ok {
		return s.(*schema)
	}
	s := buildSchema(t)
	actual, _ := r.schemas.LoadOrStore(t, s)
	return actual.(*schema)
}

// buildSchema lists the serialized fields of t.
//
// Embedded struct values are treated as base types: the fields declared
// directly on t come first, then the fields of each embedded struct in
// declaration order, recursively. A name already taken by a more-derived
// field hides the base field of the same name.
//
// Fields are skipped when they are unexported, tagged `graph:"-"`, or hold
// functions or channels. A `graph:"name"` tag renames the field on the wire.
func buildSchema(t reflect.Type) *schema {
	s := &schema{byName: make(map[string]int)}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		var bases []reflect.StructField
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				if sf.Tag.Get("graph") != "-" {
					bases = append(bases, sf)
				}
				continue
			}
			name, ok := fieldName(sf)
			if !ok {
				continue
			}
			if _, taken := s.byName[name]; taken {
				continue
			}
			s.byName[name] = len(s.fields)
			s.fields = append(s.fields, field{
				name:  name,
				index: append(append([]int(nil), prefix...), i),
				typ:   sf.Type,
			})
		}
		for _, sf := range bases {
			walk(sf.Type, append(append([]int(nil), prefix...), sf.Index...))
		}
	}
	walk(t, nil)
	return s
}

func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	switch sf.Type.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "", false
	}
	tag := sf.Tag.Get("graph")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	if strings.HasPrefix(name, "$") {
		return "", false
	}
	return name, true
}
