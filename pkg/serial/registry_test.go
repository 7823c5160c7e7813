package serial

import (
	"reflect"
	"testing"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/geom"
)

func TestTagOfResolve(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[int](), "int"},
		{reflect.TypeFor[any](), "any"},
		{reflect.TypeFor[*Node](), "*test.Node"},
		{reflect.TypeFor[[]geom.Vector3](), "[]geom.Vector3"},
		{reflect.TypeFor[[4]float32](), "[4]float32"},
		{reflect.TypeFor[map[string][]*Node](), "map[string][]*test.Node"},
		{reflect.TypeFor[map[[2]int]string](), "map[[2]int]string"},
		{reflect.TypeFor[map[Suit]map[string]int](), "map[test.Suit]map[string]int"},
		{reflect.TypeFor[[]Animal](), "[]test.Animal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			tag, err := r.TagOf(tt.typ)
			if err != nil {
				t.Fatalf("TagOf(%s) error: %v", tt.typ, err)
			}
			if tag != tt.want {
				t.Errorf("TagOf(%s) = %q, want %q", tt.typ, tag, tt.want)
			}
			typ, err := r.Resolve(tag)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tag, err)
			}
			if typ != tt.typ {
				t.Errorf("Resolve(%q) = %s, want %s", tag, typ, tt.typ)
			}
		})
	}
}

func TestTagOfErrors(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		name string
		typ  reflect.Type
		code errors.Code
	}{
		{"unregistered", reflect.TypeFor[unregistered](), errors.ErrCodeUnknownType},
		{"unregistered elem", reflect.TypeFor[[]*unregistered](), errors.ErrCodeUnknownType},
		{"pointer to pointer", reflect.TypeFor[**int](), errors.ErrCodeUnsupported},
		{"func", reflect.TypeFor[func()](), errors.ErrCodeUnsupported},
		{"chan", reflect.TypeFor[chan int](), errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.TagOf(tt.typ)
			if !errors.Is(err, tt.code) {
				t.Errorf("TagOf(%s) error = %v, want %s", tt.typ, err, tt.code)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		tag  string
		code errors.Code
	}{
		{"nope.Thing", errors.ErrCodeUnknownType},
		{"[]nope.Thing", errors.ErrCodeUnknownType},
		{"[x]int", errors.ErrCodeUnknownType},
		{"[3int", errors.ErrCodeUnknownType},
		{"map[string", errors.ErrCodeUnknownType},
		{"map[[]int]string", errors.ErrCodeUnknownType},
		{"**int", errors.ErrCodeUnsupported},
		{"", errors.ErrCodeUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if _, err := r.Resolve(tt.tag); !errors.Is(err, tt.code) {
				t.Errorf("Resolve(%q) error = %v, want %s", tt.tag, err, tt.code)
			}
		})
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(r *Registry)
	}{
		{"invalid tag", func(r *Registry) { Register[Node](r, "$node") }},
		{"unnamed type", func(r *Registry) { Register[[]int](r, "ints") }},
		{"pointer type", func(r *Registry) { Register[*Node](r, "node.ptr") }},
		{"tag taken", func(r *Registry) { Register[Dog](r, "int") }},
		{"type taken", func(r *Registry) { Register[Node](r, "test.Node2") }},
		{"duplicate enum name", func(r *Registry) {
			RegisterEnum(r, "test.Suit2", map[int8]string{1: "A", 2: "A"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(r)
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := newTestRegistry()
	Register[Node](r, "test.Node")
	tag, err := r.TagOf(reflect.TypeFor[Node]())
	if err != nil || tag != "test.Node" {
		t.Errorf("TagOf(Node) = %q, %v", tag, err)
	}
}

func TestSchema(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		typ  reflect.Type
		want []string
	}{
		{reflect.TypeFor[Node](), []string{"Name", "Parent", "Circular", "Children"}},
		{reflect.TypeFor[Dog](), []string{"Name", "Good", "ID", "Tags"}},
		{reflect.TypeFor[Cat](), []string{"ID", "Lives", "Tags"}},
		{reflect.TypeFor[Tagged](), []string{"v"}},
		{reflect.TypeFor[Prefab](), []string{"Mesh", "Layer"}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			s := r.schemaOf(tt.typ)
			var got []string
			for _, f := range s.fields {
				got = append(got, f.name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("schemaOf(%s) = %v, want %v", tt.typ, got, tt.want)
			}
			if r.schemaOf(tt.typ) != s {
				t.Error("schemaOf() is not cached")
			}
		})
	}
}
