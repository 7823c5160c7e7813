package serial

import (
	"reflect"
	"time"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/observability"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Serializer encodes and decodes object graphs against one registry.
//
// A Serializer holds no per-call state: every call starts a fresh session
// with its own identity maps, so one Serializer may be shared between
// goroutines.
type Serializer struct {
	reg  *Registry
	opts options
}

// New returns a Serializer over reg. A nil reg means [Default].
func New(reg *Registry, opts ...Option) *Serializer {
	if reg == nil {
		reg = Default
	}
	s := &Serializer{reg: reg, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Registry returns the registry s resolves types against.
func (s *Serializer) Registry() *Registry {
	return s.reg
}

// Encode walks v and returns its value tree. The root record sits at path
// "root"; a nil v encodes as null.
func (s *Serializer) Encode(v any) (tree.Node, error) {
	start := time.Now()
	e := newEncoder(s.reg, &s.opts)
	node, err := e.encode(rootPath, addressable(reflect.ValueOf(v)))
	observability.Serial().OnEncode(rootType(node), e.records, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Serialize encodes v and renders it as compact text.
func (s *Serializer) Serialize(v any) (string, error) {
	node, err := s.Encode(v)
	if err != nil {
		return "", err
	}
	b, err := tree.Marshal(node)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write document")
	}
	return string(b), nil
}

// Parse reads document text with a nesting bound wide enough for any
// document s can encode.
func (s *Serializer) Parse(data []byte) (tree.Node, error) {
	node, err := tree.ParseLimit(data, s.opts.parseNesting())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "parse document")
	}
	return node, nil
}

// Decode parses text and reconstructs the graph it describes.
func Decode[T any](s *Serializer, text string) (T, error) {
	node, err := s.Parse([]byte(text))
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeTree[T](s, node)
}

// DecodeTree reconstructs the graph described by a parsed document. It
// fails with TYPE_MISMATCH when the root is not assignable to T.
func DecodeTree[T any](s *Serializer, node tree.Node) (T, error) {
	var out T
	start := time.Now()
	d := newDecoder(s.reg, &s.opts)
	v, err := d.decode(rootPath, node)
	if err == nil {
		err = setRoot(reflect.ValueOf(&out).Elem(), v)
	}
	observability.Serial().OnDecode(rootType(node), d.records, d.diags, time.Since(start), err)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Serialize encodes v with the [Default] registry.
func Serialize(v any, opts ...Option) (string, error) {
	return New(Default, opts...).Serialize(v)
}

// Deserialize decodes text with the [Default] registry.
func Deserialize[T any](text string, opts ...Option) (T, error) {
	return Decode[T](New(Default, opts...), text)
}

func setRoot(dst, v reflect.Value) error {
	t := dst.Type()
	if !v.IsValid() {
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
			return nil
		}
		return errors.New(errors.ErrCodeTypeMismatch, "root is null, want %s", t)
	}
	if !v.Type().AssignableTo(t) {
		return errors.New(errors.ErrCodeTypeMismatch, "root is %s, want %s", v.Type(), t)
	}
	dst.Set(v)
	return nil
}

// addressable returns an addressable copy of a struct or array value so that
// identity metadata can be read through its methods.
func addressable(v reflect.Value) reflect.Value {
	if !v.IsValid() || v.CanAddr() {
		return v
	}
	switch v.Kind() {
	case reflect.Struct, reflect.Array:
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		return c
	}
	return v
}

func rootType(node tree.Node) string {
	obj, ok := node.(*tree.Object)
	if !ok {
		return ""
	}
	tag, _ := obj.String(keyType)
	return tag
}
