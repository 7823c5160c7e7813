// Package codec defines the value codec contract: explicit encode/decode
// pairs for flat, identity-less value types.
//
// A value type has a fixed field layout and value semantics. The object
// walker in [github.com/matzehuels/graphsnap/pkg/serial] consults a codec
// [Registry] before any of its generic strategies; a codec's output keys are
// merged into the serialized record next to "$type":
//
//	{"$type":"geom.Vector3","x":1.5,"y":2.5,"z":3.5}
//
// # Writing a Codec
//
// Most codecs are registered from a pair of typed functions with [Register].
// The decode side reads required keys through a [Reader], which turns a
// missing or mistyped key into a CODEC_CONTRACT error:
//
//	codec.Register(reg,
//	    func(v Vector2) *tree.Object {
//	        return codec.Fields("x", v.X, "y", v.Y)
//	    },
//	    func(r *codec.Reader) (Vector2, error) {
//	        v := Vector2{X: r.Float32("x"), Y: r.Float32("y")}
//	        return v, r.Err()
//	    })
package codec

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Codec encodes and decodes one Go type.
type Codec interface {
	// Type is the exact Go type handled by the codec.
	Type() reflect.Type
	// Encode returns the record fields for v. v always has type Type().
	Encode(v reflect.Value) (*tree.Object, error)
	// Decode builds a value of Type() from record fields. The record may
	// still carry reserved keys such as "$type"; codecs ignore them.
	Decode(obj *tree.Object) (reflect.Value, error)
}

// Registry maps Go types to codecs. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[reflect.Type]Codec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[reflect.Type]Codec)}
}

// Add registers c, replacing any codec previously registered for c.Type().
func (r *Registry) Add(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Type()] = c
}

// Lookup returns the codec registered for t.
func (r *Registry) Lookup(t reflect.Type) (Codec, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[t]
	return c, ok
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}

// TryEncode encodes v with the codec registered for its exact type.
// The boolean is false when no codec matches.
func (r *Registry) TryEncode(v reflect.Value) (*tree.Object, bool, error) {
	if !v.IsValid() {
		return nil, false, nil
	}
	c, ok := r.Lookup(v.Type())
	if !ok {
		return nil, false, nil
	}
	obj, err := c.Encode(v)
	if err != nil {
		return nil, true, err
	}
	return obj, true, nil
}

// TryDecode decodes obj as a value of type t. The boolean is false when no
// codec matches.
func (r *Registry) TryDecode(t reflect.Type, obj *tree.Object) (reflect.Value, bool, error) {
	c, ok := r.Lookup(t)
	if !ok {
		return reflect.Value{}, false, nil
	}
	v, err := c.Decode(obj)
	if err != nil {
		return reflect.Value{}, true, err
	}
	return v, true, nil
}

// funcCodec adapts a typed encode/decode pair to Codec.
type funcCodec[T any] struct {
	typ reflect.Type
	enc func(T) *tree.Object
	dec func(*Reader) (T, error)
}

func (c *funcCodec[T]) Type() reflect.Type { return c.typ }

func (c *funcCodec[T]) Encode(v reflect.Value) (*tree.Object, error) {
	t, ok := v.Interface().(T)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "codec for %s got %s", c.typ, v.Type())
	}
	return c.enc(t), nil
}

func (c *funcCodec[T]) Decode(obj *tree.Object) (reflect.Value, error) {
	t, err := c.dec(NewReader(obj))
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(&t).Elem(), nil
}

// Register adds a codec for T built from a typed encode/decode pair.
func Register[T any](r *Registry, enc func(T) *tree.Object, dec func(*Reader) (T, error)) {
	r.Add(&funcCodec[T]{
		typ: reflect.TypeFor[T](),
		enc: enc,
		dec: dec,
	})
}

// Fields builds a record from alternating key/value arguments. Values must
// be tree nodes or Go numbers convertible to one.
func Fields(kv ...any) *tree.Object {
	if len(kv)%2 != 0 {
		panic("codec: Fields needs key/value pairs")
	}
	obj := tree.NewObject(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("codec: Fields key %d is %T, not string", i/2, kv[i]))
		}
		obj.Set(key, Number(kv[i+1]))
	}
	return obj
}

// Number widens Go numeric values to the node types the tree writer
// understands. NaN and infinities become their string spellings.
// Non-numeric values are returned unchanged.
func Number(v any) tree.Node {
	switch n := v.(type) {
	case float32:
		if s, ok := tree.SpecialFloat(float64(n)); ok {
			return s
		}
	case float64:
		if s, ok := tree.SpecialFloat(n); ok {
			return s
		}
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	}
	return v
}
