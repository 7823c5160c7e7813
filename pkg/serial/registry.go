package serial

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/matzehuels/graphsnap/pkg/codec"
	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/geom"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Registry maps stable wire tags to Go types.
//
// Named types must be registered before they can be encoded or decoded.
// Unnamed composite types need no registration: their tags are type
// expressions built from the tags of their parts, such as "*scene.Node",
// "[]geom.Vector3", "[4]int" or "map[string]*scene.Node".
//
// A Registry is safe for concurrent use. Registration is expected to happen
// at process start, before the first Serialize or Deserialize call.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[string]*typeInfo
	byType map[reflect.Type]*typeInfo
	codecs *codec.Registry

	tags    sync.Map // reflect.Type -> string
	types   sync.Map // string -> reflect.Type
	schemas sync.Map // reflect.Type -> *schema
}

// typeInfo is what the registry knows about a named type.
type typeInfo struct {
	tag     string
	typ     reflect.Type
	enum    *enumInfo
	factory func() reflect.Value // returns a *typ
}

// enumInfo maps the values of an enum type to their symbolic names.
// Values are keyed by their bit pattern widened to 64 bits.
type enumInfo struct {
	names  map[uint64]string
	values map[string]uint64
}

// Default is the registry used by [Serialize] and [Deserialize]. It holds
// the builtin scalar tags and the geom value types.
var Default = NewRegistry()

// NewRegistry returns a registry holding the builtin scalar tags ("bool",
// "int", ..., "float64", "string", "any") and the geom value types with
// their codecs.
func NewRegistry() *Registry {
	r := &Registry{
		byTag:  make(map[string]*typeInfo),
		byType: make(map[reflect.Type]*typeInfo),
		codecs: codec.NewRegistry(),
	}
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[int16](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[uint](),
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[string](),
	} {
		r.add(t.Name(), t)
	}
	r.add("any", reflect.TypeFor[any]())

	geom.RegisterCodecs(r.codecs)
	for _, t := range geom.Types() {
		r.add(geom.TagPrefix+t.Name(), t)
	}
	return r
}

// Codecs returns the value codec registry consulted by the walker.
func (r *Registry) Codecs() *codec.Registry {
	return r.codecs
}

// Register maps tag to the named type T. T may be a struct, a named scalar,
// slice or map type, or an interface used as a declared field type.
//
// Register panics if the tag is malformed, if T cannot be serialized, or if
// tag or T is already registered differently.
func Register[T any](r *Registry, tag string) {
	r.register(tag, reflect.TypeFor[T](), nil)
}

// RegisterEnum registers the integer type E as an enum. Enum values are
// written by their symbolic names; every value that is encoded must have a
// name.
func RegisterEnum[E constraints.Integer](r *Registry, tag string, names map[E]string) {
	t := reflect.TypeFor[E]()
	info := &enumInfo{
		names:  make(map[uint64]string, len(names)),
		values: make(map[string]uint64, len(names)),
	}
	for v, name := range names {
		bits := enumBits(reflect.ValueOf(v))
		if prev, ok := info.values[name]; ok && prev != bits {
			panic(fmt.Sprintf("serial: enum %s has duplicate name %q", tag, name))
		}
		info.names[bits] = name
		info.values[name] = bits
	}
	r.register(tag, t, func(ti *typeInfo) { ti.enum = info })
}

// RegisterValue registers T as a flat value type encoded by the given codec
// pair instead of by its fields.
func RegisterValue[T any](r *Registry, tag string, enc func(T) *tree.Object, dec func(*codec.Reader) (T, error)) {
	r.register(tag, reflect.TypeFor[T](), nil)
	codec.Register(r.codecs, enc, dec)
}

// RegisterFactory registers the struct type T and the factory used to
// allocate it when a *T is decoded. Factories let identity-bearing host
// objects run their own construction instead of starting from the zero
// value; decoded fields are applied on top of what the factory returns.
func RegisterFactory[T any](r *Registry, tag string, factory func() *T) {
	r.register(tag, reflect.TypeFor[T](), func(ti *typeInfo) {
		ti.factory = func() reflect.Value { return reflect.ValueOf(factory()) }
	})
}

func (r *Registry) register(tag string, t reflect.Type, configure func(*typeInfo)) {
	if err := errors.ValidateTagName(tag); err != nil {
		panic("serial: " + err.Error())
	}
	if t.Name() == "" {
		panic(fmt.Sprintf("serial: cannot register unnamed type %s as %q", t, tag))
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer,
		reflect.Complex64, reflect.Complex128, reflect.Uintptr:
		panic(fmt.Sprintf("serial: cannot register %s type %s", t.Kind(), t))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.byTag[tag]
	switch {
	case ok && info.typ != t:
		panic(fmt.Sprintf("serial: tag %q already registered for %s", tag, info.typ))
	case !ok:
		if prev, dup := r.byType[t]; dup {
			panic(fmt.Sprintf("serial: %s already registered as %q", t, prev.tag))
		}
		info = r.addLocked(tag, t)
	}
	if configure != nil {
		configure(info)
	}
}

func (r *Registry) add(tag string, t reflect.Type) *typeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(tag, t)
}

func (r *Registry) addLocked(tag string, t reflect.Type) *typeInfo {
	info := &typeInfo{tag: tag, typ: t}
	r.byTag[tag] = info
	r.byType[t] = info
	return info
}

func (r *Registry) info(t reflect.Type) *typeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

// Tags returns every registered named tag.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// =============================================================================
// Tag resolution
// =============================================================================

// TagOf returns the wire tag of t.
func (r *Registry) TagOf(t reflect.Type) (string, error) {
	if tag, ok := r.tags.Load(t); ok {
		return tag.(string), nil
	}
	tag, err := r.tagOf(t)
	if err != nil {
		return "", err
	}
	r.tags.Store(t, tag)
	return tag, nil
}

func (r *Registry) tagOf(t reflect.Type) (string, error) {
	if info := r.info(t); info != nil {
		return info.tag, nil
	}
	if t.Name() != "" {
		return "", errors.New(errors.ErrCodeUnknownType, "type %s is not registered", t)
	}
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return "", errors.New(errors.ErrCodeUnsupported, "pointer to pointer %s", t)
		}
		elem, err := r.TagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case reflect.Slice:
		elem, err := r.TagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case reflect.Array:
		elem, err := r.TagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "[" + strconv.Itoa(t.Len()) + "]" + elem, nil
	case reflect.Map:
		key, err := r.TagOf(t.Key())
		if err != nil {
			return "", err
		}
		elem, err := r.TagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + elem, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "cannot serialize %s", t)
}

// Resolve returns the Go type named by a wire tag.
func (r *Registry) Resolve(tag string) (reflect.Type, error) {
	if t, ok := r.types.Load(tag); ok {
		return t.(reflect.Type), nil
	}
	t, err := r.resolve(tag)
	if err != nil {
		return nil, err
	}
	r.types.Store(tag, t)
	return t, nil
}

func (r *Registry) resolve(tag string) (reflect.Type, error) {
	switch {
	case strings.HasPrefix(tag, "*"):
		elem, err := r.Resolve(tag[1:])
		if err != nil {
			return nil, err
		}
		if elem.Kind() == reflect.Pointer {
			return nil, errors.New(errors.ErrCodeUnsupported, "pointer to pointer %q", tag)
		}
		return reflect.PointerTo(elem), nil

	case strings.HasPrefix(tag, "[]"):
		elem, err := r.Resolve(tag[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil

	case strings.HasPrefix(tag, "["):
		end := strings.IndexByte(tag, ']')
		if end < 0 {
			return nil, errors.New(errors.ErrCodeUnknownType, "malformed array tag %q", tag)
		}
		n, err := strconv.Atoi(tag[1:end])
		if err != nil || n < 0 {
			return nil, errors.New(errors.ErrCodeUnknownType, "malformed array length in %q", tag)
		}
		elem, err := r.Resolve(tag[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, elem), nil

	case strings.HasPrefix(tag, "map["):
		end := matchBracket(tag, len("map"))
		if end < 0 {
			return nil, errors.New(errors.ErrCodeUnknownType, "malformed map tag %q", tag)
		}
		key, err := r.Resolve(tag[len("map["):end])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, errors.New(errors.ErrCodeUnknownType, "map key %s is not comparable in %q", key, tag)
		}
		elem, err := r.Resolve(tag[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, elem), nil
	}

	r.mu.RLock()
	info, ok := r.byTag[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownType, "no type registered for %q", tag)
	}
	return info.typ, nil
}

// matchBracket returns the index of the ']' closing the '[' at open.
func matchBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// =============================================================================
// Enums
// =============================================================================

func (r *Registry) enum(t reflect.Type) *enumInfo {
	if info := r.info(t); info != nil {
		return info.enum
	}
	return nil
}

func (e *enumInfo) name(v reflect.Value) (string, bool) {
	name, ok := e.names[enumBits(v)]
	return name, ok
}

// set stores the value named name into dst.
func (e *enumInfo) set(dst reflect.Value, name string) bool {
	bits, ok := e.values[name]
	if !ok {
		return false
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(int64(bits))
	default:
		dst.SetUint(bits)
	}
	return true
}

func enumBits(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	}
	return v.Uint()
}

// =============================================================================
// Allocation
// =============================================================================

// alloc returns a new *elem, using the factory registered for elem if any.
func (r *Registry) alloc(elem reflect.Type) reflect.Value {
	if info := r.info(elem); info != nil && info.factory != nil {
		if p := info.factory(); !p.IsNil() {
			return p
		}
	}
	return reflect.New(elem)
}
