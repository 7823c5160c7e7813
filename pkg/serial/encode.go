package serial

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Reserved record keys.
const (
	keyType   = "$type"
	keyRef    = "$ref"
	keyID     = "$id"
	keyValue  = "$value"
	keyValues = "$values"
	keyKeys   = "$keys"
	keyName   = "$name"
	keyFlags  = "$flags"
)

// rootPath is the path of the top-level record.
const rootPath = "root"

// encoder is one Serialize session. It maps every tracked reference to the
// path and id of its first occurrence.
type encoder struct {
	reg     *Registry
	opts    *options
	paths   map[objectKey]string
	ids     map[objectKey]int64
	records int
	depth   int
}

func newEncoder(reg *Registry, opts *options) *encoder {
	return &encoder{
		reg:   reg,
		opts:  opts,
		paths: make(map[objectKey]string),
		ids:   make(map[objectKey]int64),
	}
}

// encode returns the record for v at path.
func (e *encoder) encode(path string, v reflect.Value) (tree.Node, error) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
	}

	key, tracked := trackKey(v)
	if tracked {
		if prev, seen := e.paths[key]; seen {
			ref := tree.NewObject(1)
			if e.opts.refMode == RefID {
				ref.Set(keyRef, e.ids[key])
			} else {
				ref.Set(keyRef, prev)
			}
			return ref, nil
		}
	}

	tag, err := e.reg.TagOf(v.Type())
	if err != nil {
		return nil, pathError("encode", path, err)
	}
	if e.depth >= e.opts.maxDepth {
		return nil, depthError("encode", path, e.opts.maxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	rec := tree.NewObject(4)
	rec.Set(keyType, tag)
	if tracked {
		id := int64(len(e.paths) + 1)
		e.paths[key] = path
		e.ids[key] = id
		if e.opts.refMode == RefID {
			rec.Set(keyID, id)
		}
	}
	e.records++

	body := v
	if v.Kind() == reflect.Pointer {
		body = v.Elem()
	}
	if err := e.body(path, rec, body); err != nil {
		return nil, err
	}
	return rec, nil
}

// body writes the contents of v into rec. Strategies are tried in order:
// value codec, list, map, enum, scalar, struct.
func (e *encoder) body(path string, rec *tree.Object, v reflect.Value) error {
	if fields, ok, err := e.reg.codecs.TryEncode(v); ok {
		if err != nil {
			return pathError("encode", path, err)
		}
		fields.Range(func(k string, n tree.Node) bool {
			rec.Set(k, n)
			return true
		})
		return nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return e.list(path, rec, v)
	case reflect.Map:
		return e.dict(path, rec, v)
	}

	if enum := e.reg.enum(v.Type()); enum != nil {
		name, ok := enum.name(v)
		if !ok {
			return errors.New(errors.ErrCodeUnknownEnum, "encode %s: %s value %v has no name", path, v.Type(), v)
		}
		rec.Set(keyValue, name)
		return nil
	}

	if n, ok := scalarNode(v); ok {
		rec.Set(keyValue, n)
		return nil
	}

	if v.Kind() == reflect.Struct {
		return e.object(path, rec, v)
	}
	return errors.New(errors.ErrCodeUnsupported, "encode %s: cannot serialize %s", path, v.Type())
}

func (e *encoder) list(path string, rec *tree.Object, v reflect.Value) error {
	vals := make([]tree.Node, v.Len())
	for i := range vals {
		n, err := e.encode(indexPath(path, i), v.Index(i))
		if err != nil {
			return err
		}
		vals[i] = n
	}
	rec.Set(keyValues, vals)
	return nil
}

// dict writes a map as parallel key and value arrays. Entries are sorted by
// key, and all keys are encoded before any value, so that a reference shared
// between a key and a value is always first met in the same place.
func (e *encoder) dict(path string, rec *tree.Object, v reflect.Value) error {
	keys := v.MapKeys()
	slices.SortFunc(keys, compareKeys)

	ks := make([]tree.Node, len(keys))
	for i, k := range keys {
		n, err := e.encode(indexPath(path+"."+keyKeys, i), k)
		if err != nil {
			return err
		}
		ks[i] = n
	}
	vs := make([]tree.Node, len(keys))
	for i, k := range keys {
		n, err := e.encode(indexPath(path+"."+keyValues, i), v.MapIndex(k))
		if err != nil {
			return err
		}
		vs[i] = n
	}
	rec.Set(keyKeys, ks)
	rec.Set(keyValues, vs)
	return nil
}

func (e *encoder) object(path string, rec *tree.Object, v reflect.Value) error {
	// Map values and elements of arrays held in interfaces are not
	// addressable; a copy still exposes the pointer-receiver Identity.
	if !v.CanAddr() && v.CanInterface() {
		v = addressable(v)
	}
	if id, ok := identityOf(v); ok {
		rec.Set(keyName, id.IdentityName())
		rec.Set(keyFlags, uint64(id.IdentityFlags()))
	}
	for _, f := range e.reg.schemaOf(v.Type()).fields {
		n, err := e.encode(path+"."+f.name, v.FieldByIndex(f.index))
		if err != nil {
			return err
		}
		rec.Set(f.name, n)
	}
	return nil
}

// scalarNode returns the "$value" literal of a bool, number or string.
func scalarNode(v reflect.Value) (tree.Node, bool) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Float32:
		f := v.Float()
		if s, special := tree.SpecialFloat(f); special {
			return s, true
		}
		return float32(f), true
	case reflect.Float64:
		f := v.Float()
		if s, special := tree.SpecialFloat(f); special {
			return s, true
		}
		return f, true
	case reflect.String:
		return v.String(), true
	}
	return nil, false
}

// compareKeys orders map keys: numbers, strings and booleans by value,
// anything else by its printed form. Keys of different dynamic types (in
// maps keyed by an interface) are grouped by type name first.
func compareKeys(a, b reflect.Value) int {
	a, b = unwrapInterface(a), unwrapInterface(b)
	switch {
	case !a.IsValid() || !b.IsValid():
		return cmp.Compare(boolRank(a.IsValid()), boolRank(b.IsValid()))
	case a.Type() != b.Type():
		return cmp.Compare(a.Type().String(), b.Type().String())
	}
	switch a.Kind() {
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Bool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func unwrapInterface(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// pathError wraps err with the path it occurred at, keeping its code.
func pathError(op, path string, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "%s %s", op, path)
}

// depthPathSegments is how much of a path a depth error quotes.
const depthPathSegments = 8

// depthError reports nesting beyond limit. Only the tail of path is kept.
func depthError(op, path string, limit int) error {
	dots := 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			if dots++; dots == depthPathSegments {
				path = "..." + path[i:]
				break
			}
		}
	}
	return errors.New(errors.ErrCodeDepthExceeded, "%s %s: nesting exceeds %d", op, path, limit)
}
