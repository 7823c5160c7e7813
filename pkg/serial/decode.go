package serial

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/observability"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// decoder is one Deserialize session. Every materialized map, slice and
// pointer is registered under its path (and "$id", when present) before its
// contents are decoded, so references back to an ancestor resolve.
type decoder struct {
	reg     *Registry
	opts    *options
	logger  *log.Logger
	paths   map[string]reflect.Value
	ids     map[int64]reflect.Value
	records int
	diags   int
	depth   int
}

func newDecoder(reg *Registry, opts *options) *decoder {
	logger := opts.logger
	if logger == nil {
		logger = log.Default()
	}
	return &decoder{
		reg:    reg,
		opts:   opts,
		logger: logger,
		paths:  make(map[string]reflect.Value),
		ids:    make(map[int64]reflect.Value),
	}
}

// decode materializes the record at path. The returned value has the exact
// type named by "$type"; an invalid Value stands for null.
func (d *decoder) decode(path string, node tree.Node) (reflect.Value, error) {
	if node == nil {
		return reflect.Value{}, nil
	}
	obj, ok := node.(*tree.Object)
	if !ok {
		return reflect.Value{}, errors.New(errors.ErrCodeInvalidFormat, "decode %s: want a record, got %s", path, tree.KindOf(node))
	}
	if obj == nil {
		return reflect.Value{}, nil
	}
	if ref, ok := obj.Get(keyRef); ok {
		return d.ref(path, obj, ref)
	}

	tag, ok := obj.String(keyType)
	if !ok {
		return reflect.Value{}, errors.New(errors.ErrCodeInvalidFormat, "decode %s: record has no %s", path, keyType)
	}
	t, err := d.reg.Resolve(tag)
	if err != nil {
		return reflect.Value{}, pathError("decode", path, err)
	}
	if t.Kind() == reflect.Interface {
		return reflect.Value{}, errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s %q names an interface", path, keyType, tag)
	}
	if d.depth >= d.opts.maxDepth {
		return reflect.Value{}, depthError("decode", path, d.opts.maxDepth)
	}
	d.depth++
	defer func() { d.depth-- }()
	d.records++

	if t.Kind() == reflect.Pointer {
		ptr := d.reg.alloc(t.Elem())
		if err := d.register(path, obj, ptr); err != nil {
			return reflect.Value{}, err
		}
		return ptr, d.fill(path, obj, ptr.Elem())
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Map:
		keys, _ := obj.Array(keyKeys)
		v.Set(reflect.MakeMapWithSize(t, len(keys)))
	case reflect.Slice:
		vals, _ := obj.Array(keyValues)
		v.Set(reflect.MakeSlice(t, len(vals), len(vals)))
	}
	if t.Kind() == reflect.Map || t.Kind() == reflect.Slice {
		if err := d.register(path, obj, v); err != nil {
			return reflect.Value{}, err
		}
	}
	return v, d.fill(path, obj, v)
}

func (d *decoder) register(path string, obj *tree.Object, v reflect.Value) error {
	d.paths[path] = v
	idNode, ok := obj.Get(keyID)
	if !ok {
		return nil
	}
	id, ok := tree.Int64(idNode)
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s must be an integer, got %v", path, keyID, idNode)
	}
	d.ids[id] = v
	return nil
}

func (d *decoder) ref(path string, obj *tree.Object, ref tree.Node) (reflect.Value, error) {
	if obj.Len() != 1 {
		return reflect.Value{}, errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s must be the only key of its record", path, keyRef)
	}
	var (
		v  reflect.Value
		ok bool
	)
	if p, isPath := ref.(string); isPath {
		v, ok = d.paths[p]
	} else if id, isID := tree.Int64(ref); isID {
		v, ok = d.ids[id]
	}
	if !ok {
		return reflect.Value{}, errors.New(errors.ErrCodeDanglingRef, "decode %s: %s %v does not name an earlier object", path, keyRef, ref)
	}
	return v, nil
}

// fill decodes the contents of obj into dst, an addressable value of the
// record's type (the pointee, for pointer records). Strategies mirror the
// encoder: value codec, map, list, enum, scalar, struct.
func (d *decoder) fill(path string, obj *tree.Object, dst reflect.Value) error {
	t := dst.Type()
	if v, ok, err := d.reg.codecs.TryDecode(t, obj); ok {
		if err != nil {
			return pathError("decode", path, err)
		}
		dst.Set(v)
		return nil
	}

	switch t.Kind() {
	case reflect.Map:
		return d.dict(path, obj, dst)
	case reflect.Slice, reflect.Array:
		return d.list(path, obj, dst)
	}

	if enum := d.reg.enum(t); enum != nil {
		name, ok := obj.String(keyValue)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "decode %s: enum %s needs a string %s", path, t, keyValue)
		}
		if !enum.set(dst, name) {
			return errors.New(errors.ErrCodeUnknownEnum, "decode %s: %q is not a %s", path, name, t)
		}
		return nil
	}

	if isScalarKind(t.Kind()) {
		return d.scalar(path, obj, dst)
	}
	if t.Kind() == reflect.Struct {
		return d.object(path, obj, dst)
	}
	return errors.New(errors.ErrCodeUnsupported, "decode %s: cannot deserialize %s", path, t)
}

// scalar parses "$value" against the exact type of dst. A literal that does
// not fit is corrupt data, not a recoverable mismatch.
func (d *decoder) scalar(path string, obj *tree.Object, dst reflect.Value) error {
	raw, ok := obj.Get(keyValue)
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s record has no %s", path, dst.Type(), keyValue)
	}
	valid := false
	switch dst.Kind() {
	case reflect.Bool:
		var b bool
		if b, valid = raw.(bool); valid {
			dst.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, valid = tree.Int64(raw); valid && !dst.OverflowInt(n) {
			dst.SetInt(n)
		} else {
			valid = false
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if n, valid = tree.Uint64(raw); valid && !dst.OverflowUint(n) {
			dst.SetUint(n)
		} else {
			valid = false
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, valid = tree.FloatOrSpecial(raw); valid && !(dst.Kind() == reflect.Float32 && overflowsFloat32(f)) {
			dst.SetFloat(f)
		} else {
			valid = false
		}
	case reflect.String:
		var s string
		if s, valid = raw.(string); valid {
			dst.SetString(s)
		}
	}
	if !valid {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s %v is not a valid %s", path, keyValue, raw, dst.Type())
	}
	return nil
}

func (d *decoder) list(path string, obj *tree.Object, dst reflect.Value) error {
	vals, ok := obj.Array(keyValues)
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s record has no %s array", path, dst.Type(), keyValues)
	}
	isSlice := dst.Kind() == reflect.Slice
	if isSlice && (dst.IsNil() || dst.Len() != len(vals)) {
		dst.Set(reflect.MakeSlice(dst.Type(), len(vals), len(vals)))
	}

	n := 0
	for i, node := range vals {
		elemPath := indexPath(path, i)
		v, err := d.decode(elemPath, node)
		if err != nil {
			return err
		}
		if n >= dst.Len() {
			d.diag(elemPath, fmt.Sprintf("index out of range for %s", dst.Type()))
			continue
		}
		if d.assign(elemPath, dst.Index(n), v) || !isSlice {
			n++
		}
	}
	if isSlice && n < dst.Len() {
		dst.Set(dst.Slice(0, n))
	}
	return nil
}

func (d *decoder) dict(path string, obj *tree.Object, dst reflect.Value) error {
	keys, ok := obj.Array(keyKeys)
	vals, ok2 := obj.Array(keyValues)
	if !ok || !ok2 {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s record needs %s and %s arrays", path, dst.Type(), keyKeys, keyValues)
	}
	if len(keys) != len(vals) {
		return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %d keys but %d values", path, len(keys), len(vals))
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), len(keys)))
	}

	t := dst.Type()
	mapKeys := make([]reflect.Value, len(keys))
	for i, node := range keys {
		keyPath := indexPath(path+"."+keyKeys, i)
		v, err := d.decode(keyPath, node)
		if err != nil {
			return err
		}
		k := reflect.New(t.Key()).Elem()
		if !d.assign(keyPath, k, v) {
			continue
		}
		if !k.Comparable() {
			d.diag(keyPath, fmt.Sprintf("%s is not a valid map key", unwrapInterface(k).Type()))
			continue
		}
		mapKeys[i] = k
	}
	for i, node := range vals {
		valPath := indexPath(path+"."+keyValues, i)
		v, err := d.decode(valPath, node)
		if err != nil {
			return err
		}
		if !mapKeys[i].IsValid() {
			continue
		}
		elem := reflect.New(t.Elem()).Elem()
		if d.assign(valPath, elem, v) {
			dst.SetMapIndex(mapKeys[i], elem)
		}
	}
	return nil
}

// object applies identity metadata, then decodes every serialized field.
// Keys without a matching field are still decoded, so that the objects
// they hold are registered in the same order as when they were encoded.
func (d *decoder) object(path string, obj *tree.Object, dst reflect.Value) error {
	if err := d.identity(path, obj, dst); err != nil {
		return err
	}

	sch := d.reg.schemaOf(dst.Type())
	var err error
	obj.Range(func(key string, node tree.Node) bool {
		if strings.HasPrefix(key, "$") {
			return true
		}
		fieldPath := path + "." + key
		v, derr := d.decode(fieldPath, node)
		if derr != nil {
			err = derr
			return false
		}
		f, ok := sch.lookup(key)
		if !ok {
			d.diag(fieldPath, fmt.Sprintf("%s has no field %q", dst.Type(), key))
			return true
		}
		d.assign(fieldPath, dst.FieldByIndex(f.index), v)
		return true
	})
	return err
}

func (d *decoder) identity(path string, obj *tree.Object, dst reflect.Value) error {
	id, ok := identityOf(dst)
	if !ok {
		return nil
	}
	if n, ok := obj.Get(keyName); ok {
		name, ok := n.(string)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s must be a string", path, keyName)
		}
		id.SetIdentityName(name)
	}
	if n, ok := obj.Get(keyFlags); ok {
		flags, ok := tree.Uint64(n)
		if !ok || flags > math.MaxUint32 {
			return errors.New(errors.ErrCodeInvalidFormat, "decode %s: %s must be a 32-bit unsigned integer", path, keyFlags)
		}
		id.SetIdentityFlags(uint32(flags))
	}
	return nil
}

// =============================================================================
// Local recovery
// =============================================================================

// assign stores v into dst, converting where that loses nothing. On failure
// dst is left untouched and a diagnostic is reported.
func (d *decoder) assign(path string, dst, v reflect.Value) bool {
	reason, ok := d.convert(dst, v)
	if !ok {
		d.diag(path, reason)
	}
	return ok
}

// convert tries, in order: null into a nullable type, direct assignment,
// lossless numeric conversion, enum name lookup, same-kind named
// conversion, and pointer/value adaptation.
func (d *decoder) convert(dst, v reflect.Value) (string, bool) {
	t := dst.Type()
	if !v.IsValid() {
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
			dst.SetZero()
			return "", true
		}
		return fmt.Sprintf("null is not assignable to %s", t), false
	}
	if v.Type().AssignableTo(t) {
		dst.Set(v)
		return "", true
	}

	if enum := d.reg.enum(t); enum != nil {
		switch {
		case v.Kind() == reflect.String:
			if enum.set(dst, v.String()) {
				return "", true
			}
			return fmt.Sprintf("%q is not a %s", v.String(), t), false
		case isNumberKind(v.Kind()):
			if n, ok := convertNumber(v, t); ok {
				if _, named := enum.name(n); named {
					dst.Set(n)
					return "", true
				}
			}
			return fmt.Sprintf("%v is not a %s", v, t), false
		}
	}

	if isNumberKind(v.Kind()) && isNumberKind(t.Kind()) {
		if n, ok := convertNumber(v, t); ok {
			dst.Set(n)
			return "", true
		}
		return fmt.Sprintf("%s %v does not fit %s", v.Type(), v, t), false
	}
	if v.Kind() == t.Kind() && (t.Kind() == reflect.String || t.Kind() == reflect.Bool) {
		dst.Set(v.Convert(t))
		return "", true
	}

	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Elem().AssignableTo(t) {
		dst.Set(v.Elem())
		return "", true
	}
	if t.Kind() == reflect.Pointer && v.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		dst.Set(p)
		return "", true
	}
	return fmt.Sprintf("cannot assign %s to %s", v.Type(), t), false
}

// convertNumber converts v to the numeric type t if the value survives
// unchanged.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	var src tree.Node
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		src = v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		src = v.Uint()
	default:
		src = v.Float()
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := tree.Int64(src)
		if !ok || out.OverflowInt(n) {
			return reflect.Value{}, false
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := tree.Uint64(src)
		if !ok || out.OverflowUint(n) {
			return reflect.Value{}, false
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, _ := tree.Float64(src)
		switch n := src.(type) {
		case int64:
			if back, ok := tree.Int64(f); !ok || back != n {
				return reflect.Value{}, false
			}
		case uint64:
			if back, ok := tree.Uint64(f); !ok || back != n {
				return reflect.Value{}, false
			}
		}
		if t.Kind() == reflect.Float32 && !math.IsNaN(f) && float64(float32(f)) != f {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func (d *decoder) diag(path, reason string) {
	d.diags++
	d.logger.Warn("dropped value", "path", path, "reason", reason)
	observability.Serial().OnDiagnostic(path, reason)
	if d.opts.diagnostics != nil {
		d.opts.diagnostics(Diagnostic{Path: path, Message: reason})
	}
}

// =============================================================================
// Helpers
// =============================================================================

func isScalarKind(k reflect.Kind) bool {
	return k == reflect.Bool || k == reflect.String || isNumberKind(k)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func overflowsFloat32(f float64) bool {
	return !math.IsInf(f, 0) && math.IsInf(float64(float32(f)), 0)
}
