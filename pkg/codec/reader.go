package codec

import (
	"math"
	"strconv"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Reader reads required keys from a codec record. The first missing or
// mistyped key is remembered and reported by Err; later reads return zero
// values so decoders can read every field unconditionally and check once.
//
// Readers returned by Object and Records share the error of their parent.
type Reader struct {
	obj    *tree.Object
	prefix string
	err    *error
}

// NewReader returns a Reader over obj.
func NewReader(obj *tree.Object) *Reader {
	return &Reader{obj: obj, err: new(error)}
}

// Err returns the first contract violation seen by r or any Reader derived
// from it.
func (r *Reader) Err() error {
	return *r.err
}

func (r *Reader) failed() bool {
	return *r.err != nil
}

func (r *Reader) fail(key, format string, args ...any) {
	if r.failed() {
		return
	}
	args = append([]any{r.prefix + key}, args...)
	*r.err = errors.New(errors.ErrCodeCodecContract, "key %q: "+format, args...)
}

func (r *Reader) sub(obj *tree.Object, prefix string) *Reader {
	return &Reader{obj: obj, prefix: prefix, err: r.err}
}

func (r *Reader) get(key string) (tree.Node, bool) {
	if r.failed() {
		return nil, false
	}
	v, ok := r.obj.Get(key)
	if !ok {
		r.fail(key, "missing")
		return nil, false
	}
	return v, true
}

// Float64 reads a required number. The strings "NaN", "Infinity" and
// "-Infinity" are accepted in place of a number.
func (r *Reader) Float64(key string) float64 {
	v, ok := r.get(key)
	if !ok {
		return 0
	}
	f, ok := tree.FloatOrSpecial(v)
	if !ok {
		r.fail(key, "want number, got %s", tree.KindOf(v))
	}
	return f
}

// Float32 reads a required number as float32. Values written at 32-bit
// precision convert back exactly.
func (r *Reader) Float32(key string) float32 {
	f := r.Float64(key)
	f32 := float32(f)
	if math.IsInf(float64(f32), 0) && !math.IsInf(f, 0) {
		r.fail(key, "%v overflows float32", f)
		return 0
	}
	return f32
}

// Int64 reads a required integral number.
func (r *Reader) Int64(key string) int64 {
	v, ok := r.get(key)
	if !ok {
		return 0
	}
	n, ok := tree.Int64(v)
	if !ok {
		r.fail(key, "want integer, got %v", v)
	}
	return n
}

// Int32 reads a required integral number within int32 range.
func (r *Reader) Int32(key string) int32 {
	n := r.Int64(key)
	if n < math.MinInt32 || n > math.MaxInt32 {
		r.fail(key, "%d overflows int32", n)
		return 0
	}
	return int32(n)
}

// Uint8 reads a required integral number within 0..255.
func (r *Reader) Uint8(key string) uint8 {
	n := r.Int64(key)
	if n < 0 || n > math.MaxUint8 {
		r.fail(key, "%d out of range for uint8", n)
		return 0
	}
	return uint8(n)
}

// String reads a required string.
func (r *Reader) String(key string) string {
	v, ok := r.get(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "want string, got %s", tree.KindOf(v))
	}
	return s
}

// Array reads a required array.
func (r *Reader) Array(key string) []tree.Node {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	a, ok := v.([]tree.Node)
	if !ok {
		r.fail(key, "want array, got %s", tree.KindOf(v))
	}
	return a
}

// Floats reads a required array of exactly n numbers.
func (r *Reader) Floats(key string, n int) []float64 {
	out := make([]float64, n)
	a := r.Array(key)
	if r.failed() {
		return out
	}
	if len(a) != n {
		r.fail(key, "want %d numbers, got %d", n, len(a))
		return out
	}
	for i, v := range a {
		f, ok := tree.FloatOrSpecial(v)
		if !ok {
			r.fail(key, "element %d is %s, not a number", i, tree.KindOf(v))
			return out
		}
		out[i] = f
	}
	return out
}

// Object returns a Reader over a required nested record.
func (r *Reader) Object(key string) *Reader {
	v, ok := r.get(key)
	if !ok {
		return r.sub(nil, r.prefix+key+".")
	}
	obj, ok := v.(*tree.Object)
	if !ok || obj == nil {
		r.fail(key, "want object, got %s", tree.KindOf(v))
	}
	return r.sub(obj, r.prefix+key+".")
}

// Records reads a required array of nested records and returns one Reader
// per element.
func (r *Reader) Records(key string) []*Reader {
	a := r.Array(key)
	if r.failed() {
		return nil
	}
	out := make([]*Reader, 0, len(a))
	for i, v := range a {
		obj, ok := v.(*tree.Object)
		if !ok || obj == nil {
			r.fail(key, "element %d is %s, not an object", i, tree.KindOf(v))
			return nil
		}
		out = append(out, r.sub(obj, r.prefix+key+"["+strconv.Itoa(i)+"]."))
	}
	return out
}
