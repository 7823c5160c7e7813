package tree

import "math"

// Node is a single value of the tree. See the package documentation for the
// set of dynamic types a Node may hold.
type Node = any

// Kind classifies a Node.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// KindOf reports the kind of n. Values outside the node set report KindInvalid.
func KindOf(n Node) Kind {
	switch v := n.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64, int:
		return KindInt
	case uint64:
		return KindUint
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case []Node:
		return KindArray
	case *Object:
		if v == nil {
			return KindNull
		}
		return KindObject
	}
	return KindInvalid
}

// IsNumber reports whether n is an integral or floating-point number.
func IsNumber(n Node) bool {
	switch KindOf(n) {
	case KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// Spellings of the float values that JSON numbers cannot hold.
const (
	NaNText    = "NaN"
	PosInfText = "Infinity"
	NegInfText = "-Infinity"
)

// SpecialFloat returns the string spelling of f if f is NaN or infinite.
func SpecialFloat(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return NaNText, true
	case math.IsInf(f, 1):
		return PosInfText, true
	case math.IsInf(f, -1):
		return NegInfText, true
	}
	return "", false
}

// FloatOrSpecial is like Float64 but also accepts the spellings returned by
// SpecialFloat.
func FloatOrSpecial(n Node) (float64, bool) {
	switch n {
	case NaNText:
		return math.NaN(), true
	case PosInfText:
		return math.Inf(1), true
	case NegInfText:
		return math.Inf(-1), true
	}
	return Float64(n)
}

// Float64 returns n as a float64 if it is any kind of number.
func Float64(n Node) (float64, bool) {
	switch v := n.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Int64 returns n as an int64 if it is a number with an exact int64
// representation.
func Int64(n Node) (int64, bool) {
	switch v := n.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	}
	return 0, false
}

// Uint64 returns n as a uint64 if it is a non-negative number with an exact
// uint64 representation.
func Uint64(n Node) (uint64, bool) {
	switch v := n.(type) {
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	case float32, float64:
		f, _ := Float64(v)
		if f < 0 || f >= 1<<64 || f != float64(uint64(f)) {
			return 0, false
		}
		return uint64(f), true
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f < -(1<<63) || f >= 1<<63 || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
