package tree

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// UnsupportedValueError is returned when a tree holds a value the writer
// cannot represent, such as a NaN float or a Go type outside the node set.
type UnsupportedValueError struct {
	Value any
	Msg   string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("tree: unsupported value %v (%T): %s", e.Value, e.Value, e.Msg)
}

// Marshal renders n as compact JSON text.
func Marshal(n Node) ([]byte, error) {
	return Append(nil, n)
}

// Write renders n as compact JSON text to w.
func Write(w io.Writer, n Node) error {
	b, err := Marshal(n)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Append renders n as compact JSON text appended to dst.
func Append(dst []byte, n Node) ([]byte, error) {
	switch v := n.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		return strconv.AppendBool(dst, v), nil
	case int64:
		return strconv.AppendInt(dst, v, 10), nil
	case int:
		return strconv.AppendInt(dst, int64(v), 10), nil
	case uint64:
		return strconv.AppendUint(dst, v, 10), nil
	case float32:
		return appendFloat(dst, float64(v), 32)
	case float64:
		return appendFloat(dst, v, 64)
	case string:
		return AppendString(dst, v), nil
	case []Node:
		dst = append(dst, '[')
		for i, el := range v {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = Append(dst, el); err != nil {
				return dst, err
			}
		}
		return append(dst, ']'), nil
	case *Object:
		if v == nil {
			return append(dst, "null"...), nil
		}
		dst = append(dst, '{')
		for i, k := range v.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendString(dst, k)
			dst = append(dst, ':')
			var err error
			if dst, err = Append(dst, v.vals[k]); err != nil {
				return dst, err
			}
		}
		return append(dst, '}'), nil
	}
	return dst, &UnsupportedValueError{Value: n, Msg: "not a tree node"}
}

// appendFloat writes the shortest text that parses back to f at the given
// bit size. Output without a fraction or exponent gets ".0" so the parser
// reads it back as a float.
func appendFloat(dst []byte, f float64, bits int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, &UnsupportedValueError{Value: f, Msg: "NaN and Inf have no JSON number form"}
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, bits)
	for _, c := range dst[start:] {
		if c == '.' || c == 'e' || c == 'E' {
			return dst, nil
		}
	}
	return append(dst, ".0"...), nil
}

const hex = "0123456789abcdef"

// AppendString appends s as a quoted JSON string. Backslash, quote and the
// control characters \n \r \t \b \f use their short escapes, remaining
// control characters use \u00XX, and everything else is copied verbatim.
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
