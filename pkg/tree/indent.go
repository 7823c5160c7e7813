package tree

import (
	"bytes"
	"strings"
)

// Indent appends to dst a copy of src with a newline and indentation after
// every opening bracket, comma and before every closing bracket, and a space
// after every colon. Empty objects and arrays stay on one line. Only text
// outside quoted strings is touched; src is not otherwise validated.
func Indent(dst *bytes.Buffer, src []byte, indent string) error {
	var (
		depth    int
		inString bool
		escaped  bool
		open     = -1 // offset in src of the string being scanned
	)
	newline := func() {
		dst.WriteByte('\n')
		dst.WriteString(strings.Repeat(indent, depth))
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			dst.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
		case '"':
			inString, open = true, i
			dst.WriteByte(c)
		case '{', '[':
			dst.WriteByte(c)
			if next := nextSignificant(src, i+1); next == '}' || next == ']' {
				continue
			}
			depth++
			newline()
		case '}', ']':
			if prev := lastSignificant(dst.Bytes()); prev != '{' && prev != '[' {
				depth--
				if depth < 0 {
					return &SyntaxError{Offset: i, Char: rune(c), Msg: "unbalanced closing bracket"}
				}
				newline()
			}
			dst.WriteByte(c)
		case ',':
			dst.WriteByte(c)
			newline()
		case ':':
			dst.WriteString(": ")
		default:
			dst.WriteByte(c)
		}
	}
	if inString {
		return &SyntaxError{Offset: open, Char: '"', Msg: "unterminated string"}
	}
	if depth != 0 {
		return &SyntaxError{Offset: len(src), Char: -1, Msg: "unbalanced opening bracket"}
	}
	return nil
}

// Compact appends to dst a copy of src with all whitespace outside quoted
// strings removed.
func Compact(dst *bytes.Buffer, src []byte) error {
	inString, escaped, open := false, false, -1
	for i, c := range src {
		if inString {
			dst.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
		case '"':
			inString, open = true, i
			dst.WriteByte(c)
		default:
			dst.WriteByte(c)
		}
	}
	if inString {
		return &SyntaxError{Offset: open, Char: '"', Msg: "unterminated string"}
	}
	return nil
}

func nextSignificant(src []byte, from int) byte {
	for i := from; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return src[i]
	}
	return 0
}

func lastSignificant(b []byte) byte {
	for i := len(b) - 1; i >= 0; i-- {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b[i]
	}
	return 0
}
