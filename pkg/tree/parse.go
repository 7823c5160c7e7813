package tree

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// DefaultMaxNesting bounds array/object nesting in Parse so hostile input
// cannot exhaust the stack.
const DefaultMaxNesting = 10000

// SyntaxError describes malformed JSON text.
type SyntaxError struct {
	Offset int    // byte offset of the offending character
	Char   rune   // offending character, or -1 at end of input
	Msg    string // what was expected or found
}

func (e *SyntaxError) Error() string {
	if e.Char < 0 {
		return fmt.Sprintf("tree: %s at offset %d (end of input)", e.Msg, e.Offset)
	}
	return fmt.Sprintf("tree: %s at offset %d (%q)", e.Msg, e.Offset, e.Char)
}

// Parse reads one JSON value from data. Whitespace may surround the value;
// anything else after it is an error.
func Parse(data []byte) (Node, error) {
	return ParseLimit(data, DefaultMaxNesting)
}

// ParseLimit is Parse with a caller-chosen nesting bound. maxNesting <= 0
// selects DefaultMaxNesting.
func ParseLimit(data []byte, maxNesting int) (Node, error) {
	if maxNesting <= 0 {
		maxNesting = DefaultMaxNesting
	}
	p := &parser{data: data, maxNesting: maxNesting}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, p.errorf("unexpected content after top-level value")
	}
	return v, nil
}

// ParseString is Parse for text held in a string.
func ParseString(s string) (Node, error) {
	return Parse([]byte(s))
}

type parser struct {
	data       []byte
	pos        int
	depth      int
	maxNesting int
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return p.errorAt(p.pos, format, args...)
}

func (p *parser) errorAt(pos int, format string, args ...any) *SyntaxError {
	char := rune(-1)
	if pos < len(p.data) {
		char, _ = utf8.DecodeRune(p.data[pos:])
	}
	return &SyntaxError{Offset: pos, Char: char, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value() (Node, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, p.errorf("expected value")
	}
	switch c := p.data[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		return p.string()
	case c == 't':
		return true, p.literal("true")
	case c == 'f':
		return false, p.literal("false")
	case c == 'n':
		return nil, p.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	}
	return nil, p.errorf("unexpected character")
}

func (p *parser) literal(word string) error {
	for i := 0; i < len(word); i++ {
		if p.pos+i >= len(p.data) || p.data[p.pos+i] != word[i] {
			return p.errorAt(p.pos+i, "invalid literal, expected %q", word)
		}
	}
	p.pos += len(word)
	return nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxNesting {
		return p.errorf("nesting deeper than %d", p.maxNesting)
	}
	return nil
}

func (p *parser) object() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '{'
	obj := NewObject(4)
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return nil, p.errorf("expected string key")
		}
		key, err := p.string()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return nil, p.errorf("expected ':' after object key")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		obj.Set(key.(string), v)

		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, p.errorf("expected ',' or '}' in object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) array() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '['
	arr := []Node{}
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, p.errorf("expected ',' or ']' in array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

// string parses a quoted string starting at the opening quote. It returns
// the value as a Node so callers in value() need no conversion.
func (p *parser) string() (Node, error) {
	open := p.pos
	p.pos++ // '"'

	// Fast path: no escapes.
	for i := p.pos; i < len(p.data); i++ {
		c := p.data[i]
		if c == '"' {
			s := string(p.data[p.pos:i])
			p.pos = i + 1
			return s, nil
		}
		if c == '\\' {
			break
		}
		if c < 0x20 {
			return nil, p.errorAt(i, "control character in string")
		}
	}

	buf := make([]byte, 0, 16)
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(buf), nil
		case c < 0x20:
			return nil, p.errorf("control character in string")
		case c != '\\':
			buf = append(buf, c)
			p.pos++
			continue
		}

		// escape sequence
		if p.pos+1 >= len(p.data) {
			break
		}
		esc := p.data[p.pos+1]
		switch esc {
		case '"', '\\', '/':
			buf = append(buf, esc)
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			r, err := p.unicodeEscape()
			if err != nil {
				return nil, err
			}
			buf = utf8.AppendRune(buf, r)
			continue
		default:
			return nil, p.errorAt(p.pos+1, "invalid escape sequence")
		}
		p.pos += 2
	}
	return nil, p.errorAt(open, "unterminated string")
}

// unicodeEscape decodes \uXXXX at p.pos, combining surrogate pairs. Lone
// surrogates decode to U+FFFD.
func (p *parser) unicodeEscape() (rune, error) {
	r, err := p.hex4(p.pos + 2)
	if err != nil {
		return 0, err
	}
	p.pos += 6
	if !utf16.IsSurrogate(r) {
		return r, nil
	}
	if p.pos+1 < len(p.data) && p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
		r2, err := p.hex4(p.pos + 2)
		if err != nil {
			return 0, err
		}
		if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
			p.pos += 6
			return dec, nil
		}
	}
	return utf8.RuneError, nil
}

func (p *parser) hex4(at int) (rune, error) {
	if at+4 > len(p.data) {
		return 0, p.errorAt(min(at, len(p.data)), "truncated \\u escape")
	}
	var r rune
	for i := at; i < at+4; i++ {
		c := p.data[i]
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, p.errorAt(i, "invalid hex digit in \\u escape")
		}
		r = r<<4 | rune(c)
	}
	return r, nil
}

func (p *parser) number() (Node, error) {
	start := p.pos
	if p.data[p.pos] == '-' {
		p.pos++
	}
	switch {
	case p.pos < len(p.data) && p.data[p.pos] == '0':
		p.pos++
	case p.pos < len(p.data) && p.data[p.pos] >= '1' && p.data[p.pos] <= '9':
		p.digits()
	default:
		return nil, p.errorf("expected digit")
	}

	isFloat := false
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		isFloat = true
		p.pos++
		if p.digits() == 0 {
			return nil, p.errorf("expected digit after decimal point")
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.digits() == 0 {
			return nil, p.errorf("expected digit in exponent")
		}
	}

	text := string(p.data[start:p.pos])
	if !isFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
		if text[0] != '-' {
			if u, err := strconv.ParseUint(text, 10, 64); err == nil {
				return u, nil
			}
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorAt(start, "number out of range")
	}
	return f, nil
}

func (p *parser) digits() int {
	n := 0
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}
