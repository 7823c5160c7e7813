// Package tree is the JSON layer of graphsnap: a generic value tree plus a
// hand-written writer and recursive-descent parser.
//
// # Value Tree
//
// A [Node] is a plain Go value holding exactly one of:
//
//	nil                 JSON null
//	bool                true / false
//	int64, uint64       integral numbers (no fraction, no exponent)
//	float32, float64    floating-point numbers
//	string              strings
//	[]Node              arrays
//	*Object             objects, with insertion-ordered keys
//
// The tree has no knowledge of domain types. The object walker in
// [github.com/matzehuels/graphsnap/pkg/serial] produces and consumes it.
//
// # Writing
//
// [Marshal], [Append] and [Write] render a tree as compact text. Floats are
// written with the shortest representation that parses back to the same bits
// at their own width, and always carry a fraction or exponent so they re-parse
// as floats:
//
//	tree.Marshal(float32(0.1))  // 0.1
//	tree.Marshal(float64(2))    // 2.0
//
// Object keys are never sorted; the order in which they were set is the order
// in which they are written.
//
// # Parsing
//
// [Parse] turns text back into a tree. Integers parse as int64 (uint64 above
// math.MaxInt64), everything with a fraction or exponent as float64. Malformed
// input returns a [*SyntaxError] carrying the byte offset of the offending
// character.
//
// # Formatting
//
// [Indent] and [Compact] reformat existing text without building a tree. They
// only look at structure outside quoted strings and are meant for viewers and
// tooling; the wire format itself is always compact.
package tree
