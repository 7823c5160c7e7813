// Package serial persists arbitrary Go object graphs as JSON and
// reconstructs them, preserving object identity, exact runtime types and
// float bit patterns.
//
// # Overview
//
// A graph may be cyclic, share references, and hold values behind
// interfaces. [Serialize] walks it and writes one record per value:
//
//	type Node struct {
//	    Name     string
//	    Parent   *Node
//	    Children []*Node
//	}
//
//	serial.Register[Node](serial.Default, "scene.Node")
//	text, err := serial.Serialize(root)
//	back, err := serial.Deserialize[*Node](text)
//	// back.Children[0].Parent == back
//
// # Records
//
// Every non-null value becomes a record with a "$type" wire tag naming its
// exact runtime type. The remaining keys depend on the kind of value:
//
//	{"$type":"int","$value":3}                         scalars and enums
//	{"$type":"[]int","$values":[...]}                  slices and arrays
//	{"$type":"map[string]int","$keys":[...],"$values":[...]}
//	{"$type":"geom.Vector3","x":1.0,"y":2.0,"z":3.0}   value codecs
//	{"$type":"*scene.Node","Name":...,"Parent":...}    structs, field by field
//
// Enums are written by symbolic name. NaN and infinite floats are written
// as the strings "NaN", "Infinity" and "-Infinity".
//
// # Identity
//
// Pointers, maps and non-empty slices carry identity. The first time one is
// met, its path ("root", "root.Children[0]", "root.Index.$values[2]") becomes
// canonical; every later occurrence is written as {"$ref": path}. Decoding
// registers each such object under its path before decoding its contents, so
// a child pointing back at an ancestor resolves to the very same object.
//
// With [WithRefMode](RefID), tracked records also carry a "$id" number and
// references use it instead of the path.
//
// # Types
//
// Named types are looked up in a [Registry] by wire tag. Composite types are
// spelled as Go type expressions over registered tags: "*scene.Node",
// "[]geom.Vector3", "[4]float32", "map[string]*scene.Node". An unknown tag
// aborts decoding with UNKNOWN_TYPE.
//
// Struct fields are exported fields, renamed with a `graph:"name"` tag or
// skipped with `graph:"-"`. An embedded struct acts as a base type: the
// fields declared on the outer struct come first and hide base fields of
// the same name.
//
// # Partial Failure
//
// A field, element or map entry whose decoded value cannot be converted to
// the declared type is dropped, reported as a [Diagnostic], and decoding
// continues. Lossless numeric conversion, enum names given as strings, and
// pointer/value adaptation are tried before giving up. Corrupt data (an
// unknown tag or enum name, a codec record missing keys, a dangling
// reference) is never recovered from.
package serial
