// Package inspect analyzes serialized documents without a type registry.
//
// Tools that only see the text of a document (formatters, linters, viewers)
// cannot resolve wire tags to Go types, but they can still check that the
// record structure is sound and see how records reference each other.
//
// # Checking
//
// [Check] reports structural defects: records without "$type", "$ref" mixed
// with other keys, "$keys"/"$values" arrays of different lengths, duplicate
// "$id" numbers, and references that do not resolve to an earlier record.
// A reference resolves the way the decoder resolves it: to a record that
// carries identity and appears before the reference in document order.
//
// # Identity
//
// A record carries identity when its tag is a pointer ("*T"), map
// ("map[K]V") or non-empty slice ("[]T") expression, or when it has a
// "$id". Records of value codecs, whose fields are raw JSON values, are
// treated as opaque leaves.
//
// # Graphs
//
// [Build] returns a [Graph] whose nodes are the identity-carrying records
// plus the root, with containment edges from each node to the nodes nested
// in it and reference edges for every "$ref". pkg/render/nodelink draws it.
package inspect
