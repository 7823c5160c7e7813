// Package pkg provides the core libraries for graphsnap object graph
// serialization.
//
// # Overview
//
// graphsnap turns an in-memory Go object graph into self-describing JSON and
// back. Shared pointers, cycles, interface-typed fields and registered value
// types survive the round trip. The pkg directory is organized into three
// areas:
//
//  1. Serialization - [tree], [codec], [geom], [serial]
//  2. Tooling - [inspect], [render], [render/nodelink], [io]
//  3. Infrastructure - [snapshot], [config], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow through graphsnap:
//
//	Go value (pointers, slices, maps, interfaces)
//	         ↓
//	    [serial] package (walk the graph, tag records, emit $ref for revisits)
//	         ↓
//	    [tree] package (ordered value tree, canonical JSON text)
//	         ↓
//	    [io] / [snapshot] (files, redis, mongo, badger)
//
// Decoding runs the same pipeline in reverse. [inspect] works on the value
// tree alone, without a type registry, and feeds [render/nodelink].
//
// # Quick Start
//
//	type Node struct {
//	    Name string
//	    Next *Node
//	}
//
//	serial.Register[Node](serial.Default, "app.Node")
//
//	a := &Node{Name: "a"}
//	a.Next = a
//	text, _ := serial.Serialize(a)
//	// {"$type":"*app.Node","Name":{"$type":"string","$value":"a"},"Next":{"$ref":"root"}}
//
//	back, _ := serial.Deserialize[*Node](text)
//	// back.Next == back
//
// # Main Packages
//
// [serial] - Reflection-based graph walker, type registry and serializer
// facade. Path references by default, numeric ids with [serial.RefID].
//
// [tree] - Ordered JSON value tree with a writer that keeps float precision
// and a strict parser with a depth limit.
//
// [codec] - Contract for value types that encode themselves as a fixed set
// of raw fields; [geom] registers the built-in vector, color and curve types.
//
// [inspect] - Structural checks, statistics and the reference graph of a
// document.
//
// [render/nodelink] - Graphviz diagrams of the reference graph; [render]
// converts SVG to PDF and PNG.
//
// [snapshot] - Content-hashed document store with file, Redis, MongoDB,
// Badger and null backends.
//
// [io] - Serialize to and from readers, writers and files.
//
// [config] - TOML configuration. [errors] - Coded errors shared by every
// package. [observability] - Hooks for metrics, with a Prometheus
// implementation in observability/prom.
//
// # Testing
//
//	go test ./...                           # All tests
//	go test -run Example ./pkg/serial       # Examples only
//	go test -tags integration ./pkg/...     # Include redis and mongo tests
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/tree
// [codec]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/codec
// [geom]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/geom
// [serial]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/serial
// [serial.RefID]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/serial#RefID
// [inspect]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/inspect
// [render]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/io
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/snapshot
// [config]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/graphsnap/pkg/buildinfo
package pkg
