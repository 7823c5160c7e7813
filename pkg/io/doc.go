// Package io reads and writes serialized object graphs through files and
// streams.
//
// # Overview
//
// The functions here are thin wrappers around pkg/serial that deal with
// readers, writers and paths, so callers don't have to hold whole documents
// as strings:
//
//	err := io.ExportFile("scene.json", scene)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scene, err := io.ImportFile[*Scene]("scene.json")
//
// Both directions use the [serial.Default] registry unless a serializer is
// given explicitly with [WriteWith] and [ReadWith]. Options such as
// serial.WithRefMode and serial.WithDiagnostics pass straight through.
//
// # Round Trips
//
// Output is the compact wire format followed by a newline. Anything written
// by [Write] or [ExportFile] reads back with [Read] or [ImportFile] into an
// equivalent graph: same shape, same shared references, same runtime types
// and the same float bits.
//
// [serial.Default]: github.com/matzehuels/graphsnap/pkg/serial.Default
package io
