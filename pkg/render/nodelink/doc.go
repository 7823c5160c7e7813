// Package nodelink renders the identity graph of a serialized document as a
// node-link diagram.
//
// # Overview
//
// Every record that carries identity becomes a box labeled with its wire
// tag; solid arrows show which record contains which, dashed arrows show
// "$ref" back references. Cycles in the original object graph show up as
// dashed arrows pointing up the tree.
//
// # Usage
//
// Build the graph with pkg/inspect, convert it to DOT, then render to SVG:
//
//	doc, err := tree.Parse(data)
//	g := inspect.Build(doc)
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
