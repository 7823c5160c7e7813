// Package render provides visualization output for serialized documents.
//
// # Overview
//
// The [nodelink] subpackage draws the identity graph of a document (see
// pkg/inspect) as a Graphviz diagram. This package holds the format
// conversion shared by renderers.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is not installed the conversions fail with an
// UNSUPPORTED error that explains how to install it.
//
// [nodelink]: github.com/matzehuels/graphsnap/pkg/render/nodelink
package render
