package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/inspect"
	"github.com/matzehuels/graphsnap/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPDF: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple outputs)
	formats    []string // output formats: "dot", "svg", "pdf", "png"
	detailed   bool     // show record paths and ids in node labels
	edgeLabels bool     // label edges with the relative path
	scale      float64  // PNG scale factor
	stdout     bool     // write a single output to stdout
}

// renderCommand creates the render command, which draws the reference graph
// of a document: tracked records become nodes, containment is drawn solid and
// references dashed.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the reference graph of a document",
		Long: `Render the reference graph of a document.

Formats are dot, svg, pdf and png (comma-separated for several). PDF and PNG
require rsvg-convert from librsvg. Output files are named after the input
unless -o is given; with --stdout a single format is written to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.stdout && len(opts.formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--stdout needs exactly one format")
			}
			if len(args) == 0 && opts.output == "" && !opts.stdout {
				opts.stdout = len(opts.formats) == 1
				if !opts.stdout {
					return errors.New(errors.ErrCodeInvalidInput, "-o is required when reading several formats from stdin")
				}
			}
			return c.runRender(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (or base path for several formats)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", formatSVG, "output formats: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show record paths and ids in node labels")
	cmd.Flags().BoolVar(&opts.edgeLabels, "edge-labels", false, "label edges with the relative path")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write the output to stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	doc, name, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	prog := newProgress(logger)
	g := inspect.Build(doc)
	logger.Debugf("Built graph of %s: %d nodes, %d edges", name, len(g.Nodes), len(g.Edges))

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, EdgeLabels: opts.edgeLabels})

	if opts.stdout {
		data, err := renderDOT(ctx, dot, opts.formats[0], opts.scale)
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", data)
	}

	var spinner *conversionSpinner
	if needsConverter(opts.formats) {
		spinner = newConversionSpinner(ctx, cmd.ErrOrStderr())
		spinner.start()
	}
	err = renderFiles(ctx, dot, name, opts, spinner)
	paths := spinner.stop()
	if spinner == nil {
		paths = outputPaths(name, opts)
	}
	if err != nil {
		if spinner.cancelled() {
			logger.Warnf("Render of %s interrupted after %d file(s)", name, len(paths))
		}
		return err
	}

	prog.done(fmt.Sprintf("Rendered %d nodes", len(g.Nodes)))
	printSuccess("Rendered %s", name)
	printCounts("nodes", len(g.Nodes), "edges", len(g.Edges), "refs", len(g.Refs()))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// outputPaths returns one file per format. A single format honours -o as
// the exact file name; several formats share its base path.
func outputPaths(input string, opts *renderOpts) []string {
	if len(opts.formats) == 1 && opts.output != "" {
		return []string{opts.output}
	}
	base := basePath(opts.output, input)
	paths := make([]string, len(opts.formats))
	for i, format := range opts.formats {
		paths[i] = base + "." + format
	}
	return paths
}

// renderFiles writes every output of outputPaths, reporting progress on sp.
func renderFiles(ctx context.Context, dot, input string, opts *renderOpts, sp *conversionSpinner) error {
	for i, path := range outputPaths(input, opts) {
		format := opts.formats[i]
		sp.step(format, path)
		data, err := renderDOT(ctx, dot, format, opts.scale)
		if err != nil {
			return err
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		sp.finished(path)
	}
	return nil
}

func renderDOT(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid format: %s", format)
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == formatPDF || f == formatPNG {
			return true
		}
	}
	return false
}
