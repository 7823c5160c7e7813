package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/inspect"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// =============================================================================
// fmt
// =============================================================================

type fmtOpts struct {
	compact bool
	indent  int
	tab     bool
	write   bool
}

// fmtCommand creates the fmt command, which pretty-prints or compacts a
// document without changing its content.
func (c *CLI) fmtCommand() *cobra.Command {
	opts := fmtOpts{indent: 2}

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Pretty-print or compact a document",
		Long: `Pretty-print or compact a document.

Reads from stdin when no file (or "-") is given. With --write the file is
rewritten in place.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.write && (len(args) == 0 || args[0] == "-") {
				return errors.New(errors.ErrCodeInvalidInput, "--write needs a file argument")
			}
			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := formatDocument(data, opts)
			if err != nil {
				return fmt.Errorf("format %s: %w", name, err)
			}
			if opts.write {
				return os.WriteFile(args[0], out, 0o644)
			}
			return writeOutput(cmd, "", out)
		},
	}

	cmd.Flags().BoolVar(&opts.compact, "compact", false, "remove all insignificant whitespace")
	cmd.Flags().IntVar(&opts.indent, "indent", opts.indent, "spaces per indentation level")
	cmd.Flags().BoolVar(&opts.tab, "tab", false, "indent with tabs")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite the file in place")
	cmd.MarkFlagsMutuallyExclusive("compact", "tab")

	return cmd
}

// formatDocument validates data and re-emits it with the requested layout,
// followed by a newline.
func formatDocument(data []byte, opts fmtOpts) ([]byte, error) {
	if _, err := tree.Parse(data); err != nil {
		return nil, err
	}
	if opts.indent < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "indent must not be negative")
	}

	var buf bytes.Buffer
	var err error
	switch {
	case opts.compact:
		err = tree.Compact(&buf, data)
	case opts.tab:
		err = tree.Indent(&buf, data, "\t")
	case opts.indent == 0:
		err = tree.Compact(&buf, data)
	default:
		err = tree.Indent(&buf, data, strings.Repeat(" ", opts.indent))
	}
	if err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// =============================================================================
// check
// =============================================================================

// checkCommand creates the check command. It exits non-zero when the
// document has problems.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Check a document for structural problems",
		Long: `Check a document for structural problems without resolving types.

Reports records without $type, malformed $keys/$values, and references that
do not resolve to an earlier record.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, name, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			problems := inspect.Check(doc)
			if len(problems) == 0 {
				printSuccess("%s is well formed", name)
				return nil
			}
			for _, p := range problems {
				printError("%s %s", StyleHighlight.Render(p.Path), p.Message)
			}
			return errors.New(errors.ErrCodeInvalidFormat, "%s: %d problem(s)", name, len(problems))
		},
	}
}

// =============================================================================
// stats
// =============================================================================

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Count the records, references and types in a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, name, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			st := inspect.Summarize(doc)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			fmt.Println(StyleTitle.Render(name))
			printKeyValue("records", fmt.Sprint(st.Records))
			printKeyValue("tracked", fmt.Sprint(st.Tracked))
			printKeyValue("refs", fmt.Sprint(st.Refs))
			printKeyValue("nulls", fmt.Sprint(st.Nulls))
			printKeyValue("max depth", fmt.Sprint(st.MaxDepth))
			if len(st.Types) > 0 {
				fmt.Println()
				printTypeCounts(st.Types)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the statistics as JSON")
	return cmd
}
