package serial

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphsnap/pkg/tree"
)

// RefMode selects how back-references are written.
type RefMode int

const (
	// RefPath writes "$ref" as the canonical path of the first occurrence,
	// e.g. {"$ref":"root.children[0]"}.
	RefPath RefMode = iota

	// RefID numbers tracked records in first-visit order, writes the number
	// as "$id" on each of them and writes "$ref" as that number.
	RefID
)

func (m RefMode) String() string {
	switch m {
	case RefPath:
		return "path"
	case RefID:
		return "id"
	}
	return fmt.Sprintf("RefMode(%d)", int(m))
}

// ParseRefMode parses "path" or "id".
func ParseRefMode(s string) (RefMode, error) {
	switch s {
	case "", "path":
		return RefPath, nil
	case "id":
		return RefID, nil
	}
	return 0, fmt.Errorf("unknown ref mode %q (want path or id)", s)
}

// DefaultMaxDepth bounds the nesting depth of encoded and decoded graphs.
// A cycle never counts against it; only acyclic nesting does.
const DefaultMaxDepth = 4000

// Diagnostic reports a field, element or map entry dropped during decode.
type Diagnostic struct {
	Path    string // path of the dropped value, e.g. "root.items[3]"
	Message string
}

func (d Diagnostic) String() string {
	return d.Path + ": " + d.Message
}

// Option configures a Serializer.
type Option func(*options)

type options struct {
	refMode     RefMode
	maxDepth    int
	logger      *log.Logger
	diagnostics func(Diagnostic)
}

func defaultOptions() options {
	return options{
		refMode:  RefPath,
		maxDepth: DefaultMaxDepth,
	}
}

// WithRefMode selects how back-references are written. Decoding accepts
// both forms regardless of this setting.
func WithRefMode(m RefMode) Option {
	return func(o *options) { o.refMode = m }
}

// WithMaxDepth bounds the nesting depth of a graph. Deeper graphs fail with
// DEPTH_EXCEEDED. n <= 0 restores the default.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		o.maxDepth = n
	}
}

// parseNesting is the JSON nesting bound that admits every document the
// walker can emit under maxDepth. Each walker level is at most a record and
// a "$values" or "$keys" array; codec records add a few levels at the leaves.
func (o *options) parseNesting() int {
	return max(tree.DefaultMaxNesting, 2*o.maxDepth+8)
}

// WithLogger sets the logger used for decode diagnostics. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDiagnostics registers a callback invoked for every value dropped
// during decode.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(o *options) { o.diagnostics = fn }
}
