package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Reserved record keys, as written by pkg/serial.
const (
	keyType   = "$type"
	keyRef    = "$ref"
	keyID     = "$id"
	keyValue  = "$value"
	keyValues = "$values"
	keyKeys   = "$keys"
	keyName   = "$name"
	keyFlags  = "$flags"
)

const rootPath = "root"

// Problem is one structural defect found by [Check].
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Stats summarizes a document.
type Stats struct {
	Records  int            `json:"records"`
	Refs     int            `json:"refs"`
	Nulls    int            `json:"nulls"`
	Tracked  int            `json:"tracked"`
	MaxDepth int            `json:"max_depth"`
	Types    map[string]int `json:"types"`
}

// Check validates the structure of a document without resolving types.
// It returns nil for a well-formed document.
func Check(doc tree.Node) []Problem {
	return scan(doc).problems
}

// Summarize counts the records, references and types in a document.
func Summarize(doc tree.Node) Stats {
	return scan(doc).stats
}

// Build extracts the reference graph of a document.
func Build(doc tree.Node) *Graph {
	return scan(doc).graph
}

// =============================================================================
// Scanner
// =============================================================================

// scanner walks a document in the order the decoder does: a record is
// registered before its children, and map keys come before map values.
type scanner struct {
	problems []Problem
	stats    Stats
	graph    *Graph
	paths    map[string]bool
	ids      map[int64]string
}

func scan(doc tree.Node) *scanner {
	s := &scanner{
		stats: Stats{Types: make(map[string]int)},
		graph: &Graph{},
		paths: make(map[string]bool),
		ids:   make(map[int64]string),
	}
	switch doc.(type) {
	case nil:
		s.stats.Nulls++
	case *tree.Object:
		s.value(rootPath, "", doc, 1)
	default:
		s.problem(rootPath, "root must be a record, got %s", tree.KindOf(doc))
	}
	return s
}

func (s *scanner) problem(path, format string, args ...any) {
	s.problems = append(s.problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

// value visits the record or null at path. owner is the path of the
// nearest tracked ancestor, "" at the root.
func (s *scanner) value(path, owner string, n tree.Node, depth int) {
	obj, ok := n.(*tree.Object)
	if !ok {
		if n == nil {
			s.stats.Nulls++
			return
		}
		s.problem(path, "expected record or null, got %s", tree.KindOf(n))
		return
	}
	if ref, isRef := obj.Get(keyRef); isRef {
		s.ref(path, owner, obj, ref)
		return
	}

	tagNode, hasType := obj.Get(keyType)
	tag, isString := tagNode.(string)
	switch {
	case !hasType:
		s.problem(path, "record has no %s", keyType)
	case !isString || tag == "":
		s.problem(path, "%s must be a non-empty string", keyType)
	}
	s.stats.Records++
	if isString && tag != "" {
		s.stats.Types[tag]++
	}
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}

	id, hasID := s.id(path, obj)
	isTracked := tracked(tag, obj) || hasID
	if isTracked {
		s.paths[path] = true
		if hasID {
			s.ids[id] = path
		}
		s.stats.Tracked++
	}
	// The root is always a node so that every edge has an origin.
	if isTracked || path == rootPath {
		s.graph.addNode(Node{Path: path, Type: tag, ID: id, Tracked: isTracked})
		if owner != "" {
			s.graph.addEdge(Edge{From: owner, To: path, Kind: EdgeContains, Label: relative(owner, path)})
		}
		owner = path
	}

	s.children(path, owner, obj, depth)
}

func (s *scanner) children(path, owner string, obj *tree.Object, depth int) {
	keys, hasKeys := obj.Get(keyKeys)
	values, hasValues := obj.Get(keyValues)
	if hasKeys {
		ks, ok1 := keys.([]tree.Node)
		vs, ok2 := values.([]tree.Node)
		switch {
		case !ok1:
			s.problem(path, "%s must be an array", keyKeys)
		case !hasValues || !ok2:
			s.problem(path, "%s requires a %s array", keyKeys, keyValues)
		case len(ks) != len(vs):
			s.problem(path, "%s has %d entries but %s has %d", keyKeys, len(ks), keyValues, len(vs))
		}
	} else if hasValues {
		if _, ok := values.([]tree.Node); !ok {
			s.problem(path, "%s must be an array", keyValues)
		}
	}

	if opaque(obj) {
		return
	}
	obj.Range(func(key string, v tree.Node) bool {
		switch key {
		case keyType, keyID, keyName, keyFlags, keyValue:
		case keyKeys, keyValues:
			if arr, ok := v.([]tree.Node); ok {
				prefix := path
				if hasKeys {
					prefix = path + "." + key
				}
				for i, elem := range arr {
					s.value(prefix+"["+strconv.Itoa(i)+"]", owner, elem, depth+1)
				}
			}
		default:
			if strings.HasPrefix(key, "$") {
				s.problem(path, "unknown reserved key %q", key)
				return true
			}
			s.value(path+"."+key, owner, v, depth+1)
		}
		return true
	})
}

func (s *scanner) id(path string, obj *tree.Object) (int64, bool) {
	n, ok := obj.Get(keyID)
	if !ok {
		return 0, false
	}
	id, ok := tree.Int64(n)
	if !ok || id <= 0 {
		s.problem(path, "%s must be a positive integer", keyID)
		return 0, false
	}
	if prev, dup := s.ids[id]; dup {
		s.problem(path, "%s %d already used at %s", keyID, id, prev)
		return 0, false
	}
	return id, true
}

func (s *scanner) ref(path, owner string, obj *tree.Object, ref tree.Node) {
	s.stats.Refs++
	if obj.Len() != 1 {
		s.problem(path, "%s must be the only key of its record", keyRef)
	}

	var target string
	switch r := ref.(type) {
	case string:
		if !s.paths[r] {
			s.problem(path, "reference to %s does not resolve to an earlier record", r)
			return
		}
		target = r
	default:
		id, ok := tree.Int64(ref)
		if !ok {
			s.problem(path, "%s must be a path string or an id", keyRef)
			return
		}
		p, found := s.ids[id]
		if !found {
			s.problem(path, "reference to id %d does not resolve to an earlier record", id)
			return
		}
		target = p
	}
	if owner != "" {
		s.graph.addEdge(Edge{From: owner, To: target, Kind: EdgeRef, Label: relative(owner, path)})
	}
}

// tracked reports whether a record carries identity: pointers, slices
// and maps do, other values never do. Named slice and map types are only
// recognized by their $id, so graphs of such types are best inspected in
// ID mode.
func tracked(tag string, obj *tree.Object) bool {
	switch {
	case strings.HasPrefix(tag, "*"), strings.HasPrefix(tag, "map["):
		return true
	case strings.HasPrefix(tag, "[]"):
		vs, _ := obj.Array(keyValues)
		return len(vs) > 0
	}
	return obj.Has(keyKeys)
}

// opaque reports whether obj is a value codec record: one whose fields hold
// raw JSON values rather than records. Its contents are not inspected.
func opaque(obj *tree.Object) bool {
	raw := false
	obj.Range(func(key string, v tree.Node) bool {
		if strings.HasPrefix(key, "$") {
			return true
		}
		switch f := v.(type) {
		case nil:
		case *tree.Object:
			raw = !f.Has(keyType) && !f.Has(keyRef)
		default:
			raw = true
		}
		return !raw
	})
	return raw
}

func relative(owner, path string) string {
	if rest, ok := strings.CutPrefix(path, owner); ok && rest != "" {
		return rest
	}
	return path
}
