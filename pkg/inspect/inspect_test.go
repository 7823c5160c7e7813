package inspect

import (
	"reflect"
	"testing"

	"github.com/matzehuels/graphsnap/pkg/tree"
)

const sceneDoc = `{"$type":"*scene.Node","Name":{"$type":"string","$value":"root"},` +
	`"Kids":{"$type":"[]*scene.Node","$values":[` +
	`{"$type":"*scene.Node","Name":null,"Up":{"$ref":"root"}},` +
	`{"$ref":"root.Kids[0]"}]},` +
	`"Pos":{"$type":"geom.Vector3","x":1.0,"y":2.0,"z":3.0}}`

func mustParse(t *testing.T, s string) tree.Node {
	t.Helper()
	n, err := tree.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString(%s) error: %v", s, err)
	}
	return n
}

func TestCheckValid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"scene", sceneDoc},
		{"null", "null"},
		{"id refs", `{"$type":"*a.B","$id":1,"P":{"$type":"*a.B","$id":2,"Q":{"$ref":1}}}`},
		{"map", `{"$type":"map[string]int","$keys":[{"$type":"string","$value":"a"}],"$values":[{"$type":"int","$value":1}]}`},
		{"map value ref", `{"$type":"map[string]*a.B","$keys":[{"$type":"string","$value":"a"},{"$type":"string","$value":"b"}],` +
			`"$values":[{"$type":"*a.B"},{"$ref":"root.$values[0]"}]}`},
		{"host object", `{"$type":"*a.Prefab","$name":"cube","$flags":4,"Layer":{"$type":"geom.LayerMask","value":0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if problems := Check(mustParse(t, tt.doc)); len(problems) != 0 {
				t.Errorf("Check() = %v, want none", problems)
			}
		})
	}
}

func TestCheckProblems(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"array root", `[1,2]`, "root"},
		{"missing type", `{"Name":null}`, "root"},
		{"ref with other keys", `{"$type":"*a.B","P":{"$ref":"root","x":1}}`, "root.P"},
		{"forward ref", `{"$type":"*a.B","P":{"$ref":"root.Q"},"Q":{"$type":"*a.B"}}`, "root.P"},
		{"ref to value record", `{"$type":"a.B","P":{"$ref":"root"}}`, "root.P"},
		{"dangling id", `{"$type":"*a.B","$id":1,"P":{"$ref":2}}`, "root.P"},
		{"duplicate id", `{"$type":"*a.B","$id":1,"P":{"$type":"*a.B","$id":1}}`, "root.P"},
		{"bad id", `{"$type":"*a.B","$id":"one"}`, "root"},
		{"bad ref", `{"$type":"*a.B","P":{"$ref":true}}`, "root.P"},
		{"keys mismatch", `{"$type":"map[string]int","$keys":[{"$type":"string","$value":"a"}],"$values":[]}`, "root"},
		{"keys without values", `{"$type":"map[string]int","$keys":[]}`, "root"},
		{"values not array", `{"$type":"[]int","$values":{}}`, "root"},
		{"raw element", `{"$type":"[]int","$values":[1]}`, "root[0]"},
		{"unknown reserved key", `{"$type":"*a.B","$foo":null}`, "root"},
		{"empty type", `{"$type":""}`, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Check(mustParse(t, tt.doc))
			if len(problems) != 1 {
				t.Fatalf("Check() = %v, want one problem", problems)
			}
			if problems[0].Path != tt.path {
				t.Errorf("Check() path = %q, want %q (%s)", problems[0].Path, tt.path, problems[0])
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(mustParse(t, sceneDoc))
	want := Stats{
		Records:  5,
		Refs:     2,
		Nulls:    1,
		Tracked:  3,
		MaxDepth: 3,
		Types: map[string]int{
			"*scene.Node":   2,
			"string":        1,
			"[]*scene.Node": 1,
			"geom.Vector3":  1,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestBuild(t *testing.T) {
	g := Build(mustParse(t, sceneDoc))

	var paths []string
	for _, n := range g.Nodes {
		paths = append(paths, n.Path)
	}
	if want := []string{"root", "root.Kids", "root.Kids[0]"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("nodes = %v, want %v", paths, want)
	}

	want := []Edge{
		{From: "root", To: "root.Kids", Kind: EdgeContains, Label: ".Kids"},
		{From: "root.Kids", To: "root.Kids[0]", Kind: EdgeContains, Label: "[0]"},
		{From: "root.Kids[0]", To: "root", Kind: EdgeRef, Label: ".Up"},
		{From: "root.Kids", To: "root.Kids[0]", Kind: EdgeRef, Label: "[1]"},
	}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %+v, want %+v", g.Edges, want)
	}
	if refs := g.Refs(); len(refs) != 2 {
		t.Errorf("Refs() = %v, want 2", refs)
	}
	if n, ok := g.Node("root.Kids"); !ok || n.Type != "[]*scene.Node" || !n.Tracked {
		t.Errorf("Node(root.Kids) = %+v, %v", n, ok)
	}
}

func TestBuildValueRoot(t *testing.T) {
	g := Build(mustParse(t, `{"$type":"a.B","P":{"$type":"*a.C","Q":{"$ref":"root.P"}}}`))
	if len(g.Nodes) != 2 || g.Nodes[0].Tracked {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if len(g.Edges) != 2 || g.Edges[1].Kind != EdgeRef || g.Edges[1].To != "root.P" {
		t.Errorf("edges = %+v", g.Edges)
	}
}
