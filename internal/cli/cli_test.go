package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/inspect"
)

const sceneDoc = `{"$type":"*scene.Node","Name":{"$type":"string","$value":"root"},` +
	`"Kids":{"$type":"[]*scene.Node","$values":[{"$type":"*scene.Node","Up":{"$ref":"root"}}]}}`

// run executes the root command with args and stdin, returning what the
// command wrote to its stdout.
func run(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

// fileStoreConfig writes a config file selecting a file store in a fresh
// temporary directory.
func fileStoreConfig(t *testing.T) string {
	t.Helper()
	dir := filepath.ToSlash(filepath.Join(t.TempDir(), "snapshots"))
	return writeTemp(t, "config.toml", "[store]\nbackend = \"file\"\ndir = \""+dir+"\"\n")
}

func TestFmtCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"default indent", `{"$type":"int","$value":1}`, nil, "{\n  \"$type\": \"int\",\n  \"$value\": 1\n}\n"},
		{"compact", "{ \"a\" : [ 1, 2 ] }", []string{"--compact"}, `{"a":[1,2]}` + "\n"},
		{"indent zero", "{ \"a\" : {} }", []string{"--indent", "0"}, `{"a":{}}` + "\n"},
		{"tab", `{"a":[true]}`, []string{"--tab"}, "{\n\t\"a\": [\n\t\ttrue\n\t]\n}\n"},
		{"explicit stdin", `null`, []string{"-"}, "null\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, "", tt.stdin, append([]string{"fmt"}, tt.args...)...)
			if err != nil {
				t.Fatalf("fmt error: %v", err)
			}
			if got != tt.want {
				t.Errorf("fmt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFmtWrite(t *testing.T) {
	path := writeTemp(t, "doc.json", "{ \"$type\" : \"int\" }")
	if _, err := run(t, "", "", "fmt", "--compact", "-w", path); err != nil {
		t.Fatalf("fmt -w error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != `{"$type":"int"}`+"\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFmtErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"malformed", `{"a":`, nil},
		{"write stdin", `{}`, []string{"-w"}},
		{"negative indent", `{}`, []string{"--indent", "-1"}},
		{"compact and tab", `{}`, []string{"--compact", "--tab"}},
		{"missing file", ``, []string{filepath.Join(t.TempDir(), "nope.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.stdin, append([]string{"fmt"}, tt.args...)...); err == nil {
				t.Error("fmt succeeded, want error")
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	if _, err := run(t, "", sceneDoc, "check"); err != nil {
		t.Errorf("check(valid) error: %v", err)
	}

	_, err := run(t, "", `{"$type":"*a.B","P":{"$ref":"root.Q"}}`, "check")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("check(dangling) error = %v, want INVALID_FORMAT", err)
	}
}

func TestStatsJSON(t *testing.T) {
	out, err := run(t, "", sceneDoc, "stats", "--json")
	if err != nil {
		t.Fatalf("stats error: %v", err)
	}
	var st inspect.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("Unmarshal(%s) error: %v", out, err)
	}
	if st.Records != 4 || st.Refs != 1 || st.Types["*scene.Node"] != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRenderDOT(t *testing.T) {
	out, err := run(t, "", sceneDoc, "render", "--format", "dot")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, want := range []string{"digraph", "*scene.Node", "style=dashed"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderToFile(t *testing.T) {
	input := writeTemp(t, "scene.json", sceneDoc)
	if _, err := run(t, "", "", "render", "-f", "dot", input); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".dot")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot file = %q", data)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", "-f", "gif"}},
		{"stdout with two formats", []string{"render", "-f", "dot,svg", "--stdout"}},
		{"stdin with two formats", []string{"render", "-f", "dot,svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", sceneDoc, tt.args...); err == nil {
				t.Error("render succeeded, want error")
			}
		})
	}
}

func TestSnapshotCommands(t *testing.T) {
	cfg := fileStoreConfig(t)

	out, err := run(t, cfg, sceneDoc, "snapshot", "put", "-q")
	if err != nil {
		t.Fatalf("snapshot put error: %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("snapshot put printed no id")
	}

	out, err = run(t, cfg, "", "snapshot", "get", id)
	if err != nil {
		t.Fatalf("snapshot get error: %v", err)
	}
	if out != sceneDoc+"\n" {
		t.Errorf("snapshot get = %q, want %q", out, sceneDoc)
	}

	out, err = run(t, cfg, "", "snapshot", "ls")
	if err != nil {
		t.Fatalf("snapshot ls error: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "*scene.Node") {
		t.Errorf("snapshot ls missing %s:\n%s", id, out)
	}

	if _, err := run(t, cfg, "", "snapshot", "rm", id); err != nil {
		t.Fatalf("snapshot rm error: %v", err)
	}
	if _, err := run(t, cfg, "", "snapshot", "get", id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("snapshot get after rm error = %v, want NOT_FOUND", err)
	}
}

func TestSnapshotPutRejectsMalformed(t *testing.T) {
	if _, err := run(t, fileStoreConfig(t), `{"$type":`, "snapshot", "put"); err == nil {
		t.Error("snapshot put succeeded, want error")
	}
}

func TestConfigCommands(t *testing.T) {
	cfg := fileStoreConfig(t)

	out, err := run(t, cfg, "", "config", "path")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if strings.TrimSpace(out) != cfg {
		t.Errorf("config path = %q, want %q", out, cfg)
	}

	out, err = run(t, cfg, "", "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	for _, want := range []string{"[store]", `backend = "file"`, `addr = ":8080"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInvalid(t *testing.T) {
	cfg := writeTemp(t, "config.toml", "[store]\nbackend = \"floppy\"\n")
	if _, err := run(t, cfg, "", "config", "show"); err == nil {
		t.Error("config show succeeded with invalid backend")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"svg, png", []string{"svg", "png"}},
		{"pdf,,dot", []string{"pdf", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scene.json", "scene"},
		{"", "dir/scene.json", "dir/scene"},
		{"out.svg", "scene.json", "out"},
		{"out.dot", "scene.json", "out"},
		{"out.txt", "scene.json", "out.txt"},
		{"out", "scene.json", "out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCompleteSnapshotIDs(t *testing.T) {
	cfg := fileStoreConfig(t)
	out, err := run(t, cfg, sceneDoc, "snapshot", "put", "-q")
	if err != nil {
		t.Fatalf("snapshot put error: %v", err)
	}
	id := strings.TrimSpace(out)

	c := New(io.Discard, log.InfoLevel)
	c.configPath = cfg
	get := &cobra.Command{Use: "get"}
	get.SetContext(context.Background())

	got, directive := c.completeSnapshotIDs(get, nil, id[:4])
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", directive)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], id+"\t*scene.Node, ") {
		t.Errorf("completions = %q, want %s with its root type", got, id)
	}

	if got, _ := c.completeSnapshotIDs(get, []string{id}, ""); len(got) != 0 {
		t.Errorf("get takes one id; completions = %q", got)
	}
	rm := &cobra.Command{Use: "rm"}
	rm.SetContext(context.Background())
	if got, _ := c.completeSnapshotIDs(rm, []string{id}, ""); len(got) != 0 {
		t.Errorf("rm should skip ids already given; completions = %q", got)
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		toComplete string
		want       []string
	}{
		{"", []string{"dot", "svg", "pdf", "png"}},
		{"p", []string{"pdf", "png"}},
		{"svg,", []string{"svg,dot", "svg,pdf", "svg,png"}},
		{"svg,pdf,p", []string{"svg,pdf,png"}},
	}
	for _, tt := range tests {
		got, _ := completeFormats(nil, nil, tt.toComplete)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeFormats(%q) = %q, want %q", tt.toComplete, got, tt.want)
		}
	}
}

func TestCompletionScript(t *testing.T) {
	out, err := run(t, "", "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion bash error: %v", err)
	}
	if !strings.Contains(out, "__start_graphsnap") {
		t.Errorf("bash completion script not written to the command output")
	}
}
