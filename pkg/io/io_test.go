package io

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/geom"
	"github.com/matzehuels/graphsnap/pkg/serial"
)

type track struct {
	Name  string
	Curve geom.Curve
	Next  *track
}

func init() {
	serial.Register[track](serial.Default, "iotest.track")
}

func TestWriteRead(t *testing.T) {
	a := &track{Name: "a", Curve: geom.Curve{Keys: []geom.Keyframe{{Time: 0.25, Value: float32(math.Pi)}}}}
	a.Next = &track{Name: "b", Next: a}

	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Errorf("Write() output does not end with a newline: %q", buf.String())
	}

	got, err := Read[*track](&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.Next.Next != got {
		t.Error("cycle not restored")
	}
	if k := got.Curve.Keys[0]; k.Value != float32(math.Pi) || k.Time != 0.25 {
		t.Errorf("keyframe = %+v", k)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidJSON},
		{"trailing", `{"$type":"int","$value":1} x`, errors.ErrCodeInvalidJSON},
		{"unknown type", `{"$type":"nope"}`, errors.ErrCodeUnknownType},
		{"wrong root", `{"$type":"int","$value":1}`, errors.ErrCodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read[*track](strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	in := map[string][]int{"odd": {1, 3}, "even": {2}}
	if err := ExportFile(path, in, serial.WithRefMode(serial.RefID)); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"$id":1`)) {
		t.Errorf("ExportFile() ignored options: %s", data)
	}

	got, err := ImportFile[map[string][]int](path)
	if err != nil {
		t.Fatalf("ImportFile() error: %v", err)
	}
	if len(got) != 2 || len(got["odd"]) != 2 || got["even"][0] != 2 {
		t.Errorf("ImportFile() = %v, want %v", got, in)
	}
}

func TestImportFileMissing(t *testing.T) {
	_, err := ImportFile[int](filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Errorf("ImportFile() error = %v, want path in message", err)
	}
}

func TestReadWithDiagnostics(t *testing.T) {
	var diags []serial.Diagnostic
	s := serial.New(nil, serial.WithDiagnostics(func(d serial.Diagnostic) { diags = append(diags, d) }))
	input := `{"$type":"*iotest.track","Name":{"$type":"int","$value":3},"Curve":null,"Next":null}`

	got, err := ReadWith[*track](s, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadWith() error: %v", err)
	}
	if got.Name != "" || len(diags) != 2 {
		t.Errorf("ReadWith() = %+v, diagnostics %v", got, diags)
	}
}

func TestWriteWithError(t *testing.T) {
	type local struct{}
	err := WriteWith(serial.New(nil), &bytes.Buffer{}, local{})
	if !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Errorf("WriteWith() error = %v, want UNKNOWN_TYPE", err)
	}
}
