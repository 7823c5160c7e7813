package cli

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestConversionSpinnerReportsSteps(t *testing.T) {
	var buf bytes.Buffer
	s := newConversionSpinner(context.Background(), &buf)
	s.start()

	s.step(formatPNG, "out/scene.png")
	time.Sleep(200 * time.Millisecond)
	s.finished("out/scene.png")
	s.step(formatPDF, "out/scene.pdf")

	got := s.stop()
	if again := s.stop(); !reflect.DeepEqual(again, got) {
		t.Errorf("second stop() = %v, want %v", again, got)
	}
	if want := []string{"out/scene.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("stop() = %v, want %v", got, want)
	}

	out := buf.String()
	if !strings.Contains(out, "Converting to PNG") || !strings.Contains(out, "out/scene.png") {
		t.Errorf("status line missing format or path: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("stop() should clear the status line: %q", out)
	}
}

func TestConversionSpinnerCancelledByContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newConversionSpinner(ctx, &bytes.Buffer{})
			s.start()
			time.Sleep(100 * time.Millisecond)
			if !s.cancelled() {
				t.Error("cancelled() = false after context ended")
			}
			s.stop()
		})
	}
}

func TestNilConversionSpinner(t *testing.T) {
	var s *conversionSpinner
	s.start()
	s.step(formatSVG, "a.svg")
	s.finished("a.svg")
	if got := s.stop(); got != nil {
		t.Errorf("stop() = %v, want nil", got)
	}
	if s.cancelled() {
		t.Error("nil spinner reported cancelled")
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    []string
	}{
		{"single format from input", "scene.json", "", []string{"svg"}, []string{"scene.svg"}},
		{"single format exact output", "scene.json", "diagram.out", []string{"png"}, []string{"diagram.out"}},
		{"several formats share base", "scene.json", "out/graph.svg", []string{"svg", "pdf"}, []string{"out/graph.svg", "out/graph.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, &renderOpts{output: tt.output, formats: tt.formats})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}
