package errors

import (
	"strings"
	"testing"
)

func TestValidateTagName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"builtin", "int", false},
		{"dotted", "geom.Vector3", false},
		{"underscore", "scene.node_v2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"pointer prefix", "*scene.Node", true},
		{"slice prefix", "[]int", true},
		{"map keyword", "map", true},
		{"reserved key", "$type", true},
		{"leading digit", "3d.Point", true},
		{"trailing dot", "scene.", true},
		{"space", "scene Node", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTagName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTagName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTag) {
				t.Errorf("ValidateTagName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTag)
			}
		})
	}
}

func TestValidateSnapshotID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f2b8c1e-6f0a-4e0c-9a55-0c1f1d2e3a4b", false},
		{"name", "level-1.autosave", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 200), true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshotID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
