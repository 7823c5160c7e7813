package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/serial"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[serialize]
ref_mode = "id"

[store]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Serialize.RefMode != "id" {
		t.Errorf("RefMode = %q, want id", cfg.Serialize.RefMode)
	}
	if cfg.Serialize.MaxDepth != serial.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want default %d", cfg.Serialize.MaxDepth, serial.DefaultMaxDepth)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "cache:6379" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Prefix != "graphsnap:" {
		t.Errorf("Prefix = %q, want default", cfg.Store.Prefix)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[serialize\nref_mode = 1"},
		{"unknown key", "[store]\nbakend = \"file\""},
		{"bad ref mode", "[serialize]\nref_mode = \"pointer\""},
		{"negative depth", "[serialize]\nmax_depth = -1"},
		{"unknown backend", "[store]\nbackend = \"s3\""},
		{"mongo without database", "[store]\nbackend = \"mongo\"\nmongo_database = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := Path(), filepath.Join("/tmp/xdg", "graphsnap", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestSerialOptions(t *testing.T) {
	cfg := Default()
	cfg.Serialize.RefMode = "id"
	s := serial.New(nil, cfg.SerialOptions()...)

	text, err := s.Serialize([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `"$id":1`) {
		t.Errorf("Serialize() = %s, want id mode", text)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = BackendBadger
	text, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `backend = "badger"`) {
		t.Errorf("Encode() missing backend:\n%s", text)
	}
	got, err := Load(writeConfig(t, text))
	if err != nil {
		t.Fatalf("Load(Encode()) error: %v", err)
	}
	if got != cfg {
		t.Errorf("Load(Encode()) = %+v, want %+v", got, cfg)
	}
}
