// Package config loads graphsnap settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/graphsnap/config.toml (falling back to
// ~/.config/graphsnap/config.toml). Every key is optional; a missing file
// yields [Default]:
//
//	[serialize]
//	ref_mode  = "path"   # or "id"
//	max_depth = 4000
//
//	[store]
//	backend = "file"     # file, redis, mongo, badger, null
//	dir     = "/var/lib/graphsnap"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/serial"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendBadger = "badger"
	BackendNull   = "null"
)

// Config is the complete configuration.
type Config struct {
	Serialize Serialize `toml:"serialize"`
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
}

// Serialize holds the serializer options.
type Serialize struct {
	RefMode  string `toml:"ref_mode"`
	MaxDepth int    `toml:"max_depth"`
}

// Store selects and configures the snapshot store backend.
type Store struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	BadgerDir string `toml:"badger_dir"`

	// Prefix namespaces keys in shared backends (redis, badger).
	Prefix string `toml:"prefix"`
}

// Server holds the HTTP server settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Serialize: Serialize{
			RefMode:  serial.RefPath.String(),
			MaxDepth: serial.DefaultMaxDepth,
		},
		Store: Store{
			Backend:         BackendFile,
			Dir:             filepath.Join(dataDir(), "snapshots"),
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "graphsnap",
			MongoCollection: "snapshots",
			BadgerDir:       filepath.Join(dataDir(), "badger"),
			Prefix:          "graphsnap:",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Path returns the default config file location.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "graphsnap", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".graphsnap", "config.toml")
	}
	return filepath.Join(home, ".config", "graphsnap", "config.toml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "graphsnap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".graphsnap"
	}
	return filepath.Join(home, ".local", "share", "graphsnap")
}

// Load reads the file at path over [Default]. An empty path means [Path].
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and required backend settings.
func (c Config) Validate() error {
	if _, err := serial.ParseRefMode(c.Serialize.RefMode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "serialize.ref_mode")
	}
	if c.Serialize.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "serialize.max_depth must not be negative")
	}

	s := c.Store
	var missing string
	switch s.Backend {
	case BackendFile:
		if s.Dir == "" {
			missing = "dir"
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			missing = "redis_addr"
		}
	case BackendMongo:
		switch {
		case s.MongoURI == "":
			missing = "mongo_uri"
		case s.MongoDatabase == "":
			missing = "mongo_database"
		case s.MongoCollection == "":
			missing = "mongo_collection"
		}
	case BackendBadger:
		if s.BadgerDir == "" {
			missing = "badger_dir"
		}
	case BackendNull:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "store.backend: unknown backend %q", s.Backend)
	}
	if missing != "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.%s is required for the %s backend", missing, s.Backend)
	}
	return nil
}

// SerialOptions returns the serializer options the config selects.
func (c Config) SerialOptions() []serial.Option {
	mode, _ := serial.ParseRefMode(c.Serialize.RefMode)
	return []serial.Option{
		serial.WithRefMode(mode),
		serial.WithMaxDepth(c.Serialize.MaxDepth),
	}
}

// Encode renders c as TOML.
func (c Config) Encode() (string, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return sb.String(), nil
}
