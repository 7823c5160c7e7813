package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/config"
	"github.com/matzehuels/graphsnap/pkg/snapshot"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "graphsnap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is bound to --config. Empty means config.Path().
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Config and Store
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.resolvedConfigPath(), "backend", cfg.Store.Backend)
	return cfg, nil
}

func (c *CLI) resolvedConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// openStore opens the snapshot store named by the configuration.
func (c *CLI) openStore(ctx context.Context) (snapshot.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return snapshot.Open(ctx, cfg.Store, c.Logger)
}

// =============================================================================
// Input
// =============================================================================

// readInput reads the file named by args, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, args[0], nil
}

// readDocument reads and parses the input document.
func readDocument(cmd *cobra.Command, args []string) (tree.Node, string, error) {
	data, name, err := readInput(cmd, args)
	if err != nil {
		return nil, "", err
	}
	doc, err := tree.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, name, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
