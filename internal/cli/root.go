package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --config: configuration file (default $XDG_CONFIG_HOME/graphsnap/config.toml)
//   - --verbose (-v): debug logging
//
// The logger is attached to the command context before any subcommand runs
// and is retrieved with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "graphsnap serializes Go object graphs to self-describing JSON",
		Long:         `graphsnap inspects, formats, renders and stores documents written by the graphsnap serializer: typed JSON records with references that preserve shared and cyclic structure.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+configPathHint()+")")

	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func configPathHint() string {
	return "$XDG_CONFIG_HOME/" + appName + "/config.toml"
}
