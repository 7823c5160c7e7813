package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Store and retrieve documents in the snapshot store",
		Long: `Store and retrieve documents in the snapshot store.

The backend (file, redis, mongo, badger or null) is chosen by the [store]
section of the configuration file.`,
	}

	cmd.AddCommand(c.snapshotPutCommand())
	cmd.AddCommand(c.snapshotGetCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotRemoveCommand())
	cmd.AddCommand(c.snapshotPickCommand())

	return cmd
}

// snapshotPutCommand creates the "snapshot put" subcommand.
func (c *CLI) snapshotPutCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Store a document and print its id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			snap, err := snapshot.New(data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Put(cmd.Context(), snap); err != nil {
				return err
			}
			if quiet {
				fmt.Fprintln(cmd.OutOrStdout(), snap.ID)
				return nil
			}
			printSuccess("Stored %s", name)
			printKeyValue("id", snap.ID)
			printKeyValue("root", snap.RootType)
			printKeyValue("size", formatSize(len(snap.Data)))
			printNextStep("Retrieve with", appName+" snapshot get "+snap.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the snapshot id")
	return cmd
}

// snapshotGetCommand creates the "snapshot get" subcommand.
func (c *CLI) snapshotGetCommand() *cobra.Command {
	var output string
	var indent int

	cmd := &cobra.Command{
		Use:               "get <id>",
		Short:             "Print a stored document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshotIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := formatDocument(snap.Data, fmtOpts{indent: indent})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().IntVar(&indent, "indent", 0, "spaces per indentation level (0 for compact)")
	return cmd
}

// snapshotListCommand creates the "snapshot ls" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), snapshotTable(infos, -1, 0, len(infos)))
			return nil
		},
	}
}

// snapshotRemoveCommand creates the "snapshot rm" subcommand.
func (c *CLI) snapshotRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <id>...",
		Aliases:           []string{"delete"},
		Short:             "Remove stored snapshots",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeSnapshotIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Debug("snapshot removed", "id", id)
			}
			printSuccess("Removed %d snapshot(s)", len(args))
			return nil
		},
	}
}

// snapshotPickCommand creates the "snapshot pick" subcommand, an interactive
// list that prints the chosen document.
func (c *CLI) snapshotPickCommand() *cobra.Command {
	var indent int

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a snapshot interactively and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots")
				return nil
			}

			p := tea.NewProgram(NewSnapshotListModel(infos), tea.WithContext(cmd.Context()), tea.WithOutput(cmd.ErrOrStderr()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("snapshot picker: %w", err)
			}
			m, ok := final.(SnapshotListModel)
			if !ok || m.Selected == nil {
				return nil
			}

			snap, err := store.Get(cmd.Context(), m.Selected.ID)
			if err != nil {
				return err
			}
			data, err := formatDocument(snap.Data, fmtOpts{indent: indent})
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}

	cmd.Flags().IntVar(&indent, "indent", 2, "spaces per indentation level (0 for compact)")
	return cmd
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
