package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphsnap.

To load completions:

Bash:
  $ source <(graphsnap completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ graphsnap completion bash > /etc/bash_completion.d/graphsnap
  # macOS:
  $ graphsnap completion bash > $(brew --prefix)/etc/bash_completion.d/graphsnap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ graphsnap completion zsh > "${fpath[1]}/_graphsnap"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ graphsnap completion fish | source

  # To load completions for each session, execute once:
  $ graphsnap completion fish > ~/.config/fish/completions/graphsnap.fish

PowerShell:
  PS> graphsnap completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> graphsnap completion powershell > graphsnap.ps1
  # and source this file from your PowerShell profile.

Besides commands and flags, the scripts complete snapshot ids for
"snapshot get" and "snapshot rm" (read from the configured store) and
format names for "render --format".
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completeSnapshotIDs offers the ids in the configured store, described by
// their root type. Ids already on the command line are skipped.
func (c *CLI) completeSnapshotIDs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if cmd.Name() == "get" && len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()
	infos, err := store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []cobra.Completion
	for _, info := range infos {
		if !strings.HasPrefix(info.ID, toComplete) || slices.Contains(args, info.ID) {
			continue
		}
		desc := info.RootType
		if desc == "" {
			desc = "untyped"
		}
		out = append(out, cobra.CompletionWithDesc(info.ID, fmt.Sprintf("%s, %s", desc, formatSize(info.Size))))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	done, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, last = toComplete[:i+1], toComplete[i+1:]
	}
	var out []cobra.Completion
	for _, f := range []string{formatDOT, formatSVG, formatPDF, formatPNG} {
		if strings.HasPrefix(f, last) && !slices.Contains(strings.Split(done, ","), f) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
