package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for debgems.

To load completions:

Bash:
  $ source <(debgems completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ debgems completion bash > /etc/bash_completion.d/debgems
  # macOS:
  $ debgems completion bash > $(brew --prefix)/etc/bash_completion.d/debgems

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ debgems completion zsh > "${fpath[1]}/_debgems"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ debgems completion fish | source

  # To load completions for each session, execute once:
  $ debgems completion fish > ~/.config/fish/completions/debgems.fish

PowerShell:
  PS> debgems completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> debgems completion powershell > debgems.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeStatusFiles completes JSON status files.
func completeStatusFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	out := make([]string, 0, len(pipeline.AllFormats))
	for _, f := range pipeline.AllFormats {
		out = append(out, prefix+f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
