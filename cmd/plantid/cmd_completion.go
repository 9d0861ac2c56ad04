package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion script",
		Long: fmt.Sprintf(`Print a completion script for plantid.

The image argument of identify and test-local completes to %s files;
watch completes to directories.

  bash:        source <(plantid completion bash)
  zsh:         plantid completion zsh > "${fpath[1]}/_plantid"
  fish:        plantid completion fish > ~/.config/fish/completions/plantid.fish
  powershell:  plantid completion powershell | Out-String | Invoke-Expression
`, strings.Join(imageExtensions, ", ")),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(out)
				}
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, !noDesc)
			default:
				if noDesc {
					return root.GenPowerShellCompletion(out)
				}
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit completion descriptions")

	return cmd
}
