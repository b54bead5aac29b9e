package cmds

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/godbot/pkg/steps/completion"
	"github.com/go-go-golems/godbot/pkg/tokens"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt TEXT...",
		Short: "Print the prompt the bot would send for a message, without sending it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := cmd.Flags().GetString("author")
			if err != nil {
				return err
			}
			countTokens, err := cmd.Flags().GetBool("count-tokens")
			if err != nil {
				return err
			}

			cfg, err := loadBotConfig()
			if err != nil {
				return err
			}
			identity, err := newIdentity(cfg, false)
			if err != nil {
				return err
			}

			prompt := identity.BuildPrompt(author, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), prompt)

			if countTokens {
				engine := viper.GetString("engine")
				if engine == "" {
					engine = completion.DefaultEngine
				}
				counter, err := tokens.NewCounterForModel(engine)
				if err != nil {
					return err
				}
				n, err := counter.Count(prompt)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%d tokens (%s)\n", n, engine)
			}
			return nil
		},
	}
	cmd.Flags().String("author", defaultAuthor, "Author of the message")
	cmd.Flags().Bool("count-tokens", false, "Print the token count of the prompt to stderr")
	return cmd
}
