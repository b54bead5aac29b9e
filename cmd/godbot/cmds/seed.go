package cmds

import (
	"fmt"

	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/spf13/cobra"
)

func NewSeedGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Manage the seed dialogue of the bot",
	}
	cmd.AddCommand(NewAddSeedCommand())
	return cmd
}

func NewAddSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an exchange to the seed dialogue stored in --bot-config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := cmd.Flags().GetString("author")
			if err != nil {
				return err
			}
			prompt, err := cmd.Flags().GetString("prompt")
			if err != nil {
				return err
			}
			response, err := cmd.Flags().GetString("response")
			if err != nil {
				return err
			}

			path, err := botConfigPath(nil)
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

			identity.SeedInteraction(author, prompt, response)
			exported := identity.ExportConfig()
			if err := bot.SaveConfigFile(path, exported); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s now has %d seed turns\n", exported.Botname, exported.Seed.Len())
			return nil
		},
	}
	cmd.Flags().String("author", defaultAuthor, "Author of the prompt")
	cmd.Flags().String("prompt", "", "Prompt of the exchange")
	cmd.Flags().String("response", "", "Response of the bot")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("response")
	return cmd
}
