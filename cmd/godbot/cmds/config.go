package cmds

import (
	"fmt"

	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// commands for manipulating the bot config
//
// - show the bot the way it will be prompted
// - export to / import from JSON or YAML
// - validate config files

func NewConfigGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the bot config",
	}

	cmd.AddCommand(NewShowConfigCommand())
	cmd.AddCommand(NewExportConfigCommand())
	cmd.AddCommand(NewImportConfigCommand())

	validateCmd, err := NewValidateConfigCommand()
	cobra.CheckErr(err)
	validateCobraCmd, err := cli.BuildCobraCommandFromGlazeCommand(validateCmd)
	cobra.CheckErr(err)
	cmd.AddCommand(validateCobraCmd)

	return cmd
}

func NewShowConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Describe the bot: name, context, seed dialogue and a sample prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBotConfig()
			if err != nil {
				return err
			}
			identity, err := newIdentity(cfg, false)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), identity.DescribeConfig())
			return nil
		},
	}
}

func NewExportConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export the bot config to FILE, or print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBotConfig()
			if err != nil {
				return err
			}
			identity, err := newIdentity(cfg, false)
			if err != nil {
				return err
			}
			exported := identity.ExportConfig()

			if len(args) == 1 {
				if err := bot.SaveConfigFile(args[0], exported); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", exported.Botname, args[0])
				return nil
			}

			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			var data []byte
			switch format {
			case "json":
				data, err = exported.MarshalIndentJSON()
			case "yaml":
				data, err = exported.MarshalIndentYAML()
			default:
				return errors.Errorf("unknown format %q (json, yaml)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().String("format", "json", "Output format when printing (json, yaml)")
	return cmd
}

func NewImportConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the --bot-config file with the bot config in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := botConfigPath(nil)
			if err != nil {
				return err
			}

			cfg, err := bot.LoadConfigFile(args[0])
			if err != nil {
				return err
			}
			identity, err := newIdentity(cfg, false)
			if err != nil {
				return err
			}

			if err := bot.SaveConfigFile(target, identity.ExportConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %s from %s into %s\n", identity.Botname(), args[0], target)
			return nil
		},
	}
}
