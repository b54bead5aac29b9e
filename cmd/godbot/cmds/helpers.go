package cmds

import (
	"os"

	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/go-go-golems/godbot/pkg/steps/completion"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewChatCommand())
	rootCmd.AddCommand(NewPromptCommand())
	rootCmd.AddCommand(NewConfigGroupCommand())
	rootCmd.AddCommand(NewSeedGroupCommand())

	presetsCmd, err := NewPresetsCommand()
	cobra.CheckErr(err)
	presetsCobraCmd, err := cli.BuildCobraCommandFromGlazeCommand(presetsCmd)
	cobra.CheckErr(err)
	rootCmd.AddCommand(presetsCobraCmd)
}

// loadBotConfig reads --bot-config if the file exists, and falls back to
// --preset otherwise, so a fresh bot-config path can be saved to later.
func loadBotConfig() (*bot.Config, error) {
	path := viper.GetString("bot-config")
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			log.Debug().Str("path", path).Msg("loading bot config")
			return bot.LoadConfigFile(path)
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "could not stat %s", path)
		}
		log.Debug().Str("path", path).Msg("bot config does not exist yet, using preset")
	}

	preset := viper.GetString("preset")
	if preset == "" {
		preset = "god"
	}
	return bot.Preset(preset)
}

// loadCompletionSettings layers --openai-settings, then the individual flags.
func loadCompletionSettings() (*completion.Settings, error) {
	settings := completion.NewSettings()

	if path := viper.GetString("openai-settings"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open %s", path)
		}
		defer func() {
			_ = f.Close()
		}()
		settings, err = completion.NewSettingsFromYAML(f)
		if err != nil {
			return nil, errors.Wrapf(err, "could not load %s", path)
		}
	}

	if key := viper.GetString("openai-api-key"); key != "" {
		settings.ClientSettings.APIKey = &key
	}
	if baseURL := viper.GetString("openai-base-url"); baseURL != "" {
		settings.ClientSettings.BaseURL = &baseURL
	}
	if engine := viper.GetString("engine"); engine != "" {
		settings.Engine = &engine
	}

	return settings, nil
}

// newIdentity creates the bot. Offline commands always get the echo backend,
// which needs no credential.
func newIdentity(cfg *bot.Config, online bool) (*bot.Identity, error) {
	opts := []bot.Option{
		bot.WithMaxLiveTurns(viper.GetInt("max-live-turns")),
	}

	backend := viper.GetString("backend")
	if !online {
		backend = "echo"
	}

	switch backend {
	case "echo":
		opts = append(opts, bot.WithBackend(completion.NewEchoBackend()))

	case "ollama":
		model := viper.GetString("engine")
		log.Debug().Str("engine", model).Msg("using ollama backend")
		opts = append(opts, bot.WithBackendFactory(bot.OllamaBackendFactory(model)))

	case "", "openai":
		settings, err := loadCompletionSettings()
		if err != nil {
			return nil, err
		}
		log.Debug().Str("engine", settings.EngineOrDefault()).Msg("using openai backend")
		opts = append(opts, bot.WithBackendFactory(bot.OpenAIBackendFactory(settings)))

	default:
		return nil, errors.Errorf("unknown backend %q (openai, ollama, echo)", backend)
	}

	return bot.FromConfig(cfg, opts...)
}

func botConfigPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	path := viper.GetString("bot-config")
	if path == "" {
		return "", errors.New("no file given and --bot-config is not set")
	}
	return path, nil
}
