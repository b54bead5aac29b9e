package main

import (
	"os"
	"strings"

	"github.com/go-go-golems/godbot/cmd/godbot/cmds"
	"github.com/go-go-golems/godbot/pkg/memory"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "godbot",
	Short: "godbot is a chat bot that remembers a persona and the last turns of a conversation",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger because we can now parse --log-level and co
		// from the command line flag
		initLogger()
	},
	SilenceUsage: true,
}

func initLogger() {
	logLevel := viper.GetString("log-level")
	verbose := viper.GetBool("verbose")
	if verbose && logLevel != "trace" {
		logLevel = "debug"
	}

	err := InitLogger(&logConfig{
		Level:      logLevel,
		LogFile:    viper.GetString("log-file"),
		LogFormat:  viper.GetString("log-format"),
		WithCaller: viper.GetBool("with-caller"),
	})
	cobra.CheckErr(err)
}

func initCommands(rootCmd *cobra.Command, configPath string) error {
	// GODBOT_OPENAI_API_KEY, GODBOT_BOT_CONFIG, ...
	viper.SetEnvPrefix("godbot")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.godbot")
		viper.AddConfigPath("/etc/godbot")

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(xdgConfigPath + "/godbot")
		}
	}

	err := viper.ReadInConfig()
	// if the file does not exist, continue normally
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; ignore error
	} else if err != nil {
		return err
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err = viper.BindPFlags(rootCmd.PersistentFlags())
	if err != nil {
		return err
	}

	initLogger()

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// logging flags
	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error, fatal, disabled)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "Also log to this file, rotated at 10MB")

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.godbot/config.yml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	// bot flags
	rootCmd.PersistentFlags().String("bot-config", "", "Bot config file (JSON, or YAML for .yaml/.yml)")
	rootCmd.PersistentFlags().String("preset", "god", "Built-in persona used when no bot config exists")
	rootCmd.PersistentFlags().Int("max-live-turns", memory.DefaultMaxLiveTurns, "Number of live turns kept in memory")

	// backend flags
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().String("openai-base-url", "", "OpenAI compatible API base URL")
	rootCmd.PersistentFlags().String("openai-settings", "", "Completion settings file (factories.openai.{client,completion})")
	rootCmd.PersistentFlags().String("engine", "", "Completion engine, or ollama model")
	rootCmd.PersistentFlags().String("backend", "openai", "Completion backend (openai, ollama, echo)")

	// parse the flags one time just to catch --config
	configFile := ""
	for idx, arg := range os.Args {
		if arg == "--config" {
			if len(os.Args) > idx+1 {
				configFile = os.Args[idx+1]
			}
		}
	}

	err := initCommands(rootCmd, configFile)
	if err != nil {
		panic(err)
	}

	cmds.RegisterCommands(rootCmd)
}
