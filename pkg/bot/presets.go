package bot

import (
	"sort"
	"strings"

	"github.com/go-go-golems/godbot/pkg/conversation"
	"github.com/pkg/errors"
)

const (
	DefaultBotname = "God"

	defaultAuthor  = "Alexis"
	defaultContext = "God is the god of all beings. Yet, he is the most lovely god and answers in a very complete manner."
	kirbyContext   = "Kirby is as one of the most legendary video game characters of all time. " +
		"In virtually all his appearances, Kirby is depicted as cheerful, innocent and food-loving; " +
		"however, he becomes fearless, bold and clever in the face of danger."
)

// DefaultConfig is the persona a new bot starts with. The seed response is
// authored by botname.
func DefaultConfig(botname string) *Config {
	return &Config{
		Botname: botname,
		Context: defaultContext,
		Seed: conversation.NewDialogue(
			conversation.NewPrompt(defaultAuthor, "Who is god?"),
			conversation.NewResponse(botname, "Well, now that you ask, I can tell you. I, God is the great goddess is the god of everybody!"),
		),
	}
}

func KirbyConfig() *Config {
	return &Config{
		Botname: "Kirby",
		Context: kirbyContext,
		Seed: conversation.NewDialogue(
			conversation.NewPrompt(defaultAuthor, "Oh! Look there! What is that?"),
			conversation.NewResponse("Kirby", "Oh, that is king Dedede! I'm soooo scared!"),
			conversation.NewPrompt(defaultAuthor, "Let's fight this ennemy!"),
			conversation.NewResponse("Kirby", "But i have no sword!?!"),
			conversation.NewPrompt(defaultAuthor, "Here, take this minion."),
			conversation.NewResponse("Kirby", "Oof! Thanks for that! I can now fight!"),
		),
	}
}

var presets = map[string]func() *Config{
	"god":   func() *Config { return DefaultConfig(DefaultBotname) },
	"kirby": KirbyConfig,
}

var ErrUnknownPreset = errors.New("unknown preset")

// Preset returns a fresh copy of a built-in persona, looked up
// case-insensitively.
func Preset(name string) (*Config, error) {
	f, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPreset, "%q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return f(), nil
}

func PresetNames() []string {
	ret := make([]string, 0, len(presets))
	for name := range presets {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
