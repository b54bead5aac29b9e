package completion

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultEngine = "gpt-3.5-turbo-instruct"

// Settings configure the OpenAI backend. Nil fields leave the caller's
// Params untouched.
type Settings struct {
	ClientSettings *ClientSettings `yaml:"client,omitempty"`

	Engine *string `yaml:"engine,omitempty"`

	MaxResponseTokens *int `yaml:"max_response_tokens,omitempty"`
	// Sampling temperature to use
	Temperature *float64 `yaml:"temperature,omitempty"`
	// Alternative to temperature for nucleus sampling
	TopP *float64 `yaml:"top_p,omitempty"`
	// Extra stop sequences, added after the ones the bot asks for.
	Stop []string `yaml:"stop,omitempty"`
}

func NewSettings() *Settings {
	return &Settings{
		ClientSettings: NewClientSettings(),
	}
}

func (s *Settings) Clone() *Settings {
	var clientSettings *ClientSettings
	if s.ClientSettings != nil {
		clientSettings = s.ClientSettings.Clone()
	}
	var stop []string
	if s.Stop != nil {
		stop = append([]string{}, s.Stop...)
	}
	return &Settings{
		ClientSettings:    clientSettings,
		Engine:            s.Engine,
		MaxResponseTokens: s.MaxResponseTokens,
		Temperature:       s.Temperature,
		TopP:              s.TopP,
		Stop:              stop,
	}
}

func (s *Settings) EngineOrDefault() string {
	if s.Engine != nil && *s.Engine != "" {
		return *s.Engine
	}
	return DefaultEngine
}

// Apply overlays the configured values on top of params.
func (s *Settings) Apply(params Params) Params {
	ret := params.Clone()
	if s.MaxResponseTokens != nil {
		ret.MaxTokens = *s.MaxResponseTokens
	}
	if s.Temperature != nil {
		ret.Temperature = float32(*s.Temperature)
	}
	if s.TopP != nil {
		ret.TopP = float32(*s.TopP)
	}
	for _, stop := range s.Stop {
		if !contains(ret.Stop, stop) {
			ret.Stop = append(ret.Stop, stop)
		}
	}
	return ret
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// settingsFileWrapper is the layout of the settings file:
//
//	factories:
//	  openai:
//	    client:
//	      api_key: SECRETSECRET
//	      timeout: 10
//	    completion:
//	      engine: gpt-3.5-turbo-instruct
//	      max_response_tokens: 250
type settingsFileWrapper struct {
	Factories struct {
		OpenAI *struct {
			ClientSettings *ClientSettings `yaml:"client,omitempty"`
			Settings       *Settings       `yaml:"completion,omitempty"`
		} `yaml:"openai"`
	} `yaml:"factories"`
}

func NewSettingsFromYAML(r io.Reader) (*Settings, error) {
	var wrapper settingsFileWrapper
	if err := yaml.NewDecoder(r).Decode(&wrapper); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "could not decode completion settings")
	}

	ret := NewSettings()
	openAI := wrapper.Factories.OpenAI
	if openAI == nil {
		return ret, nil
	}
	if openAI.Settings != nil {
		ret = openAI.Settings.Clone()
		if ret.ClientSettings == nil {
			ret.ClientSettings = NewClientSettings()
		}
	}
	if openAI.ClientSettings != nil {
		ret.ClientSettings = openAI.ClientSettings.Clone()
	}
	return ret, nil
}
