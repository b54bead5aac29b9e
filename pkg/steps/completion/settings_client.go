package completion

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// EnvAPIKey is the environment variable holding the backend credential.
const EnvAPIKey = "GODBOT_OPENAI_API_KEY"

type ClientSettings struct {
	APIKey       *string        `yaml:"api_key,omitempty"`
	Timeout      *time.Duration `yaml:"timeout,omitempty"`
	Organization *string        `yaml:"organization,omitempty"`
	BaseURL      *string        `yaml:"base_url,omitempty"`
	HTTPClient   *http.Client   `yaml:"-"`
}

// UnmarshalYAML accepts the timeout either as a number of seconds or as a
// duration string such as "1m30s".
func (c *ClientSettings) UnmarshalYAML(value *yaml.Node) error {
	aux := &struct {
		APIKey       *string `yaml:"api_key,omitempty"`
		Timeout      *string `yaml:"timeout,omitempty"`
		Organization *string `yaml:"organization,omitempty"`
		BaseURL      *string `yaml:"base_url,omitempty"`
	}{}
	if err := value.Decode(aux); err != nil {
		return err
	}
	c.APIKey = aux.APIKey
	c.Organization = aux.Organization
	c.BaseURL = aux.BaseURL
	if aux.Timeout != nil {
		t, err := parseTimeout(*aux.Timeout)
		if err != nil {
			return errors.Wrapf(err, "line %d: invalid timeout", value.Line)
		}
		c.Timeout = &t
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func (c *ClientSettings) IsValid() error {
	if c.APIKey == nil || strings.TrimSpace(*c.APIKey) == "" {
		return ErrMissingCredential
	}
	return nil
}

func (c *ClientSettings) Clone() *ClientSettings {
	return &ClientSettings{
		APIKey:       c.APIKey,
		Timeout:      c.Timeout,
		Organization: c.Organization,
		BaseURL:      c.BaseURL,
		HTTPClient:   c.HTTPClient,
	}
}

// WithAPIKeyFromEnvironment fills in the API key from EnvAPIKey if none is set.
func (c *ClientSettings) WithAPIKeyFromEnvironment() *ClientSettings {
	ret := c.Clone()
	if ret.APIKey != nil && *ret.APIKey != "" {
		return ret
	}
	if key, ok := os.LookupEnv(EnvAPIKey); ok && key != "" {
		ret.APIKey = &key
	}
	return ret
}

func (c *ClientSettings) CreateClient() (*openai.Client, error) {
	if err := c.IsValid(); err != nil {
		return nil, errors.Wrapf(err, "set %s or configure an api key", EnvAPIKey)
	}

	evt := log.Debug()
	config := openai.DefaultConfig(*c.APIKey)
	if c.BaseURL != nil && *c.BaseURL != "" {
		config.BaseURL = *c.BaseURL
		evt = evt.Str("base_url", *c.BaseURL)
	}
	if c.Organization != nil {
		config.OrgID = *c.Organization
		evt = evt.Str("organization", *c.Organization)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if c.Timeout != nil {
		// don't mutate a client handed to us by the caller
		client := *httpClient
		client.Timeout = *c.Timeout
		httpClient = &client
		evt = evt.Dur("timeout", *c.Timeout)
	}
	config.HTTPClient = httpClient
	evt.Msg("creating openai client")

	return openai.NewClientWithConfig(config), nil
}

func NewClientSettings() *ClientSettings {
	defaultTimeout := 60 * time.Second
	return &ClientSettings{
		Timeout: &defaultTimeout,
	}
}
