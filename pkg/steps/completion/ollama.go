package completion

import (
	"context"
	"strings"

	"github.com/jmorganca/ollama/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultOllamaModel = "llama2"

// OllamaBackend generates raw completions with a local ollama server. The
// server address is read from OLLAMA_HOST.
type OllamaBackend struct {
	client *api.Client
	model  string
}

var _ Generator = (*OllamaBackend)(nil)

func NewOllamaBackend(model string) (*OllamaBackend, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "could not create ollama client")
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaBackend{
		client: client,
		model:  model,
	}, nil
}

func (b *OllamaBackend) Engine() string {
	return b.model
}

func ollamaOptions(params Params) map[string]interface{} {
	ret := map[string]interface{}{
		"temperature": params.Temperature,
		"top_p":       params.TopP,
	}
	if params.MaxTokens > 0 {
		ret["num_predict"] = params.MaxTokens
	}
	if len(params.Stop) > 0 {
		ret["stop"] = params.Stop
	}
	return ret
}

func (b *OllamaBackend) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   b.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  &stream,
		Options: ollamaOptions(params),
	}

	log.Debug().
		Str("engine", b.model).
		Int("max_response_tokens", params.MaxTokens).
		Strs("stop", params.Stop).
		Int("prompt_length", len(prompt)).
		Msg("sending ollama generate request")

	var sb strings.Builder
	err := b.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", &BackendError{Engine: b.model, Err: err}
	}

	// ollama keeps the stop sequence in raw mode on some models
	return truncateAtStop(sb.String(), params.Stop), nil
}
