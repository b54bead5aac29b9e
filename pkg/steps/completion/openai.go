package completion

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// maxStopSequences is the number of stop sequences the OpenAI API accepts.
const maxStopSequences = 4

// OpenAIBackend generates completions through an OpenAI compatible API.
type OpenAIBackend struct {
	client   *openai.Client
	settings *Settings
}

var _ Generator = (*OpenAIBackend)(nil)

// NewOpenAIBackend creates the API client up front, so a missing credential is
// reported at construction time rather than on the first message.
func NewOpenAIBackend(settings *Settings) (*OpenAIBackend, error) {
	if settings == nil {
		settings = NewSettings()
	}
	settings = settings.Clone()
	if settings.ClientSettings == nil {
		return nil, ErrMissingClientSettings
	}
	settings.ClientSettings = settings.ClientSettings.WithAPIKeyFromEnvironment()

	client, err := settings.ClientSettings.CreateClient()
	if err != nil {
		return nil, err
	}

	return &OpenAIBackend{
		client:   client,
		settings: settings,
	}, nil
}

func (b *OpenAIBackend) Engine() string {
	return b.settings.EngineOrDefault()
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	engine := b.Engine()
	params = b.settings.Apply(params)

	stop := params.Stop
	if len(stop) > maxStopSequences {
		log.Warn().
			Strs("stop", stop).
			Int("max", maxStopSequences).
			Msg("too many stop sequences, dropping the last ones")
		stop = stop[:maxStopSequences]
	}

	log.Debug().
		Str("engine", engine).
		Int("max_response_tokens", params.MaxTokens).
		Float32("temperature", params.Temperature).
		Float32("top_p", params.TopP).
		Strs("stop", stop).
		Int("prompt_length", len(prompt)).
		Msg("sending completion request")

	var completion string
	var err error
	if isChatEngine(engine) {
		completion, err = b.runChatCompletion(ctx, engine, prompt, params, stop)
	} else {
		completion, err = b.runCompletion(ctx, engine, prompt, params, stop)
	}
	if err != nil {
		return "", &BackendError{Engine: engine, Err: err}
	}

	log.Debug().
		Str("engine", engine).
		Int("completion_length", len(completion)).
		Msg("received completion")

	return completion, nil
}

func (b *OpenAIBackend) runCompletion(ctx context.Context, engine, prompt string, params Params, stop []string) (string, error) {
	req := openai.CompletionRequest{
		Model:       engine,
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		N:           1,
		Echo:        false,
		Stop:        stop,
	}

	resp, err := b.client.CreateCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.WithStack(ErrNoChoices)
	}

	return resp.Choices[0].Text, nil
}

// runChatCompletion sends the whole assembled prompt as a single user message,
// for engines that only serve the chat endpoint.
func (b *OpenAIBackend) runChatCompletion(ctx context.Context, engine, prompt string, params Params, stop []string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       engine,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		N:           1,
		Stop:        stop,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.WithStack(ErrNoChoices)
	}

	return resp.Choices[0].Message.Content, nil
}

func isChatEngine(engine string) bool {
	if strings.HasSuffix(engine, "-instruct") {
		return false
	}
	return strings.HasPrefix(engine, "gpt-3.5-turbo") ||
		strings.HasPrefix(engine, "gpt-4")
}
