package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-go-golems/godbot/pkg/memory"
	"github.com/go-go-golems/godbot/pkg/steps/completion"
	"github.com/go-go-golems/godbot/pkg/tokens"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxTokens   = 250
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0

	// placeholders used by DescribeConfig to render a sample prompt
	sampleAuthor = "Username"
	sampleText   = "Some question"
)

// BackendFactory creates the completion backend of a new identity.
type BackendFactory func(botname string) (completion.Generator, error)

// OpenAIBackendFactory creates OpenAI backends from settings. A nil settings
// reads the credential from the environment.
func OpenAIBackendFactory(settings *completion.Settings) BackendFactory {
	return func(botname string) (completion.Generator, error) {
		return completion.NewOpenAIBackend(settings)
	}
}

// OllamaBackendFactory creates backends talking to the ollama server named by
// OLLAMA_HOST.
func OllamaBackendFactory(model string) BackendFactory {
	return func(botname string) (completion.Generator, error) {
		return completion.NewOllamaBackend(model)
	}
}

// Identity binds a bot name to its conversation memory and to the completion
// backend that speaks for it.
//
// An Identity is not safe for concurrent use: callers must serialize all
// mutating calls.
type Identity struct {
	botname   string
	memory    *memory.ConversationMemory
	backend   completion.Generator
	params    completion.Params
	sessionID uuid.UUID
	counter   *tokens.Counter
}

type options struct {
	backend        completion.Generator
	backendFactory BackendFactory
	params         completion.Params
	memoryOptions  []memory.Option
	config         *Config
}

type Option func(*options)

// WithBackend uses an already constructed backend instead of the factory.
func WithBackend(backend completion.Generator) Option {
	return func(o *options) {
		o.backend = backend
	}
}

func WithBackendFactory(factory BackendFactory) Option {
	return func(o *options) {
		o.backendFactory = factory
	}
}

// WithParams sets max tokens, temperature and top_p. Stop sequences are always
// derived from the current bot name.
func WithParams(maxTokens int, temperature, topP float32) Option {
	return func(o *options) {
		o.params.MaxTokens = maxTokens
		o.params.Temperature = temperature
		o.params.TopP = topP
	}
}

func WithMaxLiveTurns(n int) Option {
	return func(o *options) {
		o.memoryOptions = append(o.memoryOptions, memory.WithMaxLiveTurns(n))
	}
}

// WithConfig starts the identity with the context and seed dialogue of cfg
// instead of the default persona. The bot name passed to New wins.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// New creates an identity with an empty live dialogue. It fails with
// completion.ErrMissingCredential when the default backend has no API key.
func New(botname string, opts ...Option) (*Identity, error) {
	o := &options{
		backendFactory: OpenAIBackendFactory(nil),
		params: completion.Params{
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
			TopP:        DefaultTopP,
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = o.backendFactory(botname)
		if err != nil {
			return nil, errors.Wrapf(err, "could not create completion backend for %s", botname)
		}
	}

	cfg := o.config
	if cfg == nil {
		cfg = DefaultConfig(botname)
	}

	ret := &Identity{
		botname:   botname,
		memory:    memory.New(cfg.Context, cfg.Seed, o.memoryOptions...),
		backend:   backend,
		params:    o.params,
		sessionID: uuid.New(),
	}

	log.Debug().
		Str("bot", botname).
		Str("session", ret.sessionID.String()).
		Int("seed_turns", cfg.Seed.Len()).
		Msg("created bot identity")

	return ret, nil
}

// FromConfig creates a fresh identity named after cfg, with cfg's context and
// seed dialogue.
func FromConfig(cfg *Config, opts ...Option) (*Identity, error) {
	opts = append(append([]Option{}, opts...), WithConfig(cfg.Clone()))
	return New(cfg.Botname, opts...)
}

// ImportConfig parses a JSON config and creates a fresh identity from it. On a
// parse failure it returns a *ParseError and no identity.
func ImportConfig(data []byte, opts ...Option) (*Identity, error) {
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, opts...)
}

func (i *Identity) BuildPrompt(author, text string) string {
	return i.memory.BuildPrompt(author, text, i.botname)
}

// RecordExchange stores a prompt and the bot's answer in the live dialogue and
// applies the retention policy.
func (i *Identity) RecordExchange(author, text, response string) {
	i.memory.RecordPrompt(author, text)
	i.memory.RecordResponse(i.botname, response)
}

// Respond asks the backend for the bot's answer to text, records the exchange
// and returns the answer. A failed generation is returned as a
// *completion.BackendError and nothing is recorded.
func (i *Identity) Respond(ctx context.Context, author, text string) (string, error) {
	prompt := i.BuildPrompt(author, text)

	evt := log.Debug().
		Str("bot", i.botname).
		Str("session", i.sessionID.String()).
		Str("author", author).
		Int("live_turns", i.memory.LiveLen())
	if n, err := i.countTokens(prompt); err == nil {
		evt = evt.Int("prompt_tokens", n)
	}
	evt.Msg("generating response")

	out, err := i.backend.Generate(ctx, prompt, i.Params())
	if err != nil {
		var backendErr *completion.BackendError
		if !errors.As(err, &backendErr) {
			err = &completion.BackendError{Err: err}
		}
		log.Warn().Err(err).Str("bot", i.botname).Msg("generation failed, exchange not recorded")
		return "", err
	}

	response := strings.TrimSpace(out)
	i.RecordExchange(author, text, response)
	return response, nil
}

// Params returns the generation parameters. The stop sequences follow the
// current bot name so the backend never speaks for the bot twice.
func (i *Identity) Params() completion.Params {
	ret := i.params.Clone()
	ret.Stop = StopSequences(i.botname)
	return ret
}

func StopSequences(botname string) []string {
	return []string{botname + ":", "---", "\n"}
}

func (i *Identity) SetContext(text string) {
	i.memory.SetContext(text)
}

func (i *Identity) Context() string {
	return i.memory.Context()
}

func (i *Identity) SetBotname(name string) {
	log.Debug().Str("from", i.botname).Str("to", name).Msg("renaming bot")
	i.botname = name
}

func (i *Identity) Botname() string {
	return i.botname
}

func (i *Identity) SessionID() uuid.UUID {
	return i.sessionID
}

// Memory exposes the conversation memory, mostly for inspection.
func (i *Identity) Memory() *memory.ConversationMemory {
	return i.memory
}

// ResetLive forgets the current session. The persona and seed dialogue stay.
func (i *Identity) ResetLive() {
	i.memory.ClearLive()
	i.rotateSession("reset live dialogue")
}

// ResetAll forgets the seed dialogue and the current session. The context
// stays.
func (i *Identity) ResetAll() {
	i.memory.ClearAll()
	i.rotateSession("reset seed and live dialogue")
}

func (i *Identity) rotateSession(msg string) {
	previous := i.sessionID
	i.sessionID = uuid.New()
	log.Debug().
		Str("bot", i.botname).
		Str("previous_session", previous.String()).
		Str("session", i.sessionID.String()).
		Msg(msg)
}

// SeedInteraction adds an exchange the bot keeps across trimming and, once
// exported, across restarts.
func (i *Identity) SeedInteraction(author, text, response string) {
	i.memory.SeedInteraction(author, text, i.botname, response)
}

// ExportConfig snapshots the persisted part of the identity. The result shares
// no storage with the identity: Seed() already hands out a deep copy.
func (i *Identity) ExportConfig() *Config {
	return &Config{
		Botname: i.botname,
		Context: i.memory.Context(),
		Seed:    i.memory.Seed(),
	}
}

// UpdateFromConfig swaps the persona in place. The live dialogue is kept, so
// the current session continues under the new persona.
func (i *Identity) UpdateFromConfig(cfg *Config) {
	i.botname = cfg.Botname
	i.memory.SetContext(cfg.Context)
	i.memory.SetSeed(cfg.Seed)

	log.Debug().
		Str("bot", i.botname).
		Int("seed_turns", cfg.Seed.Len()).
		Int("live_turns", i.memory.LiveLen()).
		Msg("updated bot from config")
}

// DescribeConfig is a human readable dump of the bot: name, context, seed
// dialogue and a sample prompt.
func (i *Identity) DescribeConfig() string {
	sample := i.memory.BuildPrompt(sampleAuthor, sampleText, i.botname)

	var sb strings.Builder
	title := fmt.Sprintf("%s config.", i.botname)
	fmt.Fprintf(&sb, "%s\n%s\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(&sb, "Context:\n--------\n%s\n", i.memory.Context())
	fmt.Fprintf(&sb, "Initial memory:\n---------------\n%s", i.memory.Seed().String())
	fmt.Fprintf(&sb, "Current memory:\n---------------\n%s\n", sample)
	fmt.Fprintf(&sb, "\nLive turns: %d/%d\n", i.memory.LiveLen(), i.memory.MaxLiveTurns())
	if n, err := i.countTokens(sample); err == nil {
		fmt.Fprintf(&sb, "Sample prompt tokens: %d\n", n)
	}
	return sb.String()
}

func (i *Identity) countTokens(text string) (int, error) {
	if i.counter == nil {
		counter, err := tokens.NewCounter(tokens.DefaultEncoding)
		if err != nil {
			return 0, err
		}
		i.counter = counter
	}
	return i.counter.Count(text)
}
