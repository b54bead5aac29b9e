// Package memory holds the state a bot feeds to a completion backend: a static
// persona context, a seed dialogue the bot is born with, and the live dialogue
// of the current session.
//
// The seed dialogue is never trimmed and only changes through explicit
// seeding or a full reset. The live dialogue is trimmed to the most recent
// MaxLiveTurns turns after every recorded response.
//
// The retention cutoff counts turns, not tokens, so it only approximates the
// prompt budget of the backend.
package memory

import (
	"strings"

	"github.com/go-go-golems/godbot/pkg/conversation"
	"github.com/rs/zerolog/log"
)

// DefaultMaxLiveTurns is the number of live turns kept after each response.
const DefaultMaxLiveTurns = 12

// HeaderSeparator separates the persona context from the dialogue in a prompt.
const HeaderSeparator = "\n\n---\n\n"

type ConversationMemory struct {
	context      string
	seed         conversation.Dialogue
	live         conversation.Dialogue
	maxLiveTurns int
}

type Option func(*ConversationMemory)

// WithMaxLiveTurns overrides DefaultMaxLiveTurns. Values <= 0 are ignored.
func WithMaxLiveTurns(n int) Option {
	return func(m *ConversationMemory) {
		if n > 0 {
			m.maxLiveTurns = n
		}
	}
}

func New(context string, seed conversation.Dialogue, options ...Option) *ConversationMemory {
	ret := &ConversationMemory{
		context:      context,
		seed:         seed.Clone(),
		maxLiveTurns: DefaultMaxLiveTurns,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// BuildPrompt renders the full text handed to the completion backend. It ends
// with the "{botname}:" cue and no newline, so the backend continues speaking
// as the bot.
func (m *ConversationMemory) BuildPrompt(author, text, botname string) string {
	var sb strings.Builder
	sb.WriteString(m.String())
	sb.WriteString(conversation.NewPrompt(author, text).String())
	sb.WriteString(botname)
	sb.WriteString(":")
	return sb.String()
}

func (m *ConversationMemory) RecordPrompt(author, text string) {
	m.live.Append(conversation.NewPrompt(author, text))
}

// RecordResponse appends a bot response to the live dialogue and applies the
// retention policy.
func (m *ConversationMemory) RecordResponse(author, text string) {
	m.live.Append(conversation.NewResponse(author, text))
	m.Clean()
}

// Clean keeps only the most recent MaxLiveTurns live turns.
func (m *ConversationMemory) Clean() {
	dropped := m.live.KeepLast(m.maxLiveTurns)
	if dropped > 0 {
		log.Trace().
			Int("dropped", dropped).
			Int("kept", m.live.Len()).
			Msg("trimmed live dialogue")
	}
}

func (m *ConversationMemory) ClearLive() {
	m.live.Clear()
}

// ClearAll empties both the seed and the live dialogue. The context is kept.
func (m *ConversationMemory) ClearAll() {
	m.seed.Clear()
	m.live.Clear()
}

// SeedInteraction adds a prompt/response exchange to the seed dialogue.
func (m *ConversationMemory) SeedInteraction(author, text, botname, response string) {
	m.seed.Append(conversation.NewPrompt(author, text))
	m.seed.Append(conversation.NewResponse(botname, response))
}

func (m *ConversationMemory) Context() string {
	return m.context
}

func (m *ConversationMemory) SetContext(context string) {
	m.context = context
}

// Seed returns a copy of the seed dialogue.
func (m *ConversationMemory) Seed() conversation.Dialogue {
	return m.seed.Clone()
}

// SetSeed replaces the seed dialogue with a copy of seed.
func (m *ConversationMemory) SetSeed(seed conversation.Dialogue) {
	m.seed = seed.Clone()
}

// Live returns a copy of the live dialogue.
func (m *ConversationMemory) Live() conversation.Dialogue {
	return m.live.Clone()
}

// LiveLen is the number of live turns, without copying them.
func (m *ConversationMemory) LiveLen() int {
	return m.live.Len()
}

func (m *ConversationMemory) MaxLiveTurns() int {
	return m.maxLiveTurns
}

// String renders the prompt head: context, separator, seed and live dialogue.
func (m *ConversationMemory) String() string {
	var sb strings.Builder
	sb.WriteString(m.context)
	sb.WriteString(HeaderSeparator)
	sb.WriteString(m.seed.String())
	sb.WriteString(m.live.String())
	return sb.String()
}
