package tokens

import (
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// DefaultEncoding matches the completion engines godbot talks to by default.
const DefaultEncoding = tokenizer.Cl100kBase

// Counter counts prompt tokens. It is only used for diagnostics: retention is
// measured in turns, not tokens.
type Counter struct {
	codec tokenizer.Codec
}

func NewCounter(encoding tokenizer.Encoding) (*Counter, error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load tokenizer %s", encoding)
	}
	return &Counter{codec: codec}, nil
}

// NewCounterForModel picks the encoding for a model name, and falls back to
// DefaultEncoding for models the tokenizer does not know.
func NewCounterForModel(model string) (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		return NewCounter(DefaultEncoding)
	}
	return &Counter{codec: codec}, nil
}

func (c *Counter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode text")
	}
	return len(ids), nil
}
