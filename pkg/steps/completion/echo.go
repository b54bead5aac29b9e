package completion

import (
	"context"
	"strings"
)

// EchoBackend answers with the text of the last prompt line. It needs no
// credentials and is used for offline runs and tests.
type EchoBackend struct{}

var _ Generator = EchoBackend{}

func NewEchoBackend() EchoBackend {
	return EchoBackend{}
}

func (e EchoBackend) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// the prompt ends with "{author}: {text}\n{botname}:"
	head := prompt
	if idx := strings.LastIndex(head, "\n"); idx >= 0 {
		head = head[:idx]
	}
	line := head
	if idx := strings.LastIndex(head, "\n"); idx >= 0 {
		line = head[idx+1:]
	}
	if _, text, ok := strings.Cut(line, ": "); ok {
		line = text
	}

	return " " + truncateAtStop(line, params.Stop), nil
}

// truncateAtStop cuts s at the first occurrence of any stop sequence.
func truncateAtStop(s string, stop []string) string {
	cut := len(s)
	for _, seq := range stop {
		if seq == "" {
			continue
		}
		if idx := strings.Index(s, seq); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return s[:cut]
}
