package completion

import "context"

// Params are the generation parameters sent along with every prompt.
type Params struct {
	// Generation stops at the first occurrence of any of these sequences. The
	// returned text does not include the stop sequence.
	Stop        []string
	MaxTokens   int
	Temperature float32
	// Nucleus sampling threshold.
	TopP float32
}

func (p Params) Clone() Params {
	ret := p
	if p.Stop != nil {
		ret.Stop = append([]string{}, p.Stop...)
	}
	return ret
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string, params Params) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	return f(ctx, prompt, params)
}
