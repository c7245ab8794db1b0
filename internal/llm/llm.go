// Package llm is the narrow text-completion contract used by the judgment
// checkers, with an implementation backed by an OpenAI-compatible endpoint.
package llm

import (
	"context"
	"strings"

	"github.com/checkmarble/llmberjack"
	"github.com/checkmarble/llmberjack/llms/openai"
	"github.com/cockroachdb/errors"
)

// ErrDisabled is returned by Disabled for every call.
var ErrDisabled = errors.New("language model not configured")

// Client completes a single prompt under a system instruction.
type Client interface {
	Complete(ctx context.Context, instruction, prompt string) (string, error)
}

// Options configures the provider. Empty values fall back to provider defaults.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Llmberjack is a Client that routes requests through a single "main" provider.
type Llmberjack struct {
	adapter *llmberjack.Llmberjack
	model   string
}

// New creates the provider and adapter.
func New(opts Options) (*Llmberjack, error) {
	var providerOpts []openai.Opt
	if opts.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseUrl(opts.BaseURL))
	}
	if opts.APIKey != "" {
		providerOpts = append(providerOpts, openai.WithApiKey(opts.APIKey))
	}

	provider, err := openai.New(providerOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OpenAI provider")
	}

	var adapter *llmberjack.Llmberjack
	if opts.Model != "" {
		adapter, err = llmberjack.New(
			llmberjack.WithProvider("main", provider),
			llmberjack.WithDefaultModel(opts.Model),
		)
	} else {
		adapter, err = llmberjack.New(llmberjack.WithProvider("main", provider))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM adapter")
	}
	return &Llmberjack{adapter: adapter, model: opts.Model}, nil
}

// Complete sends one user turn and returns the first candidate's text.
func (c *Llmberjack) Complete(ctx context.Context, instruction, prompt string) (string, error) {
	req := llmberjack.NewRequest[string]()
	if c.model != "" {
		req = req.WithModel(c.model)
	}
	if instruction != "" {
		req = req.WithInstruction(instruction)
	}

	resp, err := req.WithText(llmberjack.RoleUser, prompt).Do(ctx, c.adapter)
	if err != nil {
		return "", errors.Wrap(err, "could not complete prompt")
	}
	out, err := resp.Get(0)
	if err != nil {
		return "", errors.Wrap(err, "could not read completion")
	}
	return strings.TrimSpace(out), nil
}

// Disabled is a Client for runs without model access. Every judgment degrades
// to its default outcome.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
