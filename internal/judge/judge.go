// Package judge runs the model-backed judgments: medical necessity review,
// fraud/waste/abuse screening, cost escalation explanation and recovery
// guidance. Every judgment returns a well-formed result; transport failures
// and unreadable responses degrade to a fixed default outcome.
package judge

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/gyeh/claimready/internal/llm"
	"github.com/gyeh/claimready/internal/model"
)

// ErrMalformed marks a response that does not carry the expected JSON object.
var ErrMalformed = errors.New("malformed model response")

// Retrier bounds how often a judgment call is attempted.
type Retrier struct {
	Attempts uint
	Delay    time.Duration
}

// DefaultRetrier makes two attempts one second apart.
var DefaultRetrier = Retrier{Attempts: 2, Delay: time.Second}

// Outcome is the result of a judgment call after retries. Err is set when
// every attempt failed.
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts uint
}

// Panel holds the shared model client for all judgments.
type Panel struct {
	client  llm.Client
	retrier Retrier
	log     zerolog.Logger
}

// NewPanel returns a Panel. A nil client behaves like llm.Disabled.
func NewPanel(client llm.Client, retrier Retrier, log zerolog.Logger) *Panel {
	if client == nil {
		client = llm.Disabled{}
	}
	if retrier.Attempts == 0 {
		retrier.Attempts = 1
	}
	return &Panel{client: client, retrier: retrier, log: log}
}

// call runs fn under the panel's retry policy. A disabled client is not retried.
func call[T any](ctx context.Context, p *Panel, agent model.Agent, fn func(context.Context) (T, error)) Outcome[T] {
	start := time.Now()
	var attempts uint
	value, err := retry.DoWithData(
		func() (T, error) {
			attempts++
			return fn(ctx)
		},
		retry.Attempts(p.retrier.Attempts),
		retry.Delay(p.retrier.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, llm.ErrDisabled)
		}),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn().Err(err).
				Str("agent", string(agent)).
				Uint("attempt", n+1).
				Msg("judgment call failed, retrying")
		}),
	)
	p.log.Debug().
		Str("agent", string(agent)).
		Uint("attempts", attempts).
		Dur("elapsed", time.Since(start)).
		Bool("ok", err == nil).
		Msg("judgment call finished")
	return Outcome[T]{Value: value, Err: err, Attempts: attempts}
}

// completeJSON asks the model and extracts the JSON object from its answer.
func (p *Panel) completeJSON(ctx context.Context, instruction, prompt string) (gjson.Result, error) {
	resp, err := p.client.Complete(ctx, instruction, prompt)
	if err != nil {
		return gjson.Result{}, err
	}
	return jsonObject(resp)
}

// jsonObject returns the outermost {...} span of s. Models often wrap the
// object in prose or code fences.
func jsonObject(s string) (gjson.Result, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return gjson.Result{}, errors.Wrap(ErrMalformed, "no JSON object found")
	}
	raw := s[start : end+1]
	if !gjson.Valid(raw) {
		return gjson.Result{}, errors.Wrap(ErrMalformed, "invalid JSON object")
	}
	return gjson.Parse(raw), nil
}

// str reads a string member, falling back to def when it is absent or blank.
func str(r gjson.Result, path, def string) string {
	if v := strings.TrimSpace(r.Get(path).String()); v != "" {
		return v
	}
	return def
}

// yes reads a boolean member that models sometimes send as "Yes"/"No".
func yes(r gjson.Result, path string) bool {
	v := r.Get(path)
	if v.Type == gjson.String {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v.String())), "y") ||
			strings.EqualFold(strings.TrimSpace(v.String()), "true")
	}
	return v.Bool()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
