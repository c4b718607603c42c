// Package completion runs a single chat-completion request and reports the
// result as an explicit Outcome instead of printing it.
package completion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nox-hq/chatcall/provider"
)

// DefaultModel is the model every request is sent to unless Config says
// otherwise.
const DefaultModel = "gpt-3.5-turbo"

// DefaultMessages returns a fresh copy of the fixed conversation.
func DefaultMessages() []provider.Message {
	return []provider.Message{
		{Role: provider.RoleSystem, Content: "You are a helpful assistant."},
		{Role: provider.RoleUser, Content: "Write a haiku about recursion in programming."},
	}
}

// Config is supplied by the caller, who decides where the credential comes
// from. Neither the invoker nor the provider it builds reads the process
// environment.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each request. Zero keeps the transport default.
	Timeout time.Duration

	Model    string
	Messages []provider.Message
}

// Invoker performs one request/response cycle per Run.
type Invoker struct {
	provider provider.Provider
	model    string
	messages []provider.Message
	redactor *Redactor
	logger   *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithProvider replaces the OpenAI-backed provider built from Config.
func WithProvider(p provider.Provider) Option {
	return func(inv *Invoker) { inv.provider = p }
}

// WithLogger sets the logger for debug records (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(inv *Invoker) {
		if l != nil {
			inv.logger = l
		}
	}
}

// New creates an Invoker from cfg.
func New(cfg Config, opts ...Option) *Invoker {
	inv := &Invoker{
		model:    cfg.Model,
		messages: cfg.Messages,
		redactor: NewRedactor(cfg.APIKey),
		logger:   slog.Default(),
	}
	if inv.model == "" {
		inv.model = DefaultModel
	}
	if len(inv.messages) == 0 {
		inv.messages = DefaultMessages()
	}
	for _, o := range opts {
		o(inv)
	}
	if inv.provider == nil {
		inv.provider = provider.NewOpenAIProvider(
			provider.WithAPIKey(cfg.APIKey),
			provider.WithBaseURL(cfg.BaseURL),
			provider.WithTimeout(cfg.Timeout),
		)
	}
	return inv
}

// Request builds the payload for one call. Each call returns a new value.
func (inv *Invoker) Request() provider.CompletionRequest {
	msgs := make([]provider.Message, len(inv.messages))
	copy(msgs, inv.messages)
	return provider.CompletionRequest{
		Model:    inv.model,
		Messages: msgs,
	}
}

// Run sends one request and waits for the reply. It never returns an error:
// every failure is folded into a Failure outcome.
func (inv *Invoker) Run(ctx context.Context) Outcome {
	req := inv.Request()

	inv.logger.Debug("completion", "from", StateIdle, "state", StateRequesting,
		"model", req.Model, "messages", len(req.Messages))
	start := time.Now()

	resp, err := inv.provider.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		f := Failure{
			Kind:   provider.Classify(err),
			Detail: singleLine(inv.redactor.Redact(err.Error())),
		}
		inv.logger.Debug("completion", "state", StateFailed,
			"kind", f.Kind, "elapsed", elapsed)
		return f
	}

	inv.logger.Debug("completion", "state", StateSucceeded,
		"elapsed", elapsed,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return Success{Message: resp.Message, Usage: resp.Usage}
}

// singleLine collapses runs of whitespace, including the newlines of
// pretty-printed error bodies, into single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
