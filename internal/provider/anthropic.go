package provider

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// HostedAProvider is the Anthropic-backed hosted AI provider, shaped after
// a conventional AnthropicProvider (internal/agent/providers/anthropic.go),
// trimmed to the single-shot, non-streaming, non-tool-calling exchange this
// system needs.
type HostedAProvider struct {
	client  anthropic.Client
	apiKey  string
	model   string
	maxRetries int
}

// NewHostedAProvider configures the Anthropic transport. An empty apiKey
// makes IsAvailable report false without attempting a call.
func NewHostedAProvider(apiKey, model string) *HostedAProvider {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &HostedAProvider{
		client:     anthropic.NewClient(opts...),
		apiKey:     apiKey,
		model:      model,
		maxRetries: 2,
	}
}

func (p *HostedAProvider) Name() string { return "hosted-a" }

func (p *HostedAProvider) IsAvailable() bool { return p.apiKey != "" }

// Run sends one message and returns the concatenated text content, or nil
// on any error, empty response, or timeout.
func (p *HostedAProvider) Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string {
	if !p.IsAvailable() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		msg, err := p.client.Messages.New(ctx, params)
		if err == nil {
			text := extractAnthropicText(msg)
			if text == "" {
				return nil
			}
			return &text
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil
		}
	}
	_ = lastErr
	return nil
}

func extractAnthropicText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
