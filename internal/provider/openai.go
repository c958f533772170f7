package provider

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// HostedBProvider is the OpenAI-backed hosted AI provider, shaped after a
// conventional OpenAIProvider (internal/agent/providers/openai.go), trimmed
// to a single-shot chat completion.
type HostedBProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewHostedBProvider configures the OpenAI transport. An empty apiKey makes
// IsAvailable report false without attempting a call.
func NewHostedBProvider(apiKey, model string) *HostedBProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &HostedBProvider{client: client, apiKey: apiKey, model: model}
}

func (p *HostedBProvider) Name() string { return "hosted-b" }

func (p *HostedBProvider) IsAvailable() bool { return p.apiKey != "" && p.client != nil }

// Run sends one chat completion request and returns the first choice's
// message content, or nil on any error, empty response, or timeout.
func (p *HostedBProvider) Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string {
	if !p.IsAvailable() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userPrompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil || len(resp.Choices) == 0 {
		return nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil
	}
	return &text
}
