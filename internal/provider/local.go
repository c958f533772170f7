package provider

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// LocalProvider spawns a chat CLI in non-interactive "--print" mode for each
// call, passing the system prompt via flag and the user prompt on stdin.
// Its stderr is discarded: a misbehaving local model must never leak noise
// into the handler's own diagnostics stream.
type LocalProvider struct {
	command string
	model   string
	args    []string
}

// NewLocalProvider configures a local provider. command is the CLI binary
// name (resolved via PATH), model is passed with a --model flag when
// non-empty, extraArgs are appended verbatim before --print.
func NewLocalProvider(command, model string, extraArgs []string) *LocalProvider {
	return &LocalProvider{command: command, model: model, args: extraArgs}
}

func (p *LocalProvider) Name() string { return "local" }

// IsAvailable reports whether the configured binary resolves on PATH.
func (p *LocalProvider) IsAvailable() bool {
	if p.command == "" {
		return false
	}
	_, err := exec.LookPath(p.command)
	return err == nil
}

// Run spawns the CLI with a deadline of timeoutMs and returns its trimmed
// stdout, or nil on any failure.
func (p *LocalProvider) Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string {
	if !p.IsAvailable() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	args := append([]string{}, p.args...)
	if p.model != "" {
		args = append(args, "--model", p.model)
	}
	if systemPrompt != "" {
		args = append(args, "--system-prompt", systemPrompt)
	}
	args = append(args, "--print")

	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = strings.NewReader(userPrompt)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil
	}
	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return nil
	}
	return &text
}
