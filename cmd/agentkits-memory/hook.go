package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agentkits/memory/internal/handler"
	"github.com/spf13/cobra"
)

// readHookInput decodes a handler.HookInput from stdin. A malformed or
// empty body decodes to the zero value rather than an error: every handler
// is built to tolerate absent fields, and a hook-event command must still
// exit 0.
func readHookInput(r io.Reader) handler.HookInput {
	var in handler.HookInput
	b, err := io.ReadAll(r)
	if err != nil {
		return in
	}
	_ = json.Unmarshal(b, &in)
	return in
}

// printHookResponse prints resp as the single line of JSON a hook-event
// command's caller expects, then always exits 0: the whole point of the
// standard response is that the host agent is never blocked by this
// program's internal failures.
func printHookResponse(resp handler.HookResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		fmt.Println(`{"continue":true,"suppressOutput":true}`)
		return
	}
	fmt.Println(string(b))
}

func runHookCommand(cmd *cobra.Command, run func(h *handler.Handler, in handler.HookInput) handler.HookResponse) {
	in := readHookInput(cmd.InOrStdin())
	if in.Cwd == "" {
		in.Cwd, _ = os.Getwd()
	}

	a, err := openApp(cmd.Context(), in.Cwd)
	if err != nil {
		printHookResponse(handler.HookResponse{Continue: true, SuppressOutput: true})
		return
	}
	defer a.Close()

	selfExe, _ := os.Executable()
	printHookResponse(run(a.handler(selfExe), in))
}

func buildContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Print the bounded retrieval context for a session",
		Run: func(cmd *cobra.Command, args []string) {
			runHookCommand(cmd, func(h *handler.Handler, in handler.HookInput) handler.HookResponse {
				return h.Context(cmd.Context(), in)
			})
		},
	}
}

func buildSessionInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session-init",
		Short: "Upsert a session and save its prompt",
		Run: func(cmd *cobra.Command, args []string) {
			runHookCommand(cmd, func(h *handler.Handler, in handler.HookInput) handler.HookResponse {
				return h.SessionInit(cmd.Context(), in)
			})
		},
	}
}

func buildObservationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "observation",
		Short: "Store one tool-invocation observation",
		Run: func(cmd *cobra.Command, args []string) {
			runHookCommand(cmd, func(h *handler.Handler, in handler.HookInput) handler.HookResponse {
				return h.Observation(cmd.Context(), in)
			})
		},
	}
}

func buildSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Persist a session summary and mark the session completed",
		Run: func(cmd *cobra.Command, args []string) {
			runHookCommand(cmd, func(h *handler.Handler, in handler.HookInput) handler.HookResponse {
				return h.Summarize(cmd.Context(), in)
			})
		},
	}
}

func buildUserMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user-message",
		Short: "Emit a status line describing available memory",
		Run: func(cmd *cobra.Command, args []string) {
			in := readHookInput(cmd.InOrStdin())
			if in.Cwd == "" {
				in.Cwd, _ = os.Getwd()
			}
			a, err := openApp(cmd.Context(), in.Cwd)
			if err != nil {
				printHookResponse(handler.HookResponse{Continue: true, SuppressOutput: true})
				return
			}
			defer a.Close()

			line := a.handler("").UserMessage(cmd.Context(), in)
			fmt.Fprintln(os.Stderr, line)
			printHookResponse(handler.HookResponse{Continue: true, SuppressOutput: true})
		},
	}
}
