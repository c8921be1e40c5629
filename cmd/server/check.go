package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadiek/interview-coach/internal/config"
	"github.com/chadiek/interview-coach/internal/llm"
)

const checkPrompt = "Say 'The Backend is working!' if you can hear me."

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the API key and send one test chat completion",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		client := llm.NewClient(cfg.GroqAPIKey, cfg.LLMBaseURL, cfg.ChatModel)
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return runCheck(ctx, cmd.OutOrStdout(), cfg, client)
	},
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

func runCheck(ctx context.Context, out io.Writer, cfg config.Config, chat completer) error {
	fmt.Fprintf(out, "Found API key (starts with: %s)\n", cfg.KeyPreview())
	fmt.Fprintf(out, "Sending test message to %s using %s...\n", cfg.LLMBaseURL, cfg.ChatModel)

	reply, err := chat.Complete(ctx, llm.Request{
		System:   "You are a helpful assistant.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: checkPrompt}},
	})
	if err != nil {
		fmt.Fprintln(out, "Common causes:")
		fmt.Fprintln(out, "1. The API key is invalid.")
		fmt.Fprintln(out, "2. The network is blocking the connection.")
		return fmt.Errorf("test completion failed: %w", err)
	}
	fmt.Fprintf(out, "Response:\n%s\n", reply)
	return nil
}
