package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aditya493/linkedin-devops-automation/llm"
)

func newProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "AI backend utilities",
	}
	cmd.AddCommand(newProvidersCheckCmd())
	return cmd
}

// providers check sends a tiny prompt to every configured backend and
// reports which ones answer. Useful after rotating API keys.
func newProvidersCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe every configured AI backend with a test prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := backendsFromViper()
			if len(backends) == 0 {
				return fmt.Errorf("no providers configured (set providers.<name>.api_key)")
			}
			ok := 0
			for _, b := range backends {
				start := time.Now()
				res, err := b.Complete(cmd.Context(), llm.Request{
					Task:      llm.TaskGenerate,
					Prompt:    "Reply with the single word: ready",
					MaxTokens: 10,
				})
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %-12s %v\n", b.Name(), err)
					continue
				}
				ok++
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %-12s %s (%q)\n",
					b.Name(), time.Since(start).Round(time.Millisecond), truncate(res.Text, 40))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d backends responding\n", ok, len(backends))
			if ok == 0 {
				return fmt.Errorf("all backends failed")
			}
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
