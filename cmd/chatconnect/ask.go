package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chatconnect/internal/domain"
)

var askShowUsage bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askShowUsage, "usage", "u", false, "print token usage after the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	a, err := buildApp(cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Completion.TimeoutSecs)*time.Second+5*time.Second)
	defer cancel()

	question := strings.Join(args, " ")
	reply, err := a.service.Reply(ctx, []domain.Message{{Role: domain.RoleUser, Content: question}})
	if err != nil {
		return err
	}
	printReply(cmd.OutOrStdout(), reply, askShowUsage)
	return nil
}

func printReply(w io.Writer, reply domain.Reply, usage bool) {
	fmt.Fprintln(w, reply.Assistant.Content)
	if usage {
		fmt.Fprintf(w, "tokens: prompt=%d completion=%d total=%d\n",
			reply.Usage.PromptTokens, reply.Usage.CompletionTokens, reply.Usage.TotalTokens)
	}
}
