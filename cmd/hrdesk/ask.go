package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/hrdesk/config"
	"github.com/mohammad-safakhou/hrdesk/internal/agent"
)

func askCmd(configPath *string) *cobra.Command {
	var interactive bool
	var showSources bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(*configPath)
			logger := log.New(os.Stderr, "[HRDESK] ", log.LstdFlags)
			ctx := context.Background()

			sys, err := buildSystem(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if !interactive {
				if len(args) == 0 {
					return fmt.Errorf("question required (or use --interactive)")
				}
				return runOnce(ctx, sys, strings.Join(args, " "), showSources)
			}
			return runLoop(ctx, sys, showSources)
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start a conversational session")
	cmd.Flags().BoolVar(&showSources, "sources", false, "print evidence sources with each answer")
	return cmd
}

func runOnce(ctx context.Context, sys *system, question string, showSources bool) error {
	result, err := sys.engine.ProcessTurn(ctx, question, nil)
	if err != nil {
		return err
	}
	printResult(result, showSources)
	return nil
}

func runLoop(ctx context.Context, sys *system, showSources bool) error {
	sessionID := uuid.NewString()
	fmt.Printf("session %s — type 'exit' to quit\n", sessionID)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		history, err := sys.conversations.History(ctx, sessionID)
		if err != nil {
			return err
		}
		result, err := sys.engine.ProcessTurn(ctx, line, history)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		printResult(result, showSources)

		if err := sys.conversations.Append(ctx, sessionID,
			agent.Message{Role: agent.RoleUser, Content: line},
			result.AssistantMessage,
		); err != nil {
			return err
		}
	}
}

func printResult(result agent.TurnResult, showSources bool) {
	fmt.Println(result.FinalAnswer)
	if showSources && len(result.EvidenceSources) > 0 {
		fmt.Printf("(sources: %s)\n", strings.Join(result.EvidenceSources, ", "))
	}
}
