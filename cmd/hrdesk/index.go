package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/hrdesk/config"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

// verifyProbes pairs a retrieval query with a fragment the top evidence
// should mention. They exercise the index end to end against the shipped
// policy corpus.
var verifyProbes = []struct {
	query    string
	expected string
}{
	{"how many sick days do I get", "sick"},
	{"maternity leave duration", "maternity"},
	{"password requirements", "password"},
	{"hotel expense limit for domestic travel", "hotel"},
	{"working from home eligibility", "remote"},
}

func indexCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the evidence index",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Build the index and print corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(*configPath)
			logger := log.New(os.Stderr, "[INDEX] ", log.LstdFlags)
			sys, err := buildSystem(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			fmt.Printf("documents: %d\nchunks: %d\nhybrid: %v\n", sys.docs, sys.chunks, cfg.Retrieval.Hybrid)
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Build the index and run retrieval probes against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(*configPath)
			logger := log.New(os.Stderr, "[INDEX] ", log.LstdFlags)
			ctx := context.Background()
			sys, err := buildSystem(ctx, cfg, logger)
			if err != nil {
				return err
			}

			failures := 0
			for _, probe := range verifyProbes {
				chunks, err := sys.manager.Search(ctx, probe.query, cfg.Retrieval.TopK)
				if err != nil {
					return fmt.Errorf("probe %q: %w", probe.query, err)
				}
				if !probeHit(chunks, probe.expected) {
					failures++
					fmt.Printf("MISS  %q (no retrieved chunk mentions %q)\n", probe.query, probe.expected)
					continue
				}
				fmt.Printf("ok    %q\n", probe.query)
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d probes missed", failures, len(verifyProbes))
			}
			fmt.Printf("all %d probes hit\n", len(verifyProbes))
			return nil
		},
	}

	cmd.AddCommand(stats, verify)
	return cmd
}

func probeHit(chunks []chunker.Chunk, expected string) bool {
	for _, c := range chunks {
		if strings.Contains(strings.ToLower(c.Text), strings.ToLower(expected)) {
			return true
		}
	}
	return false
}
