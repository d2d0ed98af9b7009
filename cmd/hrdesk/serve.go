package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/hrdesk/config"
	"github.com/mohammad-safakhou/hrdesk/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(*configPath)
			if addr != "" {
				cfg.Server.Address = addr
			}
			logger := log.New(log.Writer(), "[HRDESK] ", log.LstdFlags)

			sys, err := buildSystem(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if sys.audit != nil {
					_ = sys.audit.Close()
				}
			}()
			return server.Run(cfg, sys.serverDeps())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
