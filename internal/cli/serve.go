package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/loadplan/internal/mcpserver"
	"github.com/GabrielNunesIT/loadplan/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			svc, st, closeStore, err := c.service(cfg, c.log)
			defer closeStore()
			if err != nil {
				return err
			}

			srv, err := server.New(c.log, svc, st)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Server.Addr())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	return cmd
}

func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve generation tools over the Model Context Protocol on stdio",
		RunE: func(_ *cobra.Command, _ []string) error {
			// stdout carries the protocol, so logs go to stderr.
			log := logger.NewConsoleLogger(os.Stderr)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc, _, closeStore, err := c.service(cfg, log)
			defer closeStore()
			if err != nil {
				return err
			}

			log.Infof("Serving MCP tools on stdio")
			return mcpserver.Serve(mcpserver.NewServer(log, svc, Version))
		},
	}
}
