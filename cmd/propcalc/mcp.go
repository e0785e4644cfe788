package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/ashutoshrp06/propcalc/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the calculators over MCP stdio",
	Long: `Run an MCP server on stdin/stdout exposing one tool per calculator
plus suggest_calculator. Logs go to stderr.

Example client entry:
  {"command": "propcalc", "args": ["mcp"]}`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		logger := createLogger(cfg, zapcore.InfoLevel)
		defer logger.Sync()

		s := mcpserver.New(mcpserver.Config{
			Name:     cfg.MCP.ServerName,
			Version:  Version,
			Defaults: cfg.FormDefaults(),
			Logger:   logger,
		})
		return s.Serve()
	},
}
