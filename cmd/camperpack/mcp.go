package main

import (
	"fmt"

	"github.com/camperpack/camperpack"
	"github.com/camperpack/camperpack/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run CamperPack as an MCP (Model Context Protocol) server over
stdio, exposing inventory and trip tools to agent frameworks.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	// The MCP server is long-lived, so background sync is worth having.
	cfg.AutoSync = true

	client, err := camperpack.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	return mcp.NewServer(client).Run()
}
