package cmd

import (
	"github.com/huangsam/pmpulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pmpulse MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run pmpulse reports as tools.

Every tool takes a user_id; the --user flag is not used.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
