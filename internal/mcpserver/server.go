package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all Sentinel tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("sentinel", "1.0.0")
	client := NewSentinelClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolCheckPayee, h.HandleCheckPayee)
	s.AddTool(ToolPayeeHistory, h.HandlePayeeHistory)
	s.AddTool(ToolReportFraud, h.HandleReportFraud)
	s.AddTool(ToolPlatformStats, h.HandlePlatformStats)

	return s
}
