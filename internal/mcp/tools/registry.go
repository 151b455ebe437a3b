package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Option configures which tools are registered
type Option func(*registry)

type registry struct {
	server *sdkmcp.Server
	logger *logging.Logger
	names  []string
}

// Register applies the provided tool options and returns the registered names
func Register(server *sdkmcp.Server, logger *logging.Logger, opts ...Option) []string {
	if logger == nil {
		logger = logging.NewNop()
	}
	reg := &registry{server: server, logger: logger}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
	logger.Info("MCP tools registered", "tools", reg.names)
	return reg.names
}

func addTool[In any](reg *registry, tool *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, any]) {
	sdkmcp.AddTool(reg.server, tool, h)
	reg.names = append(reg.names, tool.Name)
}
