package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/tools/mcp"
)

// Tool defines the interface for any action the agent can take.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolRegistry holds all available tools, builtin and MCP-provided.
type ToolRegistry struct {
	tools      map[string]Tool
	mcpClients map[string]*mcp.MCPClient
}

// NewToolRegistry builds a registry with the builtin sandboxed file tools
// and any MCP servers declared in the configuration. MCP servers that fail
// to start are skipped with a warning rather than aborting startup.
func NewToolRegistry(cfg *config.Config, sandbox *Sandbox) *ToolRegistry {
	r := &ToolRegistry{
		tools:      make(map[string]Tool),
		mcpClients: make(map[string]*mcp.MCPClient),
	}

	r.Register(&ReadFileTool{sandbox: sandbox})
	r.Register(&WriteFileTool{sandbox: sandbox})
	r.Register(&ListDirTool{sandbox: sandbox})

	for _, server := range cfg.AdditionalMCPServers {
		client, err := mcp.NewMCPClient(server.Name, server.Command, server.Args)
		if err != nil {
			fmt.Printf("Warning: could not initialize MCP server '%s': %v\n", server.Name, err)
			continue
		}
		r.mcpClients[server.Name] = client
	}

	return r
}

func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// GetTool resolves a tool by name. Names of the form "<server>:<tool>" are
// looked up on the matching MCP server.
func (r *ToolRegistry) GetTool(name string) (Tool, bool) {
	if server, toolName, found := strings.Cut(name, ":"); found {
		client, ok := r.mcpClients[server]
		if !ok {
			return nil, false
		}
		return client.GetTool(toolName)
	}
	t, ok := r.tools[name]
	return t, ok
}

// GetActiveTools returns the tool instances for a given toolset. MCP entries
// support a trailing wildcard ("<server>:*") to pull in every tool a server
// exposes.
func (r *ToolRegistry) GetActiveTools(ts *config.Toolset) ([]Tool, error) {
	var activeTools []Tool
	for _, toolName := range ts.Tools {
		if server, pattern, found := strings.Cut(toolName, ":"); found {
			client, ok := r.mcpClients[server]
			if !ok {
				return nil, errors.New("MCP server '%s' from toolset '%s' is not configured", server, ts.Name)
			}
			if pattern == "*" {
				for _, t := range client.AllTools() {
					activeTools = append(activeTools, t)
				}
				continue
			}
			t, ok := client.GetTool(pattern)
			if !ok {
				return nil, errors.New("MCP tool '%s' is not provided by server '%s'", pattern, server)
			}
			activeTools = append(activeTools, t)
			continue
		}

		if t, ok := r.GetTool(toolName); ok {
			activeTools = append(activeTools, t)
		} else {
			return nil, errors.New("tool '%s' from toolset '%s' is not registered", toolName, ts.Name)
		}
	}
	return activeTools, nil
}

// Names returns the registered builtin tool names, sorted.
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop terminates all MCP server subprocesses.
func (r *ToolRegistry) Stop() {
	for _, client := range r.mcpClients {
		if err := client.Stop(); err != nil {
			fmt.Printf("Warning: failed to stop MCP server '%s': %v\n", client.Name, err)
		}
	}
}
