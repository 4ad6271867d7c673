package mcp

import (
	"context"
	"os"
	"os/exec"
	"sort"

	"github.com/m4xw311/nexus/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPClient manages the connection to a single MCP server subprocess and
// the tools it advertises.
type MCPClient struct {
	Name  string
	cmd   *exec.Cmd
	conn  *mcpsdk.ClientSession
	tools map[string]*MCPTool
}

// NewMCPClient starts the MCP server subprocess, connects over stdio, and
// discovers the tools it provides.
func NewMCPClient(name, command string, args []string) (*MCPClient, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	ctx := context.Background()
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "nexus", Version: "v1.0.0"}, nil)
	conn, err := client.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, errors.Wrapf(err, "failed to connect to MCP server '%s'", name)
	}

	c := &MCPClient{
		Name:  name,
		cmd:   cmd,
		conn:  conn,
		tools: make(map[string]*MCPTool),
	}

	params := &mcpsdk.ListToolsParams{}
	for {
		list, err := conn.ListTools(ctx, params)
		if err != nil {
			_ = cmd.Process.Kill()
			return nil, errors.Wrapf(err, "failed to list tools from MCP server '%s'", name)
		}
		for _, t := range list.Tools {
			c.tools[t.Name] = &MCPTool{
				serverName:  name,
				toolName:    t.Name,
				description: t.Description,
				client:      c,
			}
		}
		if list.NextCursor == "" {
			break
		}
		params.Cursor = list.NextCursor
	}

	return c, nil
}

// GetTool returns a tool provided by this server by its short name.
func (c *MCPClient) GetTool(toolName string) (*MCPTool, bool) {
	t, ok := c.tools[toolName]
	return t, ok
}

// AllTools returns every tool the server advertises, ordered by name.
func (c *MCPClient) AllTools() []Tool {
	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, c.tools[name])
	}
	return out
}

// Stop terminates the MCP server subprocess.
func (c *MCPClient) Stop() error {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// Tool mirrors the parent package's Tool interface to avoid an import cycle.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// MCPTool adapts a remote MCP server tool to the registry's Tool interface.
type MCPTool struct {
	serverName  string
	toolName    string
	description string
	client      *MCPClient
}

func (t *MCPTool) Name() string        { return t.toolName }
func (t *MCPTool) Description() string { return t.description }

// Execute forwards the call to the MCP server and concatenates the text
// content blocks of the result.
func (t *MCPTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	result, err := t.client.conn.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      t.toolName,
		Arguments: args,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call MCP tool '%s:%s'", t.serverName, t.toolName)
	}
	out := ""
	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			out += text.Text
		}
	}
	return out, nil
}
