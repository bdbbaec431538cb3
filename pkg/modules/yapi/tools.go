package yapi

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shaowenchen/yapi-mcp-server/pkg/metrics"
)

// Instructions returns the text sent to clients in the initialize response,
// naming the tools as clients will see them.
func (m *Module) Instructions() string {
	tc := GetDefaultToolsConfig()
	return fmt.Sprintf(`This server queries API documentation stored in YApi.

Tools:
1. %s - recommended, paste a YApi interface link such as %s
2. %s - interface details by id
3. %s - project information
4. %s - interfaces of a project or of one category
5. %s - search a project by interface name or path

The server reads YAPI_BASE_URL (YApi server address) and YAPI_TOKEN (optional
access token for private projects). Every tool also accepts a token argument;
the configured token is only sent to the configured server.`,
		m.BuildToolName(tc.LookupByURL.Name), exampleInterfaceURL,
		m.BuildToolName(tc.GetInterface.Name),
		m.BuildToolName(tc.GetProject.Name),
		m.BuildToolName(tc.ListInterfaces.Name),
		m.BuildToolName(tc.SearchInterface.Name))
}

// ToolConfig defines configuration for a single tool
type ToolConfig struct {
	Enabled     bool   // Whether the tool is enabled
	Name        string // Tool name
	Description string // Tool description
}

// YApiToolsConfig defines configuration for all tools
type YApiToolsConfig struct {
	LookupByURL     ToolConfig
	GetInterface    ToolConfig
	GetProject      ToolConfig
	ListInterfaces  ToolConfig
	SearchInterface ToolConfig
}

// GetDefaultToolsConfig returns default tool configuration
func GetDefaultToolsConfig() YApiToolsConfig {
	return YApiToolsConfig{
		LookupByURL: ToolConfig{
			Enabled:     true,
			Name:        "lookup-by-url",
			Description: "Get interface details from a YApi interface page URL, e.g. " + exampleInterfaceURL + ". The request is sent to the server named in the URL.",
		},
		GetInterface: ToolConfig{
			Enabled:     true,
			Name:        "get-interface",
			Description: "Get YApi interface details: request parameters, headers, request body schema, response example and schema.",
		},
		GetProject: ToolConfig{
			Enabled:     true,
			Name:        "get-project",
			Description: "Get YApi project information such as name, description and members.",
		},
		ListInterfaces: ToolConfig{
			Enabled:     true,
			Name:        "list-interfaces",
			Description: "List the interfaces of a YApi project, or of one category when cat_id is given.",
		},
		SearchInterface: ToolConfig{
			Enabled:     true,
			Name:        "search-interface",
			Description: "Search interfaces in a YApi project by name or path.",
		},
	}
}

// BuildToolName builds tool name based on configuration
func (m *Module) BuildToolName(baseName string) string {
	toolName := baseName
	if m.config.Tools.Prefix != "" {
		toolName = m.config.Tools.Prefix + toolName
	}
	if m.config.Tools.Suffix != "" {
		toolName = toolName + m.config.Tools.Suffix
	}
	return toolName
}

// BuildTools builds tool list based on configuration
func (m *Module) BuildTools(toolsConfig YApiToolsConfig) []server.ServerTool {
	var tools []server.ServerTool

	if toolsConfig.LookupByURL.Enabled {
		toolName := m.BuildToolName(toolsConfig.LookupByURL.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildLookupByURLToolDefinition(toolsConfig.LookupByURL),
			Handler: metrics.WrapToolHandler(m.handleLookupByURL, toolName, "yapi"),
		})
	}

	if toolsConfig.GetInterface.Enabled {
		toolName := m.BuildToolName(toolsConfig.GetInterface.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildGetInterfaceToolDefinition(toolsConfig.GetInterface),
			Handler: metrics.WrapToolHandler(m.handleGetInterface, toolName, "yapi"),
		})
	}

	if toolsConfig.GetProject.Enabled {
		toolName := m.BuildToolName(toolsConfig.GetProject.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildGetProjectToolDefinition(toolsConfig.GetProject),
			Handler: metrics.WrapToolHandler(m.handleGetProject, toolName, "yapi"),
		})
	}

	if toolsConfig.ListInterfaces.Enabled {
		toolName := m.BuildToolName(toolsConfig.ListInterfaces.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildListInterfacesToolDefinition(toolsConfig.ListInterfaces),
			Handler: metrics.WrapToolHandler(m.handleListInterfaces, toolName, "yapi"),
		})
	}

	if toolsConfig.SearchInterface.Enabled {
		toolName := m.BuildToolName(toolsConfig.SearchInterface.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildSearchInterfaceToolDefinition(toolsConfig.SearchInterface),
			Handler: metrics.WrapToolHandler(m.handleSearchInterface, toolName, "yapi"),
		})
	}

	return tools
}

// Tool definition builder methods

func (m *Module) buildLookupByURLToolDefinition(config ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("url", mcp.Required(), mcp.Description("Full YApi interface URL, e.g. "+exampleInterfaceURL)),
		mcp.WithString("token", mcp.Description("Access token (optional, for private projects)")),
	)
}

func (m *Module) buildGetInterfaceToolDefinition(config ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("interface_id", mcp.Required(), mcp.Description("YApi interface ID")),
		mcp.WithString("token", mcp.Description("Access token (optional, for private projects)")),
	)
}

func (m *Module) buildGetProjectToolDefinition(config ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("YApi project ID")),
		mcp.WithString("token", mcp.Description("Access token (optional)")),
	)
}

func (m *Module) buildListInterfacesToolDefinition(config ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("YApi project ID")),
		mcp.WithString("cat_id", mcp.Description("Category ID (optional)")),
		mcp.WithString("token", mcp.Description("Access token (optional)")),
	)
}

func (m *Module) buildSearchInterfaceToolDefinition(config ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("YApi project ID")),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Search keyword")),
		mcp.WithString("token", mcp.Description("Access token (optional)")),
	)
}
