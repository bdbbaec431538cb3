package docs

import (
	"github.com/shaowenchen/yapi-mcp-server/cmd/version"
	"github.com/shaowenchen/yapi-mcp-server/pkg/config"
	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
	yapiModule "github.com/shaowenchen/yapi-mcp-server/pkg/modules/yapi"
	"go.uber.org/zap"
)

// Collector collects tool information from all enabled modules
type Collector struct {
	config *config.Config
	logger *zap.Logger
}

// NewCollector creates a new docs collector
func NewCollector(cfg *config.Config, logger *zap.Logger) *Collector {
	return &Collector{
		config: cfg,
		logger: logger,
	}
}

// CollectToolsInfo collects tool information from all enabled modules
func (c *Collector) CollectToolsInfo() ToolsInfoResponse {
	tools := []ToolInfo{}
	enabledModules := []string{}

	if c.config.YApi.Enabled {
		enabledModules = append(enabledModules, "yapi")
		tools = append(tools, c.collectYApiTools()...)
	}

	return ToolsInfoResponse{
		Service:    "yapi-mcp-server",
		Version:    version.Get().Version,
		TotalTools: len(tools),
		Modules:    enabledModules,
		Tools:      tools,
	}
}

// collectYApiTools collects tools from the YApi module
func (c *Collector) collectYApiTools() []ToolInfo {
	var tools []ToolInfo

	module, err := yapiModule.New(yapiModule.ConfigFrom(c.config.YApi), c.logger)
	if err != nil {
		c.logger.Error("Failed to create YApi module for docs", zap.Error(err))
		return tools
	}

	for _, serverTool := range module.GetTools() {
		tools = append(tools, ToolInfo{
			Name:        serverTool.Tool.Name,
			Description: serverTool.Tool.Description,
			Parameters:  convertToolParameters(serverTool.Tool.InputSchema),
			Module:      "yapi",
		})
	}

	return tools
}

// convertToolParameters converts MCP tool input schema to a more readable format
func convertToolParameters(inputSchema interface{}) map[string]ParameterInfo {
	params := make(map[string]ParameterInfo)

	schemaBytes, err := jsonx.Marshal(inputSchema)
	if err != nil {
		return params
	}

	var schema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := jsonx.Unmarshal(schemaBytes, &schema); err != nil {
		return params
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	for name, prop := range schema.Properties {
		params[name] = ParameterInfo{
			Type:        prop.Type,
			Description: prop.Description,
			Required:    required[name],
		}
	}

	return params
}
