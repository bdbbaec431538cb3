package yapi

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/shaowenchen/yapi-mcp-server/pkg/config"
)

const (
	// DefaultBaseURL is used when no YApi server is configured
	DefaultBaseURL = "https://yapi.example.com"
	// DefaultTimeout bounds every outbound call
	DefaultTimeout = 30 * time.Second

	exampleInterfaceURL = "https://yapi.example.com/project/100/interface/api/12345"
)

// Config contains yapi module configuration
type Config struct {
	BaseURL   string      `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
	Token     string      `mapstructure:"token" json:"token" yaml:"token"`
	Timeout   int         `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	RateLimit float64     `mapstructure:"rateLimit" json:"rateLimit" yaml:"rateLimit"`
	Tools     ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// ToolsConfig contains tools configuration
type ToolsConfig struct {
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	Suffix string `mapstructure:"suffix" json:"suffix" yaml:"suffix"`
}

// ConfigFrom maps the application config onto the module config
func ConfigFrom(cfg config.YApiConfig) *Config {
	return &Config{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Tools: ToolsConfig{
			Prefix: cfg.Tools.Prefix,
			Suffix: cfg.Tools.Suffix,
		},
	}
}

// Module represents the yapi module
type Module struct {
	config *Config
	logger *zap.Logger
	client *Client
}

// New creates a new yapi module
func New(config *Config, logger *zap.Logger) (*Module, error) {
	if config == nil {
		return nil, fmt.Errorf("yapi config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	timeout := DefaultTimeout
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}

	m := &Module{
		config: config,
		logger: logger.Named("yapi"),
	}
	m.client = NewClient(Endpoint{BaseURL: config.BaseURL, Token: config.Token}, timeout, config.RateLimit, m.logger)

	m.logger.Info("YApi module created",
		zap.String("base_url", config.BaseURL),
		zap.Bool("token_configured", config.Token != ""),
		zap.Duration("timeout", timeout),
		zap.Float64("rate_limit", config.RateLimit),
	)

	return m, nil
}

// Client returns the module's YApi client
func (m *Module) Client() *Client {
	return m.client
}

// GetTools returns all MCP tools for the yapi module
func (m *Module) GetTools() []server.ServerTool {
	return m.BuildTools(GetDefaultToolsConfig())
}

// handleLookupByURL resolves a YApi page link against the server it points at
func (m *Module) handleLookupByURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	rawURL, err := requiredStringArg(args, "url")
	if err != nil {
		return errorResult(err), nil
	}

	parsed, ok := ParseInterfaceURL(rawURL)
	if !ok {
		return errorResult(fmt.Errorf("cannot parse YApi URL %q, expected a link like %s", rawURL, exampleInterfaceURL)), nil
	}

	token, _ := stringArg(args, "token")

	m.logger.Info("Looking up interface by URL",
		zap.String("server", parsed.BaseURL),
		zap.String("project_id", parsed.ProjectID),
		zap.String("interface_id", parsed.InterfaceID))

	rec, err := m.client.GetInterfaceDetails(ctx, parsed.InterfaceID, WithBaseURL(parsed.BaseURL), WithToken(token))
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(InterfaceLookup{
		FormattedInterface: Format(rec),
		SourceURL:          rawURL,
		YApiServer:         parsed.BaseURL,
	}), nil
}

func (m *Module) handleGetInterface(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	interfaceID, err := requiredStringArg(args, "interface_id")
	if err != nil {
		return errorResult(err), nil
	}
	token, _ := stringArg(args, "token")

	rec, err := m.client.GetInterfaceDetails(ctx, interfaceID, WithToken(token))
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(Format(rec)), nil
}

func (m *Module) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := requiredStringArg(args, "project_id")
	if err != nil {
		return errorResult(err), nil
	}
	token, _ := stringArg(args, "token")

	project, err := m.client.GetProjectInfo(ctx, projectID, WithToken(token))
	if err != nil {
		return errorResult(err), nil
	}

	return rawResult(project), nil
}

// handleListInterfaces picks the category listing whenever cat_id is present,
// even when it is empty.
func (m *Module) handleListInterfaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := requiredStringArg(args, "project_id")
	if err != nil {
		return errorResult(err), nil
	}
	token, _ := stringArg(args, "token")

	var catID *string
	if v, ok := stringArg(args, "cat_id"); ok {
		catID = &v
	}

	list, err := m.client.GetInterfaceList(ctx, projectID, catID, WithToken(token))
	if err != nil {
		return errorResult(err), nil
	}

	return rawResult(list), nil
}

func (m *Module) handleSearchInterface(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := requiredStringArg(args, "project_id")
	if err != nil {
		return errorResult(err), nil
	}
	keyword, err := requiredStringArg(args, "keyword")
	if err != nil {
		return errorResult(err), nil
	}
	token, _ := stringArg(args, "token")

	results, err := m.client.SearchInterface(ctx, projectID, keyword, WithToken(token))
	if err != nil {
		return errorResult(err), nil
	}

	return rawResult(results), nil
}
