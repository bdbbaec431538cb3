package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// WrapToolHandler wraps a tool handler with metrics collection. A result
// flagged IsError counts as a failed call, same as a returned error.
func WrapToolHandler(handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), toolName, moduleName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		RecordModuleRequest(moduleName)

		result, err := handler(ctx, request)

		failed, failure := false, ""
		if err != nil {
			failed, failure = true, err.Error()
		} else if result != nil && result.IsError {
			failed, failure = true, resultText(result)
		}

		RecordMCPToolCall(toolName, moduleName, time.Since(start), !failed)
		if failed {
			RecordMCPToolError(toolName, moduleName, ClassifyError(failure))
		}

		return result, err
	}
}

// ClassifyError maps an error message onto a coarse error_type label
func ClassifyError(message string) string {
	msg := strings.ToLower(message)
	switch {
	case msg == "":
		return "unknown"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") || strings.Contains(msg, "dial"):
		return "network_error"
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") || strings.Contains(msg, "token"):
		return "auth_error"
	case strings.Contains(msg, "required") || strings.Contains(msg, "invalid") || strings.Contains(msg, "cannot parse"):
		return "invalid_input"
	}
	return "unknown"
}

func resultText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
