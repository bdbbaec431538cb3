package yapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
)

// stringArg returns the argument as a string. Numbers are accepted since
// clients often send ids unquoted; null counts as absent.
func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func requiredStringArg(args map[string]interface{}, key string) (string, error) {
	s, ok := stringArg(args, key)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

// jsonResult renders v as indented JSON text
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("failed to marshal result: %w", err))
	}
	return mcp.NewToolResultText(string(data))
}

// rawResult indents a passthrough payload without re-encoding it, so key
// order and number formatting stay as YApi sent them.
func rawResult(raw jsonx.RawMessage) *mcp.CallToolResult {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return mcp.NewToolResultText(string(raw))
	}
	return mcp.NewToolResultText(buf.String())
}
