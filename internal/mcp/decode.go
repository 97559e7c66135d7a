package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pagemark/pagemark/internal/errors"
)

// decode maps MCP request arguments onto a typed argument struct. Arguments
// that do not fit the struct come back as an invalid-request error, so every
// tool handler reports malformed calls the same way.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var args T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return args, errors.NewInvalidRequest(fmt.Sprintf("unreadable arguments: %v", err))
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, errors.NewInvalidRequest(fmt.Sprintf("arguments do not match the tool schema: %v", err))
	}
	return args, nil
}
