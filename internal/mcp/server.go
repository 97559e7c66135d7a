package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pagemark/pagemark/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"comment", "decision"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"comment_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"comment_image": {
		def:     imageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImage },
	},
	"comment_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"comment_priority": {
		def:     priorityToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePriority },
	},
	"comment_priority_bulk": {
		def:     priorityBulkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePriorityBulk },
	},
	"comment_assignee": {
		def:     assigneeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAssignee },
	},
	"comment_note": {
		def:     noteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNote },
	},
	"comment_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"decision_promote": {
		def:     promoteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePromote },
	},
	"decision_list": {
		def:     decisionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDecisionList },
	},
	"decision_update": {
		def:     decisionUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDecisionUpdate },
	},
	"decision_delete": {
		def:     decisionDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDecisionDelete },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "comment_list" → "comment").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with feedback triage tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes are
// excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pagemark",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
