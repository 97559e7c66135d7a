package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Every tool takes the tenant access token; the MCP server
// is meant for triage agents acting on behalf of a tenant, so the same
// identification rules apply as on the HTTP API.

var listToolDef = mcp.NewTool("comment_list",
	mcp.WithDescription("List feedback comments in triage order (priority class, then priority number, then newest). Images are excluded by default; use comment_image to fetch pixels."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("project_id", mcp.Description("Filter by project id")),
	mcp.WithString("status", mcp.Description("Filter by status: open or resolved")),
	mcp.WithString("priority", mcp.Description("Filter by priority: high, med, or low")),
	mcp.WithString("assignee", mcp.Description("Filter by assignee name")),
	mcp.WithBoolean("include_images", mcp.Description("Include image payloads (large)")),
	mcp.WithNumber("limit", mcp.Description("Page size")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var imageToolDef = mcp.NewTool("comment_image",
	mcp.WithDescription("Fetch one comment's screenshot as a data URI"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
)

var statusToolDef = mcp.NewTool("comment_status",
	mcp.WithDescription("Set a comment's status. Resolving zeroes its priority number."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
	mcp.WithString("status", mcp.Required(), mcp.Description("open or resolved")),
)

var priorityToolDef = mcp.NewTool("comment_priority",
	mcp.WithDescription("Set a comment's priority class and ordering number"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
	mcp.WithString("priority", mcp.Required(), mcp.Description("high, med, or low")),
	mcp.WithNumber("priority_number", mcp.Description("Ordering number within the class")),
)

var priorityBulkToolDef = mcp.NewTool("comment_priority_bulk",
	mcp.WithDescription("Rewrite priority numbers for several comments in one all-or-nothing transaction"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithArray("updates", mcp.Required(), mcp.Description("Array of {id, priority_number} objects")),
)

var assigneeToolDef = mcp.NewTool("comment_assignee",
	mcp.WithDescription("Assign a comment to a person; empty name unassigns"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
	mcp.WithString("assignee", mcp.Description("Assignee name")),
)

var noteToolDef = mcp.NewTool("comment_note",
	mcp.WithDescription("Append a text note to a comment; returns the note's stable index"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
	mcp.WithNumber("x", mcp.Description("X position on the screenshot")),
	mcp.WithNumber("y", mcp.Description("Y position on the screenshot")),
	mcp.WithString("color", mcp.Description("Note color")),
)

var deleteToolDef = mcp.NewTool("comment_delete",
	mcp.WithDescription("Permanently delete a comment. Promoted decisions survive with a dangling back-reference."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Comment id")),
)

var promoteToolDef = mcp.NewTool("decision_promote",
	mcp.WithDescription("Promote a note or free text into the decision log. comment_id and note_index must be given together."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Decision text")),
	mcp.WithString("source", mcp.Description("Where the decision came from")),
	mcp.WithNumber("comment_id", mcp.Description("Source comment id")),
	mcp.WithNumber("note_index", mcp.Description("Source note index within the comment")),
	mcp.WithNumber("project_id", mcp.Description("Project to scope the decision to")),
)

var decisionListToolDef = mcp.NewTool("decision_list",
	mcp.WithDescription("List decisions, newest first. Each entry reports whether its source comment still exists."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("project_id", mcp.Description("Filter by project id")),
)

var decisionUpdateToolDef = mcp.NewTool("decision_update",
	mcp.WithDescription("Rewrite a decision's text and source label. The back-reference is immutable."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Decision id")),
	mcp.WithString("text", mcp.Required(), mcp.Description("New decision text")),
	mcp.WithString("source", mcp.Description("New source label")),
)

var decisionDeleteToolDef = mcp.NewTool("decision_delete",
	mcp.WithDescription("Delete a decision log entry"),
	mcp.WithString("token", mcp.Required(), mcp.Description("Tenant access token")),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Decision id")),
)
