package feedback

// Status is the lifecycle state of a comment.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved
}

// Priority is the urgency class of a comment.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityMed  Priority = "med"
	PriorityLow  Priority = "low"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMed || p == PriorityLow
}

// Rank returns the sort rank of a priority class (high < med < low).
// Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMed:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// DefaultAssignee is the sentinel used when no assignee has been set.
const DefaultAssignee = "Unassigned"

// TextAnnotation is a free-text marker placed on the screenshot.
// X and Y are canvas pixel coordinates at capture time. Annotations are
// stored as an ordered array on the comment; their index position is
// referenced by decision items, so the array is append-only.
type TextAnnotation struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Comment is a piece of feedback submitted from the widget or the portal.
type Comment struct {
	// ID is an auto-incrementing row id
	ID int64

	// ClientID is the owning tenant (nullable for legacy rows)
	ClientID *int64

	// ProjectID is the owning project (nullable for legacy rows)
	ProjectID *int64

	// URL is the page the comment was submitted from
	URL string

	// PageSection is a label derived from the URL path
	PageSection string

	// Image is the composed screenshot as a data-URI text blob
	Image string

	// Annotations is the ordered, append-only text annotation array
	Annotations []TextAnnotation

	Status   Status
	Priority Priority

	// PriorityNumber is a secondary ordering key within the priority class.
	// Reset to 0 when the comment is resolved.
	PriorityNumber int

	// Assignee is a free-text name, DefaultAssignee when unset
	Assignee string

	// SubmitterName is the optional display name given in the widget
	SubmitterName *string

	// CreatedAt is the Unix timestamp when the comment was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the comment was last updated
	UpdatedAt int64
}

// Client is a tenant: an organization identified by an access token and a
// public widget key.
type Client struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	WidgetKey string `json:"widget_key"`
	CreatedAt int64  `json:"created_at"`
}

// Project is one reviewable website owned by a client.
type Project struct {
	ID        int64  `json:"id"`
	ClientID  int64  `json:"client_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

// Assignee is a per-client catalog name offered in the triage UI.
type Assignee struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
}

// DecisionItem is a promoted note tracked independently of the comment's
// mutable state. CommentID and NoteIndex form an optional back-reference to
// the source annotation; the reference is never validated at read time and
// may dangle after the parent comment is deleted.
type DecisionItem struct {
	ID        int64   `json:"id"`
	NoteText  string  `json:"note_text"`
	Source    *string `json:"source,omitempty"`
	CommentID *int64  `json:"comment_id,omitempty"`
	NoteIndex *int    `json:"note_index,omitempty"`
	ProjectID *int64  `json:"project_id,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// WidgetSettings is the per-tenant widget appearance config.
type WidgetSettings struct {
	ClientID      int64  `json:"-"`
	ButtonText    string `json:"button_text"`
	ButtonColor   string `json:"button_color"`
	ButtonPos     string `json:"button_position"`
	ModalTitle    string `json:"modal_title"`
	ModalSubtitle string `json:"modal_subtitle"`
	PrefillName   string `json:"prefill_name,omitempty"`
	PrefillEmail  string `json:"prefill_email,omitempty"`
}

// DefaultWidgetSettings returns the appearance config used before a tenant
// customizes anything.
func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{
		ButtonText:    "Feedback",
		ButtonColor:   "#2563eb",
		ButtonPos:     "bottom-right",
		ModalTitle:    "Send feedback",
		ModalSubtitle: "Draw on the page and tell us what you think.",
	}
}
