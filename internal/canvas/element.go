package canvas

// Tool identifies a drawing tool.
type Tool string

const (
	ToolPen       Tool = "pen"
	ToolArrow     Tool = "arrow"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolPen, ToolArrow, ToolRectangle, ToolCircle, ToolText:
		return true
	}
	return false
}

// Point is a canvas pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one committed drawing mark. Elements are ephemeral: they live in
// the session's undo history and are flattened into the raster at compose
// time, never persisted.
//
// Pen elements use Points; arrow, rectangle, and circle use Start/End; text
// uses Start and Text.
type Element struct {
	Tool   Tool    `json:"tool"`
	Color  string  `json:"color"`
	Points []Point `json:"points,omitempty"`
	Start  Point   `json:"start"`
	End    Point   `json:"end"`
	Text   string  `json:"text,omitempty"`
}
