package canvas

import (
	"fmt"
	"image"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// Session encapsulates one capture session's drawing state: the active tool,
// the in-progress element, and the committed history. Each embed constructs
// its own session; there is no shared state between sessions.
//
// The pointer lifecycle is: idle -> (PointerDown) drawing -> (PointerMove)*
// accumulating -> (PointerUp) committed to history. Text skips the pointer
// cycle and commits directly via AddText.
type Session struct {
	width  int
	height int

	tool  Tool
	color string

	// opaqueTextBackground paints a white box behind text annotations.
	// Global toggle for the session, not per-annotation.
	opaqueTextBackground bool

	history []Element
	active  *Element
}

// NewSession creates a session for a canvas of the given pixel dimensions.
func NewSession(width, height int) *Session {
	return &Session{
		width:  width,
		height: height,
		tool:   ToolPen,
		color:  "#ff0000",
	}
}

// ReplaySession rebuilds a session from elements committed elsewhere, in
// commit order. The portal draws client-side and ships the element list;
// replaying it server-side produces the same raster a local session would.
func ReplaySession(width, height int, elements []Element, opaqueTextBackground bool) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.NewInvalidRequest("canvas dimensions must be positive")
	}

	s := NewSession(width, height)
	s.SetOpaqueTextBackground(opaqueTextBackground)

	for _, el := range elements {
		if !el.Tool.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown tool %q", el.Tool))
		}
		if el.Tool == ToolText && el.Text == "" {
			return nil, errors.NewInvalidRequest("text elements require text")
		}
		if el.Color == "" {
			el.Color = s.color
		}
		s.history = append(s.history, el)
	}

	return s, nil
}

// Size returns the canvas pixel dimensions.
func (s *Session) Size() (int, int) {
	return s.width, s.height
}

// SetTool selects the active drawing tool. Unknown tools are ignored.
func (s *Session) SetTool(t Tool) {
	if t.Valid() {
		s.tool = t
	}
}

// SetColor selects the stroke color as a hex string ("#rrggbb").
func (s *Session) SetColor(color string) {
	if color != "" {
		s.color = color
	}
}

// SetOpaqueTextBackground toggles the white box behind text annotations.
func (s *Session) SetOpaqueTextBackground(opaque bool) {
	s.opaqueTextBackground = opaque
}

// PointerDown begins a new element at p. A pointer-down while an element is
// already in progress replaces it (the browser never delivers two downs
// without an up, but a dropped up event must not wedge the session).
// The text tool does not draw on pointer events; see AddText.
func (s *Session) PointerDown(p Point) {
	if s.tool == ToolText {
		return
	}

	el := &Element{
		Tool:  s.tool,
		Color: s.color,
		Start: p,
		End:   p,
	}
	if s.tool == ToolPen {
		el.Points = []Point{p}
	}
	s.active = el
}

// PointerMove accumulates the in-progress element. No-op when idle.
func (s *Session) PointerMove(p Point) {
	if s.active == nil {
		return
	}
	if s.active.Tool == ToolPen {
		s.active.Points = append(s.active.Points, p)
		return
	}
	s.active.End = p
}

// PointerUp commits the in-progress element to the history. No-op when idle.
func (s *Session) PointerUp(p Point) {
	if s.active == nil {
		return
	}
	s.PointerMove(p)
	s.history = append(s.history, *s.active)
	s.active = nil
}

// AddText commits a text annotation at the given point.
// Empty strings are discarded.
func (s *Session) AddText(text string, at Point) {
	if text == "" {
		return
	}
	s.history = append(s.history, Element{
		Tool:  ToolText,
		Color: s.color,
		Start: at,
		End:   at,
		Text:  text,
	})
}

// Undo removes the most recently committed element. Returns false when the
// history is already empty (never underflows). There is no redo.
func (s *Session) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	s.history = s.history[:len(s.history)-1]
	return true
}

// Clear discards the entire history and any in-progress element.
func (s *Session) Clear() {
	s.history = nil
	s.active = nil
}

// Elements returns a copy of the committed history in commit order.
func (s *Session) Elements() []Element {
	out := make([]Element, len(s.history))
	copy(out, s.history)
	return out
}

// Render rasterizes the committed history onto a transparent canvas.
// Rendering is deterministic: the same history always produces the same
// pixels, which is what makes undo exact.
func (s *Session) Render() *image.RGBA {
	return Render(s.history, s.width, s.height, s.opaqueTextBackground)
}

// Annotations extracts the text elements as structured annotations. Unlike
// drawn marks, which are baked irreversibly into the raster, these travel
// alongside the composed image as data.
func (s *Session) Annotations() []feedback.TextAnnotation {
	annotations := []feedback.TextAnnotation{}
	for _, el := range s.history {
		if el.Tool != ToolText {
			continue
		}
		annotations = append(annotations, feedback.TextAnnotation{
			Text:  el.Text,
			X:     el.Start.X,
			Y:     el.Start.Y,
			Color: el.Color,
		})
	}
	return annotations
}
