package canvas

import (
	"bytes"
	"testing"
)

func TestPointerLifecycleCommitsElement(t *testing.T) {
	s := NewSession(200, 100)
	s.SetTool(ToolPen)
	s.SetColor("#00ff00")

	s.PointerDown(Point{X: 10, Y: 10})
	s.PointerMove(Point{X: 20, Y: 15})
	s.PointerMove(Point{X: 30, Y: 20})
	s.PointerUp(Point{X: 40, Y: 25})

	elements := s.Elements()
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	el := elements[0]
	if el.Tool != ToolPen || el.Color != "#00ff00" {
		t.Errorf("element = %+v", el)
	}
	if len(el.Points) != 4 {
		t.Errorf("got %d points, want 4 (down + 2 moves + up)", len(el.Points))
	}
}

func TestPointerMoveWhileIdleIsNoop(t *testing.T) {
	s := NewSession(100, 100)
	s.PointerMove(Point{X: 5, Y: 5})
	s.PointerUp(Point{X: 5, Y: 5})

	if len(s.Elements()) != 0 {
		t.Error("move/up without down should not commit anything")
	}
}

func TestShapeToolsUseStartEnd(t *testing.T) {
	s := NewSession(200, 200)

	for _, tool := range []Tool{ToolArrow, ToolRectangle, ToolCircle} {
		s.SetTool(tool)
		s.PointerDown(Point{X: 50, Y: 50})
		s.PointerMove(Point{X: 80, Y: 90})
		s.PointerUp(Point{X: 100, Y: 120})
	}

	elements := s.Elements()
	if len(elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(elements))
	}
	for _, el := range elements {
		if el.Start != (Point{X: 50, Y: 50}) {
			t.Errorf("%s: Start = %+v", el.Tool, el.Start)
		}
		if el.End != (Point{X: 100, Y: 120}) {
			t.Errorf("%s: End = %+v", el.Tool, el.End)
		}
	}
}

func TestTextToolIgnoresPointerEvents(t *testing.T) {
	s := NewSession(100, 100)
	s.SetTool(ToolText)

	s.PointerDown(Point{X: 10, Y: 10})
	s.PointerUp(Point{X: 10, Y: 10})
	if len(s.Elements()) != 0 {
		t.Error("text tool should not commit via pointer events")
	}

	s.AddText("hello", Point{X: 10, Y: 10})
	if len(s.Elements()) != 1 {
		t.Fatal("AddText should commit an element")
	}
	if s.Elements()[0].Text != "hello" {
		t.Errorf("Text = %q", s.Elements()[0].Text)
	}

	s.AddText("", Point{X: 0, Y: 0})
	if len(s.Elements()) != 1 {
		t.Error("empty text should be discarded")
	}
}

func TestUndoRestoresExactPriorRender(t *testing.T) {
	s := NewSession(160, 120)

	// Commit N elements, snapshotting the render after each commit.
	var renders [][]byte
	renders = append(renders, renderBytes(s))

	s.SetTool(ToolPen)
	s.PointerDown(Point{X: 10, Y: 10})
	s.PointerMove(Point{X: 60, Y: 40})
	s.PointerUp(Point{X: 90, Y: 80})
	renders = append(renders, renderBytes(s))

	s.SetTool(ToolRectangle)
	s.PointerDown(Point{X: 100, Y: 20})
	s.PointerUp(Point{X: 30, Y: 90}) // negative width/height
	renders = append(renders, renderBytes(s))

	s.SetTool(ToolArrow)
	s.PointerDown(Point{X: 20, Y: 100})
	s.PointerUp(Point{X: 140, Y: 10})
	renders = append(renders, renderBytes(s))

	// Undo N times: after each, the render must equal the prior snapshot
	// byte-for-byte.
	for i := len(renders) - 2; i >= 0; i-- {
		if !s.Undo() {
			t.Fatal("Undo returned false with history remaining")
		}
		if !bytes.Equal(renderBytes(s), renders[i]) {
			t.Errorf("render after undo to %d commits differs from original", i)
		}
	}

	// Underflow is a no-op.
	if s.Undo() {
		t.Error("Undo on empty history should return false")
	}
	if !bytes.Equal(renderBytes(s), renders[0]) {
		t.Error("render after underflow attempt changed")
	}
}

func TestClearEmptiesHistory(t *testing.T) {
	s := NewSession(100, 100)
	s.PointerDown(Point{X: 1, Y: 1})
	s.PointerUp(Point{X: 50, Y: 50})
	s.AddText("note", Point{X: 10, Y: 10})

	s.Clear()
	if len(s.Elements()) != 0 {
		t.Error("Clear should empty the history")
	}

	empty := renderBytes(NewSession(100, 100))
	if !bytes.Equal(renderBytes(s), empty) {
		t.Error("render after Clear should equal the initial empty render")
	}
}

func TestAnnotationsExtractsTextOnly(t *testing.T) {
	s := NewSession(100, 100)
	s.SetColor("#123456")
	s.PointerDown(Point{X: 1, Y: 1})
	s.PointerUp(Point{X: 9, Y: 9})
	s.AddText("first", Point{X: 5, Y: 6})
	s.SetColor("#654321")
	s.AddText("second", Point{X: 7, Y: 8})

	annotations := s.Annotations()
	if len(annotations) != 2 {
		t.Fatalf("got %d annotations, want 2", len(annotations))
	}
	if annotations[0].Text != "first" || annotations[0].X != 5 || annotations[0].Y != 6 || annotations[0].Color != "#123456" {
		t.Errorf("annotations[0] = %+v", annotations[0])
	}
	if annotations[1].Text != "second" || annotations[1].Color != "#654321" {
		t.Errorf("annotations[1] = %+v", annotations[1])
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	build := func() *Session {
		s := NewSession(120, 120)
		s.SetTool(ToolCircle)
		s.PointerDown(Point{X: 60, Y: 60})
		s.PointerUp(Point{X: 90, Y: 60})
		s.AddText("x", Point{X: 10, Y: 20})
		return s
	}

	a, b := build(), build()
	if !bytes.Equal(renderBytes(a), renderBytes(b)) {
		t.Error("identical histories should render identical pixels")
	}
}

// renderBytes returns the raw pixel buffer of the session's render.
func renderBytes(s *Session) []byte {
	img := s.Render()
	out := make([]byte, len(img.Pix))
	copy(out, img.Pix)
	return out
}

func TestReplaySessionMatchesLocalRender(t *testing.T) {
	local := NewSession(200, 100)
	local.SetTool(ToolRectangle)
	local.SetColor("#ff0000")
	local.PointerDown(Point{X: 10, Y: 10})
	local.PointerUp(Point{X: 90, Y: 60})
	local.AddText("misaligned header", Point{X: 20, Y: 80})

	replayed, err := ReplaySession(200, 100, local.Elements(), false)
	if err != nil {
		t.Fatalf("ReplaySession failed: %v", err)
	}
	if !bytes.Equal(local.Render().Pix, replayed.Render().Pix) {
		t.Error("replayed render differs from the local render")
	}
	if got := replayed.Annotations(); len(got) != 1 || got[0].Text != "misaligned header" {
		t.Errorf("Annotations = %+v", got)
	}
}

func TestReplaySessionRejectsBadElements(t *testing.T) {
	if _, err := ReplaySession(0, 100, nil, false); err == nil {
		t.Error("non-positive dimensions should be rejected")
	}
	if _, err := ReplaySession(100, 100, []Element{{Tool: "blob", Color: "#ff0000"}}, false); err == nil {
		t.Error("unknown tool should be rejected")
	}
	if _, err := ReplaySession(100, 100, []Element{{Tool: ToolText, Color: "#ff0000"}}, false); err == nil {
		t.Error("text element without text should be rejected")
	}
}
