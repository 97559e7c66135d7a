package canvas

import (
	"image"
	"math"

	"github.com/fogleman/gg"
)

const (
	strokeWidth = 3.0

	// arrowHeadLength is the length of each arrowhead leg in pixels.
	arrowHeadLength = 14.0

	// arrowHeadAngle offsets each leg from the shaft direction.
	arrowHeadAngle = math.Pi / 6 // 30 degrees

	textPadding = 3.0
)

// Render rasterizes elements in commit order onto a transparent canvas of
// the given dimensions.
func Render(elements []Element, width, height int, opaqueTextBackground bool) *image.RGBA {
	dc := gg.NewContext(width, height)

	for _, el := range elements {
		dc.SetHexColor(el.Color)
		dc.SetLineWidth(strokeWidth)
		dc.SetLineCapRound()

		switch el.Tool {
		case ToolPen:
			drawPolyline(dc, el.Points)
		case ToolArrow:
			drawArrow(dc, el.Start, el.End)
		case ToolRectangle:
			// Negative width/height is fine: the user dragged up or left.
			dc.DrawRectangle(el.Start.X, el.Start.Y, el.End.X-el.Start.X, el.End.Y-el.Start.Y)
			dc.Stroke()
		case ToolCircle:
			radius := math.Hypot(el.End.X-el.Start.X, el.End.Y-el.Start.Y)
			dc.DrawCircle(el.Start.X, el.Start.Y, radius)
			dc.Stroke()
		case ToolText:
			drawText(dc, el, opaqueTextBackground)
		}
	}

	return imageAsRGBA(dc.Image())
}

// drawPolyline strokes a freehand path. A single point renders as a dot.
func drawPolyline(dc *gg.Context, points []Point) {
	if len(points) == 0 {
		return
	}
	if len(points) == 1 {
		dc.DrawCircle(points[0].X, points[0].Y, strokeWidth/2)
		dc.Fill()
		return
	}

	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

// drawArrow strokes a shaft plus a two-stroke head at the end point.
func drawArrow(dc *gg.Context, start, end Point) {
	dc.DrawLine(start.X, start.Y, end.X, end.Y)
	dc.Stroke()

	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	for _, offset := range []float64{arrowHeadAngle, -arrowHeadAngle} {
		legX := end.X - arrowHeadLength*math.Cos(angle+offset)
		legY := end.Y - arrowHeadLength*math.Sin(angle+offset)
		dc.DrawLine(end.X, end.Y, legX, legY)
		dc.Stroke()
	}
}

// drawText renders the literal string at its commit position, optionally
// over a white box.
func drawText(dc *gg.Context, el Element, opaqueBackground bool) {
	if el.Text == "" {
		return
	}

	if opaqueBackground {
		w, h := dc.MeasureString(el.Text)
		dc.Push()
		dc.SetHexColor("#ffffff")
		dc.DrawRectangle(el.Start.X-textPadding, el.Start.Y-h-textPadding, w+2*textPadding, h+2*textPadding)
		dc.Fill()
		dc.Pop()
		dc.SetHexColor(el.Color)
	}

	dc.DrawString(el.Text, el.Start.X, el.Start.Y)
}

// imageAsRGBA returns img as *image.RGBA without copying when possible.
func imageAsRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
