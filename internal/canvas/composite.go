package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/fogleman/gg"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// Composite flattens background and overlay into a single raster: the
// background is drawn first, then the overlay on top, pixel-aligned at the
// origin. Wherever the overlay has alpha the overlay wins; elsewhere the
// background shows through.
func Composite(background, overlay image.Image) *image.RGBA {
	bounds := background.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	draw.Draw(out, out.Bounds(), background, bounds.Min, draw.Src)
	draw.Draw(out, overlay.Bounds().Sub(overlay.Bounds().Min), overlay, overlay.Bounds().Min, draw.Over)

	return out
}

// EncodeJPEGDataURI encodes an image as a JPEG data URI. PNG screenshots of
// full pages exceed common request-body caps, so the output is always JPEG.
func EncodeJPEGDataURI(img image.Image, quality int) (string, error) {
	if quality <= 0 || quality > 100 {
		quality = 70
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", errors.NewInternal(err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Placeholder synthesizes a captioned background for submissions whose
// screenshot capture failed.
func Placeholder(width, height int, caption string) *image.RGBA {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 800
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff})
	dc.Clear()

	dc.SetColor(color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff})
	if caption != "" {
		dc.DrawStringAnchored(caption, float64(width)/2, float64(height)/2, 0.5, 0.5)
	}

	return imageAsRGBA(dc.Image())
}

// Compose flattens the session's marks over the background and returns the
// encoded image plus the structured text annotations. A nil background gets
// a captioned placeholder sized to the session.
func (s *Session) Compose(background image.Image, quality int) (string, []feedback.TextAnnotation, error) {
	if background == nil {
		background = Placeholder(s.width, s.height, "Screenshot unavailable")
	}

	composed := Composite(background, s.Render())
	dataURI, err := EncodeJPEGDataURI(composed, quality)
	if err != nil {
		return "", nil, err
	}

	return dataURI, s.Annotations(), nil
}
