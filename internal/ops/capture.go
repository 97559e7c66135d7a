package ops

import (
	"context"
	"database/sql"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/canvas"
	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/screenshot"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Token         string
	URL           string
	Session       *canvas.Session
	SubmitterName string
	ProjectID     *int64
}

// Capture runs the portal capture flow: fetch a screenshot of the page,
// flatten the annotation session on top of it, and submit the result as a
// comment. A failed or unconfigured screenshot service degrades to a
// placeholder background so the annotations are never lost.
func Capture(ctx context.Context, database *sql.DB, shots *screenshot.Client, cfg *config.Config, input CaptureInput) (*SubmitOutput, error) {
	if input.Session == nil {
		return nil, errors.NewInvalidRequest("an annotation session is required")
	}

	width, height := input.Session.Size()

	var background image.Image
	if shots != nil {
		img, err := shots.Capture(ctx, input.URL, width, height)
		if err != nil {
			log.Warn().Err(err).Str("url", input.URL).Msg("screenshot capture failed, using placeholder")
		} else {
			background = img
		}
	}

	dataURI, annotations, err := input.Session.Compose(background, cfg.JPEGQuality)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return Submit(database, SubmitInput{
		Token:         input.Token,
		URL:           input.URL,
		ImageData:     dataURI,
		Annotations:   annotations,
		SubmitterName: input.SubmitterName,
		ProjectID:     input.ProjectID,
	})
}
