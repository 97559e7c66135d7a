package ops

import (
	"database/sql"
	"fmt"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
)

// FetchImageInput contains parameters for the FetchImage operation.
type FetchImageInput struct {
	Token string
	ID    int64
}

// FetchImageOutput contains one comment's image payload.
type FetchImageOutput struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

// FetchImage retrieves one comment's image payload. Comments are listed
// without images and the pixels fetched on demand, because the payload is
// routinely multi-megabyte.
func FetchImage(database *sql.DB, input FetchImageInput) (*FetchImageOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	comment, err := db.GetCommentByID(database, input.ID)
	if err != nil {
		return nil, err
	}
	if comment.ClientID == nil || *comment.ClientID != client.ID {
		return nil, errors.NewNotFound("comment", itoa(input.ID))
	}

	return &FetchImageOutput{ID: comment.ID, Image: comment.Image}, nil
}

// FetchImagesInput contains parameters for the FetchImages operation.
type FetchImagesInput struct {
	Token string
	IDs   []int64
}

// FetchImagesOutput contains image payloads keyed by comment id.
// IDs that do not exist (or belong to another tenant) are absent.
type FetchImagesOutput struct {
	Images map[int64]string `json:"images"`
}

// FetchImages retrieves image payloads for a bounded batch of comments.
// The batch cap keeps a single request from shipping an unbounded number of
// multi-megabyte blobs.
func FetchImages(database *sql.DB, cfg *config.Config, input FetchImagesInput) (*FetchImagesOutput, error) {
	if len(input.IDs) == 0 {
		return nil, errors.NewInvalidRequest("ids is required")
	}

	batchMax := cfg.ImageBatchMax
	if batchMax <= 0 {
		batchMax = 20
	}
	if len(input.IDs) > batchMax {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("at most %d images per batch", batchMax))
	}

	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	images, err := db.GetImages(database, input.IDs, &client.ID)
	if err != nil {
		return nil, err
	}

	return &FetchImagesOutput{Images: images}, nil
}
