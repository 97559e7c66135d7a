package screenshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the headless-browser screenshot service used by the
// authenticated canvas flow. One request per capture, no retry: a failed
// capture degrades to a placeholder at the call site rather than aborting
// the submission.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a screenshot client. The timeout bounds the whole
// request; slow or cross-origin-heavy pages can take seconds to render.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// captureRequest is the wire format of the screenshot service.
type captureRequest struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Capture requests a server-rendered screenshot of pageURL at the given
// viewport size and decodes the returned raster.
func (c *Client) Capture(ctx context.Context, pageURL string, width, height int) (image.Image, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("screenshot service not configured")
	}

	body, err := json.Marshal(captureRequest{URL: pageURL, Width: width, Height: height})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/screenshot", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screenshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message, then give up.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("screenshot service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("screenshot response is not a decodable image: %w", err)
	}

	return img, nil
}

// DecodeDataURI decodes a base64 image data URI ("data:image/...;base64,")
// into a raster, as produced by client-side DOM rasterization.
func DecodeDataURI(uri string) (image.Image, error) {
	const marker = ";base64,"

	if !strings.HasPrefix(uri, "data:image/") {
		return nil, fmt.Errorf("not an image data URI")
	}
	i := strings.Index(uri, marker)
	if i < 0 {
		return nil, fmt.Errorf("data URI is not base64-encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(uri[i+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("undecodable image payload: %w", err)
	}

	return img, nil
}
