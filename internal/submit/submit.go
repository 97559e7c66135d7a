package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pagemark/pagemark/internal/feedback"
)

// Request is one feedback submission: the composed image, the structured
// annotations, identification, and optional metadata. Exactly one of
// WidgetKey or Token identifies the sender.
type Request struct {
	WidgetKey string `json:"widgetKey,omitempty"`
	Token     string `json:"token,omitempty"`

	URL           string                    `json:"url"`
	ImageData     string                    `json:"imageData"`
	Annotations   []feedback.TextAnnotation `json:"textAnnotations"`
	SubmitterName string                    `json:"submitterName,omitempty"`
	ProjectID     *int64                    `json:"projectId,omitempty"`
}

// Response is the ingestion endpoint's success payload.
type Response struct {
	ID          int64  `json:"id"`
	PageSection string `json:"page_section"`
}

// errorEnvelope matches the ingestion endpoint's error payload.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client sends submissions to the feedback-ingestion endpoint. It performs
// exactly one network request per Send and never retries; a failure is
// surfaced to the caller, who clears the in-progress state so the user can
// resubmit manually.
type Client struct {
	endpoint   string
	httpClient *http.Client

	// inFlight mirrors the widget's disabled submit button: a best-effort
	// guard against double submission, not a server-side idempotency key.
	inFlight atomic.Bool
}

// NewClient creates a submission client for the given ingestion endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send submits the request. Returns an error immediately if another Send is
// still in flight.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if req.ImageData == "" {
		return nil, fmt.Errorf("imageData is required")
	}
	if req.WidgetKey == "" && req.Token == "" {
		return nil, fmt.Errorf("either widgetKey or token is required")
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("a submission is already in progress")
	}
	defer c.inFlight.Store(false)

	if req.Annotations == nil {
		req.Annotations = []feedback.TextAnnotation{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("undecodable response: %w", err)
	}

	return &out, nil
}

// decodeError turns a non-2xx response into a descriptive error.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("submission rejected (%d): %s", resp.StatusCode, envelope.Error.Message)
	}

	snippet := strings.TrimSpace(string(raw))
	if snippet == "" {
		snippet = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("submission rejected (%d): %s", resp.StatusCode, snippet)
}
