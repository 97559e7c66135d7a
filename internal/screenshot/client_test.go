package screenshot

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/canvas"
)

func TestCaptureDecodesResponse(t *testing.T) {
	var gotReq captureRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/screenshot" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		img := image.NewRGBA(image.Rect(0, 0, 32, 16))
		for y := 0; y < 16; y++ {
			for x := 0; x < 32; x++ {
				img.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
			}
		}
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	img, err := c.Capture(context.Background(), "https://acme.example/pricing", 1280, 800)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if gotReq.URL != "https://acme.example/pricing" || gotReq.Width != 1280 || gotReq.Height != 800 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestCaptureServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render timeout", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Capture(context.Background(), "https://slow.example", 800, 600); err == nil {
		t.Error("Capture should surface non-200 responses as errors")
	}
}

func TestCaptureUnconfigured(t *testing.T) {
	c := NewClient("", time.Second)
	if _, err := c.Capture(context.Background(), "https://acme.example", 800, 600); err == nil {
		t.Error("Capture without a base URL should fail")
	}
}

func TestDecodeDataURIRoundTrip(t *testing.T) {
	// Build a data URI via the canvas encoder, then decode it back.
	src := canvas.Placeholder(24, 12, "")
	uri, err := canvas.EncodeJPEGDataURI(src, 80)
	if err != nil {
		t.Fatalf("EncodeJPEGDataURI failed: %v", err)
	}

	img, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI failed: %v", err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 12 {
		t.Errorf("bounds = %v, want 24x12", img.Bounds())
	}
}

func TestDecodeDataURIRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"https://acme.example/image.png",
		"data:text/plain;base64,aGk=",
		"data:image/png,not-base64-marker",
		"data:image/png;base64,!!!!",
	}
	for _, uri := range cases {
		if _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("DecodeDataURI(%.30q) should fail", uri)
		}
	}
}
