package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// ListenBind is the address the HTTP server binds to.
	ListenBind string `json:"listen_bind,omitempty"`

	// ListenPort is the HTTP server port.
	ListenPort int `json:"listen_port,omitempty"`

	// ScreenshotURL is the base URL of the headless-browser screenshot
	// service used by the authenticated canvas flow. Empty disables the
	// server-side capture path.
	ScreenshotURL string `json:"screenshot_url,omitempty"`

	// ScreenshotTimeoutSecs bounds a single screenshot request. Slow or
	// cross-origin-heavy pages can take several seconds to render.
	ScreenshotTimeoutSecs int `json:"screenshot_timeout_secs,omitempty"`

	// JPEGQuality is the encoder quality for composed images. JPEG is used
	// over PNG because hosting platforms commonly cap request bodies at a
	// few megabytes and PNG screenshots of full pages frequently exceed that.
	JPEGQuality int `json:"jpeg_quality,omitempty"`

	// ImageBatchMax caps how many comment images one batch request may fetch.
	ImageBatchMax int `json:"image_batch_max,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools lists MCP tool names excluded from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes lists MCP tool name prefixes (e.g. "decision") whose
	// tools are excluded from registration.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ListenBind:            "127.0.0.1",
		ListenPort:            8787,
		ScreenshotTimeoutSecs: 15,
		JPEGQuality:           70,
		ImageBatchMax:         20,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir().
func Load(baseDir string) (*Config, error) {
	raw, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), raw), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for non-zero scalars.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ListenBind = overlay.ListenBind
	if result.ListenBind == "" {
		result.ListenBind = base.ListenBind
	}

	result.ListenPort = overlay.ListenPort
	if result.ListenPort == 0 {
		result.ListenPort = base.ListenPort
	}

	result.ScreenshotURL = overlay.ScreenshotURL
	if result.ScreenshotURL == "" {
		result.ScreenshotURL = base.ScreenshotURL
	}

	result.ScreenshotTimeoutSecs = overlay.ScreenshotTimeoutSecs
	if result.ScreenshotTimeoutSecs == 0 {
		result.ScreenshotTimeoutSecs = base.ScreenshotTimeoutSecs
	}

	result.JPEGQuality = overlay.JPEGQuality
	if result.JPEGQuality == 0 {
		result.JPEGQuality = base.JPEGQuality
	}

	result.ImageBatchMax = overlay.ImageBatchMax
	if result.ImageBatchMax == 0 {
		result.ImageBatchMax = base.ImageBatchMax
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = overlay.DisabledTools
	if result.DisabledTools == nil {
		result.DisabledTools = base.DisabledTools
	}

	result.DisabledTypes = overlay.DisabledTypes
	if result.DisabledTypes == nil {
		result.DisabledTypes = base.DisabledTypes
	}

	return result
}
