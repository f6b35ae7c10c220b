package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calma-service/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModelID = "eleven_multilingual_v2"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 << 10
)

// UpstreamError carries the provider's status and body verbatim.
type UpstreamError struct {
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tts upstream returned %d: %s", e.Status, e.Details)
}

// Config configures the upstream speech provider.
type Config struct {
	BaseURL string
	APIKey  string
	ModelID string
	Timeout time.Duration
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	httpClient *http.Client
	cfg        Config
	catalog    *Catalog
}

// NewClient builds a client. cfg.Timeout bounds the wait for the provider's
// response headers; the audio stream itself is not time limited.
func NewClient(cfg Config, catalog *Catalog, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Client{httpClient: httpClient, cfg: cfg, catalog: catalog}
}

type synthesizeRequest struct {
	Text          string   `json:"text"`
	ModelID       string   `json:"model_id"`
	VoiceSettings Settings `json:"voice_settings"`
}

// Synthesize requests speech for text spoken by voice. The caller must close the
// returned MP3 stream.
func (c *Client) Synthesize(ctx context.Context, voice, text string) (io.ReadCloser, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrVoiceNotConfigured
	}
	voiceID, settings, err := c.catalog.Resolve(voice)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.cfg.ModelID, VoiceSettings: settings})
	if err != nil {
		return nil, err
	}
	url := c.cfg.BaseURL + "/v1/text-to-speech/" + voiceID
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	headerTimer := time.AfterFunc(c.cfg.Timeout, cancel)
	resp, err := c.httpClient.Do(req)
	if !headerTimer.Stop() && err == nil {
		resp.Body.Close()
		err = context.DeadlineExceeded
	}
	metrics.TTSUpstreamDuration.WithLabelValues(voice).Observe(time.Since(start).Seconds())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("tts request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		details, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(details))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Details: msg}
	}
	return &stream{ReadCloser: resp.Body, cancel: cancel}, nil
}

// stream releases the request context once the caller closes the body.
type stream struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (s *stream) Close() error {
	err := s.ReadCloser.Close()
	s.cancel()
	return err
}

// Catalog exposes the configured voices.
func (c *Client) Catalog() *Catalog {
	return c.catalog
}
