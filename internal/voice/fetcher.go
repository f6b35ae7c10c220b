package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calma-service/internal/domain"
	"calma-service/internal/logger"
	"calma-service/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AudioCache stores fetched clips by voice and text.
type AudioCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, audio []byte)
}

// RelayError is a non-2xx answer from the TTS relay.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string {
	return e.Message
}

// Fetcher retrieves synthesized speech for a voice's demo script from the relay.
type Fetcher struct {
	endpoint   string
	scripts    map[string]string
	cache      AudioCache
	httpClient *http.Client
	sf         singleflight.Group
	log        *zap.Logger
}

func NewFetcher(endpoint string, scripts map[string]string, cache AudioCache, httpClient *http.Client, log *zap.Logger) *Fetcher {
	if scripts == nil {
		scripts = DemoScripts
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &Fetcher{
		endpoint:   endpoint,
		scripts:    scripts,
		cache:      cache,
		httpClient: httpClient,
		log:        logger.OrNop(log),
	}
}

// CacheKey identifies a clip by voice and exact text.
func CacheKey(voice, text string) string {
	return voice + "-" + text
}

// Fetch returns the MP3 bytes of voice reading its script. Successful responses
// are cached; concurrent fetches of the same clip share one request.
func (f *Fetcher) Fetch(ctx context.Context, voice string) ([]byte, error) {
	text, ok := f.scripts[voice]
	if !ok || text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrScriptTextMissing, voice)
	}
	key := CacheKey(voice, text)

	if f.cache != nil {
		if audio, ok := f.cache.Get(ctx, key); ok {
			metrics.AudioCacheLookups.WithLabelValues("hit").Inc()
			return audio, nil
		}
		metrics.AudioCacheLookups.WithLabelValues("miss").Inc()
	}

	// the shared request outlives any single caller; each caller stops waiting on its own ctx
	shared := context.WithoutCancel(ctx)
	ch := f.sf.DoChan(key, func() (interface{}, error) {
		audio, err := f.request(shared, voice, text)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			f.cache.Set(shared, key, audio)
		}
		return audio, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

type relayRequest struct {
	Voice string `json:"voice"`
	Text  string `json:"text"`
}

type relayErrorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func (f *Fetcher) request(ctx context.Context, voice, text string) ([]byte, error) {
	body, err := json.Marshal(relayRequest{Voice: voice, Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg, application/octet-stream, */*")

	f.log.Debug("fetching audio", zap.String("voice", voice), zap.Int("text_length", len(text)))
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &RelayError{Status: resp.StatusCode, Message: relayMessage(resp, raw)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, domain.ErrEmptyAudio
	}
	return audio, nil
}

// relayMessage prefers the relay's "error" field, then "details", then the raw body.
func relayMessage(resp *http.Response, raw []byte) string {
	fallback := fmt.Sprintf("relay error (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	var parsed relayErrorBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if text := strings.TrimSpace(string(raw)); text != "" {
			return fallback + " - " + text
		}
		return fallback
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	if len(parsed.Details) > 0 && string(parsed.Details) != "null" {
		var details string
		if err := json.Unmarshal(parsed.Details, &details); err == nil && details != "" {
			return details
		}
		return string(parsed.Details)
	}
	return fallback
}
