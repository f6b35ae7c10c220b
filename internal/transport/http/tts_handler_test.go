package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calma-service/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	audio string
	err   error
	voice string
	text  string
}

func (f *fakeSynth) Synthesize(_ context.Context, voice, text string) (io.ReadCloser, error) {
	f.voice, f.text = voice, text
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.audio)), nil
}

func postTTS(t *testing.T, server *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/tts", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://calma.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestTTSRelayStreamsAudio(t *testing.T) {
	synth := &fakeSynth{audio: "ID3-audio"}
	server, _ := newTestServer(t, synth)

	resp, body := postTTS(t, server, `{"voice":"lena","text":"Bonjour"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, `inline; filename="tts.mp3"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "ID3-audio", string(body))
	assert.Equal(t, "lena", synth.voice)
	assert.Equal(t, "Bonjour", synth.text)
}

func TestTTSRelayRejectsMissingFields(t *testing.T) {
	server, _ := newTestServer(t, &fakeSynth{})
	for _, body := range []string{`{"voice":"simon"}`, `{"text":"Bonjour"}`, ``} {
		resp, data := postTTS(t, server, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.JSONEq(t, `{"error":"Missing voice or text"}`, string(data), body)
	}
}

func TestTTSRelayMapsFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not configured", tts.ErrVoiceNotConfigured, 500, `{"error":"Server voice configuration missing"}`},
		{"upstream json", &tts.UpstreamError{Status: 401, Details: `{"detail":"invalid_api_key"}`}, 401,
			`{"error":"TTS_FAILED","details":{"detail":"invalid_api_key"}}`},
		{"upstream text", &tts.UpstreamError{Status: 429, Details: "too many requests"}, 429,
			`{"error":"TTS_FAILED","details":"too many requests"}`},
		{"transport", io.ErrUnexpectedEOF, 500, `{"error":"TTS_FAILED","details":"unexpected EOF"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestServer(t, &fakeSynth{err: tc.err})
			resp, data := postTTS(t, server, `{"voice":"simon","text":"Bonjour"}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.JSONEq(t, tc.body, string(data))
		})
	}
}

func TestTTSRelayAgainstProvider(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if r.URL.Path != "/v1/text-to-speech/provider-simon" || r.Header.Get("xi-api-key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("mp3:" + payload["text"].(string)))
	}))
	defer provider.Close()

	client := tts.NewClient(tts.Config{BaseURL: provider.URL, APIKey: "key"},
		tts.NewCatalog(map[string]string{tts.VoiceSimon: "provider-simon"}), provider.Client())
	server, _ := newTestServer(t, client)

	resp, body := postTTS(t, server, `{"voice":"simon","text":"Salut"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mp3:Salut", string(body))

	resp, body = postTTS(t, server, `{"voice":"lena","text":"Salut"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Server voice configuration missing"}`, string(body))
}

func TestTTSRelayMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t, &fakeSynth{})
	resp, err := http.Get(server.URL + "/api/tts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTTSRelayRejectsOversizedBody(t *testing.T) {
	synth := &fakeSynth{audio: "ID3-audio"}
	body := `{"voice":"simon","text":"` + strings.Repeat("a", maxRelayBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	NewTTSHandler(synth, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
	assert.Empty(t, synth.voice)
}

// pacedStream yields one chunk per delay.
type pacedStream struct {
	chunks []string
	delay  time.Duration
}

func (p *pacedStream) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	time.Sleep(p.delay)
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *pacedStream) Close() error { return nil }

type pacedSynth struct{}

func (pacedSynth) Synthesize(context.Context, string, string) (io.ReadCloser, error) {
	return &pacedStream{chunks: []string{"chunk", "chunk", "chunk", "chunk"}, delay: 150 * time.Millisecond}, nil
}

func TestTTSRelayOutlivesServerWriteTimeout(t *testing.T) {
	server := httptest.NewUnstartedServer(NewTTSHandler(pacedSynth{}, nil))
	server.Config.WriteTimeout = 200 * time.Millisecond
	server.Start()
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", strings.NewReader(`{"voice":"simon","text":"Bonjour"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	audio, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chunkchunkchunkchunk", string(audio))
}
