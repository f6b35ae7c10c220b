package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"calma-service/internal/logger"
	"calma-service/internal/metrics"
	"calma-service/internal/tts"
	"go.uber.org/zap"
)

const maxRelayBody = 1 << 20

type synthesizer interface {
	Synthesize(ctx context.Context, voice, text string) (io.ReadCloser, error)
}

// TTSHandler relays POST /api/tts to the speech provider and streams the MP3 back.
type TTSHandler struct {
	client synthesizer
	log    *zap.Logger
}

func NewTTSHandler(client synthesizer, log *zap.Logger) *TTSHandler {
	return &TTSHandler{client: client, log: logger.OrNop(log)}
}

type ttsRequest struct {
	Voice string `json:"voice"`
	Text  string `json:"text"`
}

func (h *TTSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	voice := voiceLabel(req.Voice)
	if req.Voice == "" || req.Text == "" {
		h.count(voice, http.StatusBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing voice or text"})
		return
	}

	stream, err := h.client.Synthesize(r.Context(), req.Voice, req.Text)
	if err != nil {
		status := h.writeRelayError(w, err)
		h.count(voice, status)
		h.log.Warn("tts relay failed",
			zap.String("voice", req.Voice),
			zap.Int("text_length", len(req.Text)),
			zap.Int("status", status),
			zap.Error(err))
		return
	}
	defer stream.Close()

	// long clips stream past the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Disposition", `inline; filename="tts.mp3"`)
	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, stream)
	h.count(voice, http.StatusOK)
	if err != nil {
		h.log.Warn("tts stream interrupted", zap.String("voice", req.Voice), zap.Int64("bytes", n), zap.Error(err))
		return
	}
	h.log.Info("tts relayed", zap.String("voice", req.Voice), zap.Int("text_length", len(req.Text)), zap.Int64("bytes", n))
}

func (h *TTSHandler) writeRelayError(w http.ResponseWriter, err error) int {
	if errors.Is(err, tts.ErrVoiceNotConfigured) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server voice configuration missing"})
		return http.StatusInternalServerError
	}
	var upstream *tts.UpstreamError
	if errors.As(err, &upstream) {
		writeJSON(w, upstream.Status, errorResponse{Error: "TTS_FAILED", Details: details(upstream.Details)})
		return upstream.Status
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "TTS_FAILED", Details: err.Error()})
	return http.StatusInternalServerError
}

func (h *TTSHandler) count(voice string, status int) {
	metrics.TTSRequests.WithLabelValues(voice, strconv.Itoa(status)).Inc()
}

// details keeps a JSON upstream body as JSON and anything else as a string.
func details(raw string) any {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	return raw
}

func voiceLabel(voice string) string {
	switch voice {
	case tts.VoiceSimon, tts.VoiceLena:
		return voice
	case "":
		return "none"
	}
	return "other"
}
