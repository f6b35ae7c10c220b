package http

import (
	"net/http"
	"time"

	"calma-service/internal/app"
	"calma-service/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// RouterDeps wires the handlers; a nil TTS disables the relay route.
type RouterDeps struct {
	Quiz           *app.QuizService
	Scripts        app.ScriptRepository
	Prospects      *app.ProspectEstimator
	TTS            synthesizer
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	log := logger.OrNop(deps.Log)
	api := NewAPI(deps.Scripts, deps.Prospects)
	c := corsFor(deps.AllowedOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	checkOrigin := func(r *http.Request) bool {
		return r.Header.Get("Origin") == "" || c.OriginAllowed(r)
	}
	mux.HandleFunc("/ws", NewWSHandler(deps.Quiz, checkOrigin, log).ServeWS)
	if deps.TTS != nil {
		mux.Handle("/api/tts", NewTTSHandler(deps.TTS, log))
	}
	mux.HandleFunc("/api/audit", api.HandleAudit)
	mux.HandleFunc("/api/audit/quick", api.HandleQuickAudit)
	mux.HandleFunc("/api/prospects", api.HandleProspects)
	mux.HandleFunc("/api/scripts/{script_id}", api.HandleScript)

	return c.Handler(requestLogger(mux, log))
}

// corsFor allows every origin when none are configured, like the relay always did.
func corsFor(origins []string) *cors.Cors {
	if len(origins) == 0 {
		return cors.AllowAll()
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the hijacker.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Duration("elapsed", time.Since(start)))
	})
}
