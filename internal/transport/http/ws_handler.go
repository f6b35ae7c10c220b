package http

import (
	"encoding/json"
	"net/http"

	"calma-service/internal/app"
	"calma-service/internal/domain"
	"calma-service/internal/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.QuizService, checkOrigin func(r *http.Request) bool, log *zap.Logger) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: logger.OrNop(log),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// answerPayload carries exactly one of choice, choices or number.
type answerPayload struct {
	Ordinal int      `json:"ordinal"`
	Choice  string   `json:"choice"`
	Choices []string `json:"choices"`
	Number  *int     `json:"number"`
}

func (p answerPayload) value() domain.AnswerValue {
	switch {
	case p.Number != nil:
		return domain.NumberAnswer(*p.Number)
	case p.Choices != nil:
		return domain.ChoicesAnswer(p.Choices...)
	}
	return domain.ChoiceAnswer(p.Choice)
}

type togglePayload struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
// Without sessionId a new session is started on scriptId (or the default script) and
// closed when the socket goes away; with sessionId the socket attaches to a live session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	scriptID := r.URL.Query().Get("scriptId")
	sessionID := r.URL.Query().Get("sessionId")
	owner := sessionID == ""

	if owner {
		snap, err := h.service.Start(r.Context(), scriptID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sessionID = snap.SessionID
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer cancel()
	if owner {
		defer h.service.Close(r.Context(), sessionID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.String("session_id", sessionID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r, sessionID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle applies one inbound message. State changes reach the client through the
// subscription; only results and errors are answered directly.
func (h *WSHandler) handle(r *http.Request, sessionID string, inbound inboundMessage) (outboundMessage[any], bool) {
	ctx := r.Context()
	var err error
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload"), true
		}
		_, err = h.service.Answer(ctx, sessionID, payload.Ordinal, payload.value())
	case "toggle":
		var payload togglePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid toggle payload"), true
		}
		_, err = h.service.Toggle(ctx, sessionID, payload.Ordinal, payload.Label)
	case "advance":
		_, _, err = h.service.Advance(ctx, sessionID)
	case "retreat":
		_, _, err = h.service.Retreat(ctx, sessionID)
	case "restart":
		_, err = h.service.Restart(ctx, sessionID)
	case "results":
		results, err := h.service.Results(ctx, sessionID)
		if err != nil {
			return errorMessage(err.Error()), true
		}
		return outboundMessage[any]{Type: "results", Payload: results}, true
	default:
		return errorMessage("unsupported message type"), true
	}
	if err != nil {
		return errorMessage(err.Error()), true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
