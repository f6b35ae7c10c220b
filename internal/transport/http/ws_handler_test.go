package http

import (
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"calma-service/internal/app"
	"calma-service/internal/domain"
	"calma-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, synth synthesizer) (*httptest.Server, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore()
	scripts := memory.NewScriptRepository(memory.NewStaticScriptLoader(map[string]domain.Script{
		domain.MiroirCalmaID: domain.MiroirCalmaScript(),
	}), time.Minute)
	router := NewRouter(RouterDeps{
		Quiz:      app.NewQuizService(store, scripts, nil),
		Scripts:   scripts,
		Prospects: app.NewProspectEstimator(rand.NewSource(1)),
		TTS:       synth,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, store
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWebSocketQuizFlow(t *testing.T) {
	server, store := newTestServer(t, nil)
	conn := dial(t, server, "")

	snap := readState(t, conn)
	if snap.Ordinal != 0 || !snap.CanProceed || snap.SessionID == "" {
		t.Fatalf("unexpected initial state %+v", snap)
	}

	send(t, conn, "advance", nil)
	if snap = readState(t, conn); snap.Ordinal != 1 || snap.CanProceed {
		t.Fatalf("expected unanswered ordinal 1, got %+v", snap)
	}

	send(t, conn, "answer", map[string]any{"ordinal": 1, "choice": "not an option"})
	if msg := readError(t, conn); msg != domain.ErrInvalidOption.Error() {
		t.Fatalf("unexpected error message %q", msg)
	}

	send(t, conn, "answer", map[string]any{"ordinal": 1, "choice": "Un restaurant reconnu mais sous tension"})
	if snap = readState(t, conn); !snap.CanProceed {
		t.Fatalf("expected answered screen to proceed")
	}
	send(t, conn, "advance", nil)
	readState(t, conn)

	send(t, conn, "answer", map[string]any{"ordinal": 2, "choice": "On répond quand on peut"})
	readState(t, conn)
	send(t, conn, "advance", nil)
	readState(t, conn)

	send(t, conn, "toggle", map[string]any{"ordinal": 3, "label": "Les messages hors horaires"})
	if snap = readState(t, conn); len(snap.Answers[3].Choices) != 1 {
		t.Fatalf("expected one selected label, got %+v", snap.Answers[3])
	}
	send(t, conn, "advance", nil)
	readState(t, conn)

	send(t, conn, "answer", map[string]any{"ordinal": 4, "number": 0})
	if snap = readState(t, conn); snap.Answers[4].Number != 0 || !snap.CanProceed {
		t.Fatalf("expected slider at 0, got %+v", snap.Answers[4])
	}

	send(t, conn, "results", nil)
	results := readResults(t, conn)
	if results.Total != 15640 {
		t.Fatalf("expected total 15640, got %d", results.Total)
	}

	send(t, conn, "restart", nil)
	if snap = readState(t, conn); snap.Ordinal != 0 || len(snap.Answers) != 0 {
		t.Fatalf("expected restart to intro, got %+v", snap)
	}

	send(t, conn, "dance", nil)
	if msg := readError(t, conn); msg != "unsupported message type" {
		t.Fatalf("unexpected error message %q", msg)
	}

	_ = conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected session closed with its socket")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketAttachToSession(t *testing.T) {
	server, store := newTestServer(t, nil)
	owner := dial(t, server, "")
	defer owner.Close()
	snap := readState(t, owner)

	viewer := dial(t, server, "?sessionId="+snap.SessionID)
	readState(t, viewer)

	send(t, owner, "advance", nil)
	readState(t, owner)
	if got := readState(t, viewer); got.Ordinal != 1 {
		t.Fatalf("viewer expected ordinal 1, got %d", got.Ordinal)
	}

	_ = viewer.Close()
	time.Sleep(50 * time.Millisecond)
	if store.Len() != 1 {
		t.Fatalf("closing an attached socket must keep the session")
	}
}

func TestWebSocketRejectsUnknownScript(t *testing.T) {
	server, _ := newTestServer(t, nil)
	u := "ws" + server.URL[len("http"):] + "/ws?scriptId=nope"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

type wireMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(wireMessage{Type: typ, Payload: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext[T any](t *testing.T, conn *websocket.Conn, expect string) T {
	t.Helper()
	var msg struct {
		Type    string `json:"type"`
		Payload T      `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Payload
}

func readState(t *testing.T, conn *websocket.Conn) domain.SessionSnapshot {
	t.Helper()
	return readNext[domain.SessionSnapshot](t, conn, "state")
}

func readResults(t *testing.T, conn *websocket.Conn) domain.ResultSet {
	t.Helper()
	return readNext[domain.ResultSet](t, conn, "results")
}

func readError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	return readNext[errorPayload](t, conn, "error").Message
}
