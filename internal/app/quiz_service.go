package app

import (
	"context"

	"calma-service/internal/domain"
	"calma-service/internal/logger"
	"calma-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ScriptRepository loads quiz scripts (from cache/backing store).
type ScriptRepository interface {
	GetScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// QuizService contains the quiz use cases: one session per visit, driven screen by screen.
type QuizService struct {
	sessions      SessionRepository
	scripts       ScriptRepository
	defaultScript string
	log           *zap.Logger
}

func NewQuizService(store SessionRepository, scripts ScriptRepository, log *zap.Logger) *QuizService {
	return &QuizService{
		sessions:      store,
		scripts:       scripts,
		defaultScript: domain.MiroirCalmaID,
		log:           logger.OrNop(log),
	}
}

// WithDefaultScript sets the script used when Start is called without an ID.
func (s *QuizService) WithDefaultScript(scriptID string) *QuizService {
	if scriptID != "" {
		s.defaultScript = scriptID
	}
	return s
}

// Start opens a new session on the intro screen of scriptID (or the default script).
func (s *QuizService) Start(ctx context.Context, scriptID string) (domain.SessionSnapshot, error) {
	if scriptID == "" {
		scriptID = s.defaultScript
	}
	script, err := s.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	session := NewSession(uuid.NewString(), script)
	s.sessions.Put(session)
	metrics.QuizSessionsStarted.Inc()
	s.log.Debug("quiz session started", zap.String("session_id", session.ID()), zap.String("script_id", scriptID))
	return session.Snapshot(), nil
}

// Answer records value for the screen at ordinal.
func (s *QuizService) Answer(_ context.Context, sessionID string, ordinal int, value domain.AnswerValue) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Answer(ordinal, value)
}

// Toggle flips label on a multi-choice screen.
func (s *QuizService) Toggle(_ context.Context, sessionID string, ordinal int, label string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Toggle(ordinal, label)
}

// Advance moves to the next screen; moved is false when the current screen cannot proceed.
func (s *QuizService) Advance(_ context.Context, sessionID string) (domain.SessionSnapshot, bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, false, domain.ErrSessionNotFound
	}
	snap, moved := session.Advance()
	if moved && snap.Results != nil {
		metrics.QuizResultsComputed.Inc()
		s.log.Info("quiz completed",
			zap.String("session_id", sessionID),
			zap.Int("total_loss", snap.Results.Total))
	}
	return snap, moved, nil
}

// Retreat moves to the previous screen.
func (s *QuizService) Retreat(_ context.Context, sessionID string) (domain.SessionSnapshot, bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, false, domain.ErrSessionNotFound
	}
	snap, moved := session.Retreat()
	return snap, moved, nil
}

// Restart resets the session to the intro with no answers.
func (s *QuizService) Restart(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Restart(), nil
}

func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Results scores the session's current answers.
func (s *QuizService) Results(_ context.Context, sessionID string) (domain.ResultSet, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ResultSet{}, domain.ErrSessionNotFound
	}
	return Score(session.Answers()), nil
}

// Subscribe returns a channel that receives session snapshots after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionSnapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close drops the session and ends its subscriptions.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.sessions.Delete(sessionID)
	session.closeSubscribers()
	s.log.Debug("quiz session closed", zap.String("session_id", sessionID))
}
