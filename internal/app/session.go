package app

import (
	"math"
	"sync"
	"time"

	"calma-service/internal/domain"
)

// Session is one visit to the quiz: current ordinal, answers and navigation direction.
// It is the flow controller for a single script.
type Session struct {
	id     string
	script domain.Script
	now    func() time.Time

	mu          sync.RWMutex
	ordinal     int
	direction   int
	answers     domain.Answers
	updatedAt   time.Time
	subscribers map[chan domain.SessionSnapshot]struct{}
	closed      bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, script domain.Script) *Session {
	return NewSessionWithClock(id, script, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, script domain.Script, now func() time.Time) *Session {
	return &Session{
		id:          id,
		script:      script,
		now:         now,
		direction:   1,
		answers:     make(domain.Answers),
		updatedAt:   now(),
		subscribers: make(map[chan domain.SessionSnapshot]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Answer stores value for the screen at ordinal, replacing any prior answer.
// Single-choice values must be one of the screen's labels; multi-choice sets are
// deduplicated; slider values are clamped to the screen range.
func (s *Session) Answer(ordinal int, value domain.AnswerValue) (domain.SessionSnapshot, error) {
	screen, ok := s.script.Screen(ordinal)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrScreenNotFound
	}
	if value.Kind != screen.Kind {
		return domain.SessionSnapshot{}, domain.ErrWrongScreenKind
	}

	var stored domain.AnswerValue
	switch screen.Kind {
	case domain.KindSingle:
		if !screen.HasOption(value.Choice) {
			return domain.SessionSnapshot{}, domain.ErrInvalidOption
		}
		stored = domain.ChoiceAnswer(value.Choice)
	case domain.KindMulti:
		set := make([]string, 0, len(value.Choices))
		for _, label := range value.Choices {
			if !screen.HasOption(label) {
				return domain.SessionSnapshot{}, domain.ErrInvalidOption
			}
			if !contains(set, label) {
				set = append(set, label)
			}
		}
		stored = domain.ChoicesAnswer(set...)
	case domain.KindSlider:
		stored = domain.NumberAnswer(screen.Clamp(value.Number))
	default:
		return domain.SessionSnapshot{}, domain.ErrWrongScreenKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[ordinal] = stored
	return s.touchLocked(), nil
}

// Toggle selects label on a multi-choice screen if absent, deselects it if present.
func (s *Session) Toggle(ordinal int, label string) (domain.SessionSnapshot, error) {
	screen, ok := s.script.Screen(ordinal)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrScreenNotFound
	}
	if screen.Kind != domain.KindMulti {
		return domain.SessionSnapshot{}, domain.ErrWrongScreenKind
	}
	if !screen.HasOption(label) {
		return domain.SessionSnapshot{}, domain.ErrInvalidOption
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.answers[ordinal].Choices
	next := make([]string, 0, len(current)+1)
	found := false
	for _, c := range current {
		if c == label {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, label)
	}
	s.answers[ordinal] = domain.ChoicesAnswer(next...)
	return s.touchLocked(), nil
}

// Advance moves forward one screen when the current one can proceed.
// It reports false, leaving the session unchanged, otherwise.
func (s *Session) Advance() (domain.SessionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ordinal >= s.script.Terminal() || !s.canProceedLocked() {
		return s.snapshotLocked(), false
	}
	s.ordinal++
	s.direction = 1
	return s.touchLocked(), true
}

// Retreat moves back one screen, floored at the intro.
func (s *Session) Retreat() (domain.SessionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ordinal == 0 {
		return s.snapshotLocked(), false
	}
	s.ordinal--
	s.direction = -1
	return s.touchLocked(), true
}

// Restart returns to the intro and clears every answer.
func (s *Session) Restart() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordinal = 0
	s.direction = 1
	s.answers = make(domain.Answers)
	return s.touchLocked()
}

func (s *Session) CanProceed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canProceedLocked()
}

func (s *Session) Ordinal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordinal
}

// Answers returns a copy of the answer mapping.
func (s *Session) Answers() domain.Answers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers.Clone()
}

func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) canProceedLocked() bool {
	screen := s.script.Screens[s.ordinal]
	switch screen.Kind {
	case domain.KindIntro:
		return true
	case domain.KindResults:
		return false
	}
	value, ok := s.answers[s.ordinal]
	return ok && !value.IsEmpty()
}

func (s *Session) subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	s.mu.Lock()
	// ch is fresh and buffered; the initial snapshot must precede any broadcast
	ch <- s.snapshotLocked()
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// closeSubscribers ends every subscription; used when the session is dropped.
func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) touchLocked() domain.SessionSnapshot {
	s.updatedAt = s.now()
	return s.broadcastLocked()
}

func (s *Session) broadcastLocked() domain.SessionSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: replace the stale snapshot with the newest one
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	terminal := s.script.Terminal()
	questions := terminal - 1
	snap := domain.SessionSnapshot{
		SessionID:  s.id,
		ScriptID:   s.script.ID,
		Ordinal:    s.ordinal,
		Direction:  s.direction,
		Screen:     s.script.Screens[s.ordinal],
		Answers:    s.answers.Clone(),
		CanProceed: s.canProceedLocked(),
		UpdatedAt:  s.updatedAt,
	}
	if s.ordinal == terminal {
		results := Score(s.answers)
		snap.Results = &results
		snap.Progress = domain.Progress{Question: questions, Of: questions, Percent: 100}
		return snap
	}
	percent := 0
	if questions > 0 {
		percent = int(math.Round(float64(s.ordinal) / float64(questions) * 100))
	}
	snap.Progress = domain.Progress{Question: s.ordinal, Of: questions, Percent: percent}
	return snap
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
