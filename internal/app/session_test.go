package app_test

import (
	"testing"
	"time"

	"calma-service/internal/app"
	"calma-service/internal/domain"
)

func newSession() *app.Session {
	fixed := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	return app.NewSessionWithClock("s-1", domain.MiroirCalmaScript(), func() time.Time { return fixed })
}

// walkTo advances from the intro to ordinal, answering every screen on the way.
func walkTo(t *testing.T, s *app.Session, ordinal int) {
	t.Helper()
	script := domain.MiroirCalmaScript()
	for s.Ordinal() < ordinal {
		screen := script.Screens[s.Ordinal()]
		switch screen.Kind {
		case domain.KindSingle:
			if _, err := s.Answer(screen.Ordinal, domain.ChoiceAnswer(screen.Options[0])); err != nil {
				t.Fatalf("answer %d: %v", screen.Ordinal, err)
			}
		case domain.KindMulti:
			if _, err := s.Toggle(screen.Ordinal, screen.Options[0]); err != nil {
				t.Fatalf("toggle %d: %v", screen.Ordinal, err)
			}
		case domain.KindSlider:
			if _, err := s.Answer(screen.Ordinal, domain.NumberAnswer(5)); err != nil {
				t.Fatalf("slide %d: %v", screen.Ordinal, err)
			}
		}
		if _, moved := s.Advance(); !moved {
			t.Fatalf("could not advance from %d", screen.Ordinal)
		}
	}
}

func TestIntroAlwaysProceeds(t *testing.T) {
	s := newSession()
	if !s.CanProceed() {
		t.Fatalf("intro must always proceed")
	}
	if _, err := s.Answer(4, domain.NumberAnswer(3)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !s.CanProceed() {
		t.Fatalf("intro must proceed regardless of answers")
	}
}

func TestAdvanceIsNoOpWithoutAnswer(t *testing.T) {
	s := newSession()
	walkTo(t, s, 1)

	snap, moved := s.Advance()
	if moved || snap.Ordinal != 1 {
		t.Fatalf("expected no-op at unanswered screen, got moved=%v ordinal=%d", moved, snap.Ordinal)
	}
}

func TestMultiChoiceGate(t *testing.T) {
	s := newSession()
	walkTo(t, s, 3)

	if _, moved := s.Advance(); moved {
		t.Fatalf("advance must be a no-op with an empty selection")
	}

	label := "Les messages hors horaires"
	if _, err := s.Toggle(3, label); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.Toggle(3, label); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if _, moved := s.Advance(); moved {
		t.Fatalf("deselecting the only label must close the gate again")
	}

	if _, err := s.Toggle(3, label); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	snap, moved := s.Advance()
	if !moved || snap.Ordinal != 4 {
		t.Fatalf("expected ordinal 4, got moved=%v ordinal=%d", moved, snap.Ordinal)
	}
}

func TestToggleKeepsSelectionOrder(t *testing.T) {
	s := newSession()
	a, b, c := "Les messages hors horaires", "C'est toujours dans l'urgence", "Compenser une organisation inexistante"
	for _, label := range []string{a, b, c, b} {
		if _, err := s.Toggle(3, label); err != nil {
			t.Fatalf("toggle %q: %v", label, err)
		}
	}
	got := s.Answers()[3].Choices
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestLastWriteWins(t *testing.T) {
	s := newSession()
	if _, err := s.Answer(7, domain.ChoiceAnswer("300–500 €")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := s.Answer(9, domain.ChoiceAnswer("0–5 heures")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := s.Answer(7, domain.ChoiceAnswer("1 200 € +")); err != nil {
		t.Fatalf("answer: %v", err)
	}

	answers := s.Answers()
	if len(answers) != 2 {
		t.Fatalf("expected one entry per screen, got %d", len(answers))
	}
	if answers[7].Choice != "1 200 € +" {
		t.Fatalf("expected last write, got %q", answers[7].Choice)
	}
}

func TestSliderClamps(t *testing.T) {
	s := newSession()
	if _, err := s.Answer(4, domain.NumberAnswer(42)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := s.Answers()[4].Number; got != 10 {
		t.Fatalf("expected clamp to 10, got %d", got)
	}
	if _, err := s.Answer(4, domain.NumberAnswer(-3)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := s.Answers()[4].Number; got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestAnswerRejectsForeignInput(t *testing.T) {
	s := newSession()
	if _, err := s.Answer(1, domain.ChoiceAnswer("not an option")); err != domain.ErrInvalidOption {
		t.Fatalf("expected option error, got %v", err)
	}
	if _, err := s.Answer(1, domain.NumberAnswer(3)); err != domain.ErrWrongScreenKind {
		t.Fatalf("expected kind error, got %v", err)
	}
	if _, err := s.Answer(0, domain.ChoiceAnswer("x")); err != domain.ErrWrongScreenKind {
		t.Fatalf("expected kind error on intro, got %v", err)
	}
	if _, err := s.Answer(11, domain.NumberAnswer(1)); err != domain.ErrScreenNotFound {
		t.Fatalf("expected screen error, got %v", err)
	}
	if _, err := s.Toggle(1, "Un restaurant reconnu mais sous tension"); err != domain.ErrWrongScreenKind {
		t.Fatalf("expected kind error for toggle on single choice, got %v", err)
	}
	if len(s.Answers()) != 0 {
		t.Fatalf("rejected answers must not be stored")
	}
}

func TestRetreatFloorsAtIntro(t *testing.T) {
	s := newSession()
	if _, moved := s.Retreat(); moved {
		t.Fatalf("retreat at intro must be a no-op")
	}
	walkTo(t, s, 2)
	snap, moved := s.Retreat()
	if !moved || snap.Ordinal != 1 || snap.Direction != -1 {
		t.Fatalf("unexpected retreat snapshot %+v", snap)
	}
	if len(snap.Answers) != 1 {
		t.Fatalf("retreat must keep answers, got %v", snap.Answers)
	}
}

func TestTerminalResults(t *testing.T) {
	s := newSession()
	walkTo(t, s, 10)

	snap := s.Snapshot()
	if snap.Results == nil || snap.Screen.Kind != domain.KindResults {
		t.Fatalf("expected results at terminal ordinal, got %+v", snap)
	}
	if snap.CanProceed {
		t.Fatalf("terminal screen cannot proceed")
	}
	if _, moved := s.Advance(); moved {
		t.Fatalf("advance beyond terminal must be a no-op")
	}
}

func TestRestartClearsEverything(t *testing.T) {
	for _, stop := range []int{0, 3, 7, 10} {
		s := newSession()
		walkTo(t, s, stop)
		snap := s.Restart()
		if snap.Ordinal != 0 || len(snap.Answers) != 0 {
			t.Fatalf("restart from %d left ordinal=%d answers=%v", stop, snap.Ordinal, snap.Answers)
		}
	}
}

func TestProgressIndicator(t *testing.T) {
	s := newSession()
	walkTo(t, s, 3)
	p := s.Snapshot().Progress
	if p.Question != 3 || p.Of != 9 || p.Percent != 33 {
		t.Fatalf("unexpected progress %+v", p)
	}
}
