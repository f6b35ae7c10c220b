package domain

import (
	"errors"
	"testing"
)

func TestMiroirCalmaScriptIsValid(t *testing.T) {
	if err := MiroirCalmaScript().Validate(); err != nil {
		t.Fatalf("built-in script rejected: %v", err)
	}
}

func TestValidateRejectsUnanswerableScreens(t *testing.T) {
	cases := map[string]func(*Script){
		"slider without range": func(s *Script) {
			s.Screens[4].Min, s.Screens[4].Max = 0, 0
		},
		"inverted slider": func(s *Script) {
			s.Screens[4].Min, s.Screens[4].Max = 10, 0
		},
		"single choice without options": func(s *Script) {
			s.Screens[1].Options = nil
		},
		"multi choice without options": func(s *Script) {
			s.Screens[3].Options = []string{}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			script := MiroirCalmaScript()
			mutate(&script)
			if err := script.Validate(); !errors.Is(err, ErrInvalidScript) {
				t.Fatalf("expected invalid script, got %v", err)
			}
		})
	}
}
