package domain

import "time"

// ScreenKind decides which answers a screen accepts and how it gates navigation.
type ScreenKind string

const (
	KindIntro   ScreenKind = "intro"
	KindSingle  ScreenKind = "single"
	KindMulti   ScreenKind = "multi"
	KindSlider  ScreenKind = "slider"
	KindResults ScreenKind = "results"
)

// Screen is one immutable step of a quiz script.
type Screen struct {
	Ordinal  int        `json:"ordinal"`
	Kind     ScreenKind `json:"kind"`
	Prompt   string     `json:"prompt"`
	Subtitle string     `json:"subtitle,omitempty"`
	Options  []string   `json:"options,omitempty"`
	Min      int        `json:"min,omitempty"`
	Max      int        `json:"max,omitempty"`
}

// HasOption reports whether label is one of the screen's option labels.
func (s Screen) HasOption(label string) bool {
	for _, opt := range s.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// Clamp bounds v to the slider range.
func (s Screen) Clamp(v int) int {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Script is the fixed, ordered list of screens a session walks through.
// The last screen is the terminal results screen.
type Script struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Screens []Screen `json:"screens"`
}

// Terminal returns the ordinal of the results screen.
func (s Script) Terminal() int {
	return len(s.Screens) - 1
}

// Screen returns the screen at ordinal.
func (s Script) Screen(ordinal int) (Screen, bool) {
	if ordinal < 0 || ordinal >= len(s.Screens) {
		return Screen{}, false
	}
	return s.Screens[ordinal], true
}

// Validate checks that ordinals are sequential, the script ends on a results
// screen, sliders have a range and choice screens have options.
func (s Script) Validate() error {
	if len(s.Screens) < 2 {
		return ErrInvalidScript
	}
	for i, screen := range s.Screens {
		if screen.Ordinal != i {
			return ErrInvalidScript
		}
		if screen.Kind == KindResults && i != s.Terminal() {
			return ErrInvalidScript
		}
		switch screen.Kind {
		case KindSlider:
			if screen.Min >= screen.Max {
				return ErrInvalidScript
			}
		case KindSingle, KindMulti:
			if len(screen.Options) == 0 {
				return ErrInvalidScript
			}
		}
	}
	if s.Screens[s.Terminal()].Kind != KindResults {
		return ErrInvalidScript
	}
	return nil
}

// AnswerValue holds one of: a single option label, a set of labels, or a slider integer.
type AnswerValue struct {
	Kind    ScreenKind `json:"kind"`
	Choice  string     `json:"choice,omitempty"`
	Choices []string   `json:"choices,omitempty"`
	Number  int        `json:"number"`
}

func ChoiceAnswer(label string) AnswerValue {
	return AnswerValue{Kind: KindSingle, Choice: label}
}

func ChoicesAnswer(labels ...string) AnswerValue {
	return AnswerValue{Kind: KindMulti, Choices: append([]string(nil), labels...)}
}

func NumberAnswer(n int) AnswerValue {
	return AnswerValue{Kind: KindSlider, Number: n}
}

// IsEmpty mirrors the continue-button rule: an empty label or an empty selection is no answer.
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case KindSingle:
		return v.Choice == ""
	case KindMulti:
		return len(v.Choices) == 0
	case KindSlider:
		return false
	}
	return true
}

// Answers maps a screen ordinal to its latest answer.
type Answers map[int]AnswerValue

// Clone returns a deep copy safe to hand to callers.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.Choices != nil {
			v.Choices = append([]string(nil), v.Choices...)
		}
		out[k] = v
	}
	return out
}

// CategoryScores drive the proportions chart.
type CategoryScores struct {
	Reception    int `json:"reception"`
	Opportunity  int `json:"opportunity"`
	Organization int `json:"organization"`
}

// ChartSlice is one labelled value of the proportions chart.
type ChartSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Recommendation is a conditional block shown next to the chart.
type Recommendation struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

// ResultSet is derived from a session's answers; never stored.
type ResultSet struct {
	ReceptionRate      int              `json:"receptionRate"`
	MissedCallRevenue  int              `json:"missedCallRevenue"`
	AverageGroupSpend  int              `json:"averageGroupSpend"`
	UnconvertedGroups  int              `json:"unconvertedGroups"`
	MissedGroupRevenue int              `json:"missedGroupRevenue"`
	HoursLost          float64          `json:"hoursLost"`
	HoursLostRounded   int              `json:"hoursLostRounded"`
	OrganizationalCost int              `json:"organizationalCost"`
	Total              int              `json:"total"`
	Scores             CategoryScores   `json:"scores"`
	Chart              []ChartSlice     `json:"chart"`
	Recommendations    []Recommendation `json:"recommendations"`
}

// Progress is the "Question n sur 9" indicator.
type Progress struct {
	Question int `json:"question"`
	Of       int `json:"of"`
	Percent  int `json:"percent"`
}

// SessionSnapshot is the client-facing view of a quiz session.
type SessionSnapshot struct {
	SessionID  string     `json:"sessionId"`
	ScriptID   string     `json:"scriptId"`
	Ordinal    int        `json:"ordinal"`
	Direction  int        `json:"direction"`
	Screen     Screen     `json:"screen"`
	Answers    Answers    `json:"answers"`
	CanProceed bool       `json:"canProceed"`
	Progress   Progress   `json:"progress"`
	Results    *ResultSet `json:"results,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
