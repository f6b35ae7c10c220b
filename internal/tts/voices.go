package tts

import (
	"errors"
	"sort"
)

// ErrVoiceNotConfigured is returned when the API key or the voice mapping is absent.
var ErrVoiceNotConfigured = errors.New("server voice configuration missing")

const (
	VoiceSimon = "simon"
	VoiceLena  = "lena"
)

// Settings is the provider's voice_settings object.
type Settings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

var (
	DefaultSettings = Settings{Stability: 0.55, SimilarityBoost: 0.75, Style: 0.25, UseSpeakerBoost: true}
	// LenaSettings trades expressiveness for a calmer, steadier delivery.
	LenaSettings = Settings{Stability: 0.85, SimilarityBoost: 0.65, Style: 0.05, UseSpeakerBoost: false}
)

// SettingsFor returns the tuning preset of a public voice identifier.
func SettingsFor(voice string) Settings {
	if voice == VoiceLena {
		return LenaSettings
	}
	return DefaultSettings
}

// Catalog maps public voice identifiers to provider voice IDs.
type Catalog struct {
	ids map[string]string
}

func NewCatalog(ids map[string]string) *Catalog {
	c := &Catalog{ids: make(map[string]string, len(ids))}
	for voice, id := range ids {
		if id != "" {
			c.ids[voice] = id
		}
	}
	return c
}

// Resolve returns the provider voice ID and preset for voice.
func (c *Catalog) Resolve(voice string) (string, Settings, error) {
	id, ok := c.ids[voice]
	if !ok {
		return "", Settings{}, ErrVoiceNotConfigured
	}
	return id, SettingsFor(voice), nil
}

// Voices lists the configured public identifiers in order.
func (c *Catalog) Voices() []string {
	out := make([]string, 0, len(c.ids))
	for voice := range c.ids {
		out = append(out, voice)
	}
	sort.Strings(out)
	return out
}
