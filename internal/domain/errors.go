package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist or was closed.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrScriptNotFound indicates the quiz script could not be loaded.
	ErrScriptNotFound = errors.New("quiz script not found")
	// ErrInvalidScript indicates a loaded script breaks the ordinal/terminal layout.
	ErrInvalidScript = errors.New("invalid quiz script")
	// ErrScreenNotFound indicates an ordinal outside the script.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrWrongScreenKind is returned when an answer does not match the screen kind.
	ErrWrongScreenKind = errors.New("answer does not match screen kind")
	// ErrInvalidOption indicates a label that is not one of the screen's options.
	ErrInvalidOption = errors.New("option not found")
	// ErrPlaybackInFlight is returned when a play request arrives while audio is still loading.
	ErrPlaybackInFlight = errors.New("playback already loading")
	// ErrScriptTextMissing indicates no demo script exists for the requested voice.
	ErrScriptTextMissing = errors.New("no script for voice")
	// ErrEmptyAudio indicates the relay answered 200 with an empty body.
	ErrEmptyAudio = errors.New("empty audio response")
)
