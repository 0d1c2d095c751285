package protocol

import "time"

// Utterance is a text utterance injected onto the bus in place of a live
// microphone capture (used by krishi-say and remote clients).
type Utterance struct {
	SessionID string    `json:"session_id,omitempty"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the finalized capture output broadcast on the bus.
type Transcript struct {
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// IntentResult carries the classified intent for observers.
type IntentResult struct {
	SessionID    string  `json:"session_id"`
	Kind         string  `json:"kind"`
	Confidence   float64 `json:"confidence"`
	Confirmation string  `json:"confirmation"`
	Financial    bool    `json:"financial"`
}

// SessionEvent announces a state machine transition.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SpeakRequest asks the synthesis side to voice a message.
type SpeakRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Language  string `json:"language"`
	Voice     string `json:"voice,omitempty"`
}

const (
	SubjectUtteranceText   = "voice.utterance.text"
	SubjectTranscriptFinal = "voice.transcript.final"
	SubjectIntentResult    = "intent.result"
	SubjectSessionEvent    = "session.event"
	SubjectSpeechSay       = "speech.say"
)
