package storage

import "time"

// Event is one recorded chat turn: the visitor's message paired with
// the bot's reply. Events are appended in chronological order.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	ChatID       int64     `json:"chat_id"`
	SessionID    string    `json:"session_id"`
	UserMessage  string    `json:"user_message"`
	BotResponse  string    `json:"bot_response"`
	NoveltyScore *float64  `json:"novelty_score,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// Implementations must be safe for concurrent use; LoadInteractions
// returns events in chronological order.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
