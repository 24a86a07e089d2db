package storage

import "time"

// Turn is one completed user/assistant exchange. Turns are appended in
// chronological order; recording is diagnostic and never on the error path
// of a request.
type Turn struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
}

// Recorder abstracts persistence of completed turns. Implementations can be
// file-based, database, etc. LoadTurns returns turns in chronological
// order. Implementations must be safe for concurrent use.
type Recorder interface {
	AppendTurn(turn Turn) error
	LoadTurns() ([]Turn, error)
}
