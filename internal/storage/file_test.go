package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorderAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")
	r, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	first := Turn{
		Timestamp:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		SessionID:         "s1",
		UserMessage:       "hello",
		AssistantResponse: "Hello Starknet brother!",
	}
	second := Turn{
		Timestamp:         first.Timestamp.Add(time.Minute),
		SessionID:         "s2",
		UserMessage:       "yields?",
		AssistantResponse: "STRK/USDC looks good.",
	}

	if err := r.AppendTurn(first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := r.AppendTurn(second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	turns, err := r.LoadTurns()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0] != first || turns[1] != second {
		t.Fatalf("turns differ: %+v %+v", turns[0], turns[1])
	}
}

func TestFileRecorderLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")
	r, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	turns, err := r.LoadTurns()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}
