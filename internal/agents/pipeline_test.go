package agents

import (
	"context"
	"errors"
	"testing"

	"brother-yield/internal/history"
	"brother-yield/internal/llm"
	"brother-yield/internal/storage"
)

type scriptedClient struct {
	response string
	err      error
	requests [][]llm.Message
}

func (c *scriptedClient) Generate(_ context.Context, messages []llm.Message) (llm.Response, error) {
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)
	c.requests = append(c.requests, copied)
	if c.err != nil {
		return llm.Response{}, c.err
	}
	return llm.Response{Content: c.response}, nil
}

type memRecorder struct {
	turns []storage.Turn
}

func (r *memRecorder) AppendTurn(turn storage.Turn) error {
	r.turns = append(r.turns, turn)
	return nil
}

func (r *memRecorder) LoadTurns() ([]storage.Turn, error) { return r.turns, nil }

func TestHandleTurnEndToEnd(t *testing.T) {
	router := &scriptedClient{response: "brother defiproman hello"}
	specialist := &scriptedClient{response: "Hello Starknet brother!"}
	store := history.NewManager(5)
	defer store.Close()
	rec := &memRecorder{}

	p := NewPipeline(NewNavigator(router), NewSpecialist(specialist), store, rec)

	store.CreateSession("s1")
	reply, err := p.HandleTurn(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if reply != "Hello Starknet brother!" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	// Router runs single-shot on the raw utterance: system preamble plus
	// the user text, no history attached.
	if len(router.requests) != 1 {
		t.Fatalf("expected 1 router call, got %d", len(router.requests))
	}
	routerMsgs := router.requests[0]
	if len(routerMsgs) != 2 {
		t.Fatalf("router must see preamble+prompt only, got %d messages", len(routerMsgs))
	}
	if routerMsgs[1].Role != llm.RoleUser || routerMsgs[1].Content != "hello" {
		t.Fatalf("router prompt: %+v", routerMsgs[1])
	}

	// Specialist sees the refined instruction as its prompt and the
	// recorded user message in its history window.
	if len(specialist.requests) != 1 {
		t.Fatalf("expected 1 specialist call, got %d", len(specialist.requests))
	}
	specMsgs := specialist.requests[0]
	last := specMsgs[len(specMsgs)-1]
	if last.Content != "brother defiproman hello" {
		t.Fatalf("specialist prompt: %+v", last)
	}
	foundUser := false
	for _, m := range specMsgs[:len(specMsgs)-1] {
		if m.Role == llm.RoleUser && m.Content == "hello" {
			foundUser = true
		}
	}
	if !foundUser {
		t.Fatalf("specialist history window missing recorded user message: %+v", specMsgs)
	}

	msgs, err := store.GetHistory(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 recorded messages, got %d", len(msgs))
	}
	if msgs[0].Role != llm.RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != llm.RoleAssistant || msgs[1].Content != "Hello Starknet brother!" {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}

	if len(rec.turns) != 1 || rec.turns[0].SessionID != "s1" || rec.turns[0].AssistantResponse != "Hello Starknet brother!" {
		t.Fatalf("turn not recorded: %+v", rec.turns)
	}
}

func TestHandleTurnNavigatorFailure(t *testing.T) {
	boom := errors.New("completion api down")
	router := &scriptedClient{err: boom}
	specialist := &scriptedClient{response: "unused"}
	store := history.NewManager(5)
	defer store.Close()

	p := NewPipeline(NewNavigator(router), NewSpecialist(specialist), store, nil)
	store.CreateSession("s1")

	_, err := p.HandleTurn(context.Background(), "s1", "hello")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Stage != "navigator" {
		t.Fatalf("unexpected stage: %q", upErr.Stage)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not wrapped: %v", err)
	}

	// The user's utterance stays recorded even when the turn fails.
	msgs, _ := store.GetHistory(context.Background(), "s1")
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("user message should survive the failed turn: %+v", msgs)
	}
	if len(specialist.requests) != 0 {
		t.Fatalf("specialist must not be called after router failure")
	}
}

func TestHandleTurnSpecialistFailure(t *testing.T) {
	router := &scriptedClient{response: "refined"}
	specialist := &scriptedClient{err: errors.New("rate limited")}
	store := history.NewManager(5)
	defer store.Close()

	p := NewPipeline(NewNavigator(router), NewSpecialist(specialist), store, nil)
	store.CreateSession("s1")

	_, err := p.HandleTurn(context.Background(), "s1", "best STRK yields?")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Stage != "specialist" {
		t.Fatalf("unexpected stage: %q", upErr.Stage)
	}

	msgs, _ := store.GetHistory(context.Background(), "s1")
	if len(msgs) != 1 || msgs[0].Role != llm.RoleUser {
		t.Fatalf("expected only the user message recorded: %+v", msgs)
	}
}

func TestSpecialistContextDocs(t *testing.T) {
	router := &scriptedClient{response: "refined"}
	specialist := &scriptedClient{response: "ok"}
	store := history.NewManager(5)
	defer store.Close()

	p := NewPipeline(
		NewNavigator(router),
		NewSpecialist(specialist, "## Latest Twitter Starknet DeFi Insights Context"),
		store, nil,
	)
	store.CreateSession("s1")

	if _, err := p.HandleTurn(context.Background(), "s1", "hi"); err != nil {
		t.Fatalf("handle turn: %v", err)
	}

	specMsgs := specialist.requests[0]
	if len(specMsgs) < 2 || specMsgs[1].Role != llm.RoleSystem {
		t.Fatalf("context doc not injected as system message: %+v", specMsgs)
	}
}
