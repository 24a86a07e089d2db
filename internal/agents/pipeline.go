// Package agents chains the Navigator (router) and DefiProMan (specialist)
// completions around the conversation store.
package agents

import (
	"context"
	"fmt"
	"time"

	"brother-yield/internal/history"
	"brother-yield/internal/llm"
	"brother-yield/internal/logger"
	"brother-yield/internal/storage"
)

const navigatorPreamble = "You are a navigator in the Brother Yield project, made for assisting the user with DeFi strategy optimization on Starknet. " +
	"You are the mastermind with all the tools. Use them wisely to meet the user's expectations. " +
	"Do not answer requests unrelated to Starknet or DeFi strategies on Starknet under ANY circumstance. " +
	"Your role is to refine the user's request into a short, precise instruction for the expert agent 'DEFIPROMAN'. " +
	"Reply with the refined instruction only, under 2 lines."

func specialistPreamble(now time.Time) string {
	return fmt.Sprintf("You are 'DEFIPROMAN', you are here to help the user. "+
		"Use your knowledge of various Starknet DeFi protocols. "+
		"When you see portfolio information in the chat history (marked as system messages), actively incorporate it into your responses when relevant. "+
		"ALWAYS acknowledge and reference the user's token holdings when discussing their portfolio or related topics. "+
		"You do NOT need to fetch the same wallet address twice. "+
		"Keep your answers short, concise and user-friendly. "+
		"Always call the user 'Starknet brother' like a true Starknet DeFi strategy expert and answer with SPECIFIC strategies. "+
		"You MUST keep your answers under 3 lines. "+
		"IMPORTANT: do not use outdated info (date now %s), and do not talk about anything other than DeFi strategies on Starknet under ANY circumstance, "+
		"EXCEPT if the user is just saying hello; be polite, no advice needed in that case.",
		now.Format("2006-01-02"))
}

// UpstreamError is a completion-collaborator failure. Stage names which
// agent failed.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Agent is one configured completion instance: a name, a client and a
// system preamble plus optional context documents.
type Agent struct {
	name        string
	client      llm.Client
	preamble    func() string
	contextDocs []string
}

func NewAgent(name string, client llm.Client, preamble func() string, contextDocs ...string) *Agent {
	return &Agent{name: name, client: client, preamble: preamble, contextDocs: contextDocs}
}

func (a *Agent) complete(ctx context.Context, prompt string, hist []llm.Message) (string, error) {
	msgs := make([]llm.Message, 0, len(hist)+len(a.contextDocs)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: a.preamble()})
	for _, doc := range a.contextDocs {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: doc})
	}
	msgs = append(msgs, hist...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})

	resp, err := a.client.Generate(ctx, msgs)
	if err != nil {
		return "", &UpstreamError{Stage: a.name, Err: err}
	}
	return resp.Content, nil
}

// Pipeline runs one user turn through both agents, reading and writing the
// conversation store around the completion calls.
type Pipeline struct {
	navigator  *Agent
	specialist *Agent
	store      *history.Manager
	recorder   storage.Recorder
}

// NewPipeline wires a router and a specialist around the store. recorder
// may be nil; turn recording is a diagnostic side channel.
func NewPipeline(navigator, specialist *Agent, store *history.Manager, recorder storage.Recorder) *Pipeline {
	return &Pipeline{
		navigator:  navigator,
		specialist: specialist,
		store:      store,
		recorder:   recorder,
	}
}

// NewNavigator builds the router agent.
func NewNavigator(client llm.Client) *Agent {
	return NewAgent("navigator", client, func() string { return navigatorPreamble })
}

// NewSpecialist builds the DefiProMan agent. contextDocs carry knowledge
// injected into every completion (protocol notes, Twitter insights).
func NewSpecialist(client llm.Client, contextDocs ...string) *Agent {
	return NewAgent("specialist", client, func() string { return specialistPreamble(time.Now()) }, contextDocs...)
}

// HandleTurn records the user's utterance, routes it through the navigator
// (single-shot, no history), completes it with the specialist over the
// bounded history window and records the reply.
//
// The two history writes are fire-and-forget: a failed completion still
// leaves the user's message recorded, which keeps conversational
// continuity for retries.
func (p *Pipeline) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	p.store.AddMessage(sessionID, llm.Message{Role: llm.RoleUser, Content: userText})

	refined, err := p.navigator.complete(ctx, userText, nil)
	if err != nil {
		return "", err
	}
	logger.L().Debugw("navigator refined prompt", "session", sessionID, "refined", refined)

	hist, err := p.store.GetHistory(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("read history for %s: %w", sessionID, err)
	}

	reply, err := p.specialist.complete(ctx, refined, hist)
	if err != nil {
		return "", err
	}

	p.store.AddMessage(sessionID, llm.Message{Role: llm.RoleAssistant, Content: reply})

	if p.recorder != nil {
		if err := p.recorder.AppendTurn(storage.Turn{
			Timestamp:         time.Now().UTC(),
			SessionID:         sessionID,
			UserMessage:       userText,
			AssistantResponse: reply,
		}); err != nil {
			logger.L().Warnw("failed to record turn", "session", sessionID, "err", err)
		}
	}

	return reply, nil
}
