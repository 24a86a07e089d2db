// Package history owns all per-session conversation state. A single worker
// goroutine consumes a command channel, so every mutation is serialized
// through one point: callers never touch the session map directly, which
// rules out interleaved updates and torn reads. Writes are best-effort,
// reads are explicit request/response round-trips.
package history

import (
	"context"
	"sync"

	"brother-yield/internal/llm"
	"brother-yield/internal/logger"
)

// DefaultMessageLimit is the sliding-window size used when no limit is
// configured.
const DefaultMessageLimit = 5

const commandBuffer = 100

type command struct {
	kind    commandKind
	session string
	msg     llm.Message
	reply   chan []llm.Message
}

type commandKind int

const (
	cmdAddMessage commandKind = iota
	cmdGetHistory
	cmdCreateSession
	cmdDeleteSession
)

// Manager is the single owner of session_id -> history. All access goes
// through its command channel; the zero value is not usable, call NewManager.
type Manager struct {
	cmds  chan command
	done  chan struct{}
	once  sync.Once
	limit int
}

func NewManager(messageLimit int) *Manager {
	if messageLimit <= 0 {
		messageLimit = DefaultMessageLimit
	}
	m := &Manager{
		cmds:  make(chan command, commandBuffer),
		done:  make(chan struct{}),
		limit: messageLimit,
	}
	go m.run()
	return m
}

// CreateSession ensures an empty history exists for id. Re-creating an
// existing session resets it.
func (m *Manager) CreateSession(id string) {
	m.send(command{kind: cmdCreateSession, session: id})
}

// DeleteSession removes the history for id. No-op if absent.
func (m *Manager) DeleteSession(id string) {
	m.send(command{kind: cmdDeleteSession, session: id})
}

// AddMessage appends msg to the session's history. Missing sessions are a
// soft condition: the write is dropped with a logged warning, never an
// error, so background producers cannot fail the request path.
func (m *Manager) AddMessage(id string, msg llm.Message) {
	m.send(command{kind: cmdAddMessage, session: id, msg: msg})
}

// GetHistory returns a snapshot copy of the session's history, reflecting
// every command enqueued before this call. A missing session yields an
// empty history, not an error.
func (m *Manager) GetHistory(ctx context.Context, id string) ([]llm.Message, error) {
	reply := make(chan []llm.Message, 1)
	select {
	case m.cmds <- command{kind: cmdGetHistory, session: id, reply: reply}:
	case <-m.done:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case h := <-reply:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker after applying every command already enqueued.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Manager) send(cmd command) {
	select {
	case m.cmds <- cmd:
	case <-m.done:
		logger.L().Warnw("conversation store closed, command dropped", "session", cmd.session)
	}
}

func (m *Manager) run() {
	sessions := make(map[string][]llm.Message)
	for {
		select {
		case cmd := <-m.cmds:
			m.apply(sessions, cmd)
		case <-m.done:
			// Drain commands that were enqueued before Close; they must
			// still be applied, abandoned requests included.
			for {
				select {
				case cmd := <-m.cmds:
					m.apply(sessions, cmd)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) apply(sessions map[string][]llm.Message, cmd command) {
	switch cmd.kind {
	case cmdAddMessage:
		h, ok := sessions[cmd.session]
		if !ok {
			logger.L().Warnw("message for non-existent session dropped", "session", cmd.session)
			return
		}
		h = append(h, cmd.msg)
		if len(h) > m.limit {
			// Strict sliding window: evict exactly the oldest entry.
			h = h[1:]
		}
		sessions[cmd.session] = h
	case cmdGetHistory:
		h := sessions[cmd.session]
		snapshot := make([]llm.Message, len(h))
		copy(snapshot, h)
		cmd.reply <- snapshot
	case cmdCreateSession:
		sessions[cmd.session] = nil
	case cmdDeleteSession:
		delete(sessions, cmd.session)
	}
}
