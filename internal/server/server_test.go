package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brother-yield/internal/portfolio"
	"brother-yield/internal/starknet"
	"brother-yield/internal/yields"
)

type fakePipeline struct {
	reply string
	err   error
	calls []string
}

func (f *fakePipeline) HandleTurn(_ context.Context, sessionID, userText string) (string, error) {
	f.calls = append(f.calls, sessionID+"|"+userText)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRecorder struct {
	ack string
	err error
}

func (f *fakeRecorder) FetchAndRecord(_ context.Context, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.ack, nil
}

type fakeSessions struct {
	created []string
	deleted []string
}

func (f *fakeSessions) CreateSession(id string) { f.created = append(f.created, id) }
func (f *fakeSessions) DeleteSession(id string) { f.deleted = append(f.deleted, id) }

type fakeYields struct {
	snap yields.Snapshot
}

func (f *fakeYields) Get() yields.Snapshot { return f.snap }

func newTestServer(p *fakePipeline, r *fakeRecorder, s *fakeSessions, y *fakeYields) *Server {
	if p == nil {
		p = &fakePipeline{}
	}
	if r == nil {
		r = &fakeRecorder{}
	}
	if s == nil {
		s = &fakeSessions{}
	}
	if y == nil {
		y = &fakeYields{}
	}
	return New("127.0.0.1:0", p, r, s, y)
}

func TestCreateSession(t *testing.T) {
	sessions := &fakeSessions{}
	srv := newTestServer(nil, nil, sessions, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, resp.SessionID, sessions.created[0])
}

func TestDeleteSession(t *testing.T) {
	sessions := &fakeSessions{}
	srv := newTestServer(nil, nil, sessions, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/session/abc-123", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc-123"}, sessions.deleted)
}

func TestChatSuccess(t *testing.T) {
	pipeline := &fakePipeline{reply: "Hello Starknet brother!"}
	srv := newTestServer(pipeline, nil, nil, nil)

	body := strings.NewReader(`{"session_id":"s1","prompt":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp agentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Hello Starknet brother!", resp.AgentResponse)
	assert.Equal(t, []string{"s1|hello"}, pipeline.calls)
}

func TestChatMissingFields(t *testing.T) {
	pipeline := &fakePipeline{reply: "unused"}
	srv := newTestServer(pipeline, nil, nil, nil)

	body := strings.NewReader(`{"session_id":"s1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pipeline.calls)
}

func TestChatPipelineFailure(t *testing.T) {
	pipeline := &fakePipeline{err: errors.New("completion api down")}
	srv := newTestServer(pipeline, nil, nil, nil)

	body := strings.NewReader(`{"session_id":"s1","prompt":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp agentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, resp.AgentResponse)
}

func TestPortfolioValidationErrorIs400(t *testing.T) {
	recorder := &fakeRecorder{err: &portfolio.ValidationError{Field: "wallet_address", Reason: "must be a 0x-prefixed hex address"}}
	srv := newTestServer(nil, recorder, nil, nil)

	body := strings.NewReader(`{"session_id":"s1","wallet_address":"bogus"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioUpstreamErrorIs500(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("rpc unreachable")}
	srv := newTestServer(nil, recorder, nil, nil)

	body := strings.NewReader(`{"session_id":"s1","wallet_address":"0xabc"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPortfolioSuccess(t *testing.T) {
	recorder := &fakeRecorder{ack: "I've recorded your portfolio data."}
	srv := newTestServer(nil, recorder, nil, nil)

	body := strings.NewReader(`{"session_id":"s1","wallet_address":"0xabc"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp agentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "I've recorded your portfolio data.", resp.AgentResponse)
}

func TestYieldsSnapshot(t *testing.T) {
	y := &fakeYields{snap: yields.Snapshot{
		Yields: []yields.ProtocolYield{{
			Token:     starknet.Token{Name: "STRK", ContractAddress: starknet.AddressSTRK},
			APY:       12.5,
			RiskScore: 28.0,
			PoolType:  yields.PoolStable,
		}},
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(nil, nil, nil, y)

	req := httptest.NewRequest(http.MethodGet, "/api/yields", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"STRK"`)
	assert.Contains(t, rec.Body.String(), `"pool_type":"Stable"`)
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
