package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"mutevote/internal/config"
	"mutevote/internal/domain"
	"mutevote/internal/registry"
)

// mockVoteService implements domain.VoteService for handler tests.
type mockVoteService struct {
	ProposeFn func(ctx context.Context, req domain.ProposeRequest) (string, error)
	CancelFn  func(voteID string) bool
}

func (m *mockVoteService) Propose(ctx context.Context, req domain.ProposeRequest) (string, error) {
	if m.ProposeFn != nil {
		return m.ProposeFn(ctx, req)
	}
	return "vote-1", nil
}

func (m *mockVoteService) Cancel(voteID string) bool {
	if m.CancelFn != nil {
		return m.CancelFn(voteID)
	}
	return false
}

// mockBackend implements backendPinger.
type mockBackend struct {
	PingFn func(ctx context.Context) error
}

func (m *mockBackend) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func newTestServer(t *testing.T, votes domain.VoteService, backend backendPinger) (*Server, *registry.Registry) {
	t.Helper()

	cfg := &config.Config{
		Port:         "8080",
		OneBotAPIURL: "http://127.0.0.1:3000",
	}
	store := registry.New()
	if votes == nil {
		votes = &mockVoteService{}
	}
	if backend == nil {
		backend = &mockBackend{}
	}
	return NewServer(cfg, votes, store, backend), store
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
