package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farhan-labs/mobicash/internal/domain/cashin"
	"github.com/farhan-labs/mobicash/internal/http/handlers"
)

type fakeCashInRepo struct {
	createFn func(ctx context.Context, req cashin.CreateRequest) (cashin.Request, error)

	created *cashin.CreateRequest
}

func (f *fakeCashInRepo) Create(ctx context.Context, req cashin.CreateRequest) (cashin.Request, error) {
	f.created = &req
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return cashin.NewFromCreateRequest(req), nil
}

type fakeAgentChecker struct {
	isAgent bool
	err     error
}

func (f *fakeAgentChecker) IsApprovedAgent(ctx context.Context, id string) (bool, error) {
	return f.isAgent, f.err
}

func cashInRouter(h *handlers.CashInHandler) http.Handler {
	return authedRouter(&fakeVerifier{claims: claimsFor("user-1")}, http.MethodPost, "/cash-in-request", h.Create)
}

func postCashIn(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/cash-in-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer whatever")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestCashInHandler_Strict(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		agents         *fakeAgentChecker
		wantStatusCode int
		wantCode       string
	}{
		{
			name:           "success",
			body:           `{"userId":"user-1","agentId":"agent-1","amount":500}`,
			agents:         &fakeAgentChecker{isAgent: true},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "negative_amount",
			body:           `{"userId":"user-1","agentId":"agent-1","amount":-5}`,
			agents:         &fakeAgentChecker{isAgent: true},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_agent",
			body:           `{"userId":"user-1","agentId":"not-an-agent","amount":500}`,
			agents:         &fakeAgentChecker{isAgent: false},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_agent",
		},
		{
			name:           "agent_check_error",
			body:           `{"userId":"user-1","agentId":"agent-1","amount":500}`,
			agents:         &fakeAgentChecker{err: errors.New("db error")},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "missing_agent_id",
			body:           `{"userId":"user-1","amount":500}`,
			agents:         &fakeAgentChecker{isAgent: true},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCashInRepo{}
			h := handlers.NewCashInHandler(repo, tt.agents, true, discardLogger())

			w := postCashIn(cashInRouter(h), tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" && !strings.Contains(w.Body.String(), tt.wantCode) {
				t.Fatalf("body missing code %q: %s", tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestCashInHandler_UserIDComesFromToken(t *testing.T) {
	repo := &fakeCashInRepo{}
	h := handlers.NewCashInHandler(repo, &fakeAgentChecker{isAgent: true}, true, discardLogger())

	// the body claims a different user; the token wins
	w := postCashIn(cashInRouter(h), `{"userId":"someone-else","agentId":"agent-1","amount":500}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if repo.created == nil {
		t.Fatalf("repo never called")
	}
	if repo.created.UserID != "user-1" {
		t.Errorf("stored userId = %q, want user-1", repo.created.UserID)
	}

	var resp cashin.Request
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("response userId = %q, want user-1", resp.UserID)
	}
	if resp.Status != cashin.StatusPending {
		t.Errorf("status = %q, want %q", resp.Status, cashin.StatusPending)
	}
}

func TestCashInHandler_Permissive(t *testing.T) {
	// with strict mode off the legacy behavior stands: no agent validation,
	// any amount the wire format accepts
	repo := &fakeCashInRepo{}
	h := handlers.NewCashInHandler(repo, &fakeAgentChecker{isAgent: false}, false, discardLogger())

	w := postCashIn(cashInRouter(h), `{"userId":"user-1","agentId":"ghost","amount":-42}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCashInHandler_RepoError(t *testing.T) {
	repo := &fakeCashInRepo{
		createFn: func(ctx context.Context, req cashin.CreateRequest) (cashin.Request, error) {
			return cashin.Request{}, errors.New("db error")
		},
	}
	h := handlers.NewCashInHandler(repo, &fakeAgentChecker{isAgent: true}, true, discardLogger())

	w := postCashIn(cashInRouter(h), `{"userId":"user-1","agentId":"agent-1","amount":500}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}
