package cashin

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Request statuses. Settlement (approve/reject by the agent) happens in a
// separate flow; this service only ever creates pending requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Request struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AgentID   string    `json:"agentId"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("cash-in request not found")

// agentId does not reference an approved agent account
var ErrInvalidAgent = errors.New("invalid agent")

// Amount deliberately has no min binding: the positivity check is a strict
// mode concern decided in the handler, not a wire-format rule.
type CreateRequest struct {
	UserID  string `json:"userId" binding:"required"`
	AgentID string `json:"agentId" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

func NewFromCreateRequest(req CreateRequest) Request {
	return Request{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		AgentID:   req.AgentID,
		Amount:    req.Amount,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
