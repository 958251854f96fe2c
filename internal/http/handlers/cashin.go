package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/cashin"
	"github.com/farhan-labs/mobicash/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CashInCreator interface {
	Create(ctx context.Context, req cashin.CreateRequest) (cashin.Request, error)
}

type AgentChecker interface {
	IsApprovedAgent(ctx context.Context, id string) (bool, error)
}

type CashInHandler struct {
	repo   CashInCreator
	agents AgentChecker
	strict bool
	log    *slog.Logger
}

func NewCashInHandler(repo CashInCreator, agents AgentChecker, strict bool, log *slog.Logger) *CashInHandler {
	return &CashInHandler{
		repo:   repo,
		agents: agents,
		strict: strict,
		log:    log,
	}
}

// Create stores a pending cash-in request. The authenticated identity is the
// source of truth for userId regardless of what the body claims. Strict mode
// additionally requires a positive amount and a real approved agent; turning
// it off restores the historically permissive behavior.
func (h *CashInHandler) Create(ctx *gin.Context) {
	var req cashin.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Missing identity context")
		return
	}

	req.UserID = userID

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if h.strict {
		if req.Amount <= 0 {
			RespondBadRequest(ctx, "Amount must be positive", gin.H{"field": "amount"})
			return
		}

		isAgent, err := h.agents.IsApprovedAgent(cctx, req.AgentID)

		if err != nil {
			h.log.Error("agent check failed", "agent_id", req.AgentID, "err", err)
			RespondInternal(ctx, "Could not create cash-in request")
			return
		}

		if !isAgent {
			RespondError(ctx, http.StatusBadRequest, "invalid_agent", "agentId must reference an approved agent", nil)
			return
		}
	}

	cr, err := h.repo.Create(cctx, req)

	if err != nil {
		h.log.Error("cash-in create failed", "err", err)
		RespondInternal(ctx, "Could not create cash-in request")
		return
	}

	ctx.JSON(http.StatusCreated, cr)
}
