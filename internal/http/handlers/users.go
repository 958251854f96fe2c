package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farhan-labs/mobicash/internal/cache"
	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/farhan-labs/mobicash/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	ListAgents(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	users UsersStore
	cache *cache.Cache
	log   *slog.Logger
}

const agentsCacheKey = "users.agents"

func NewUsersHandler(users UsersStore, c *cache.Cache, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		users: users,
		cache: c,
		log:   log,
	}
}

// Profile echoes the decoded token payload exactly; no database read, so
// callers see the identity as captured at issuance.
func (h *UsersHandler) Profile(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok || claims == nil {
		RespondUnAuthorized(ctx, "unauthenticated", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":  claims.UserID,
		"iat": claims.IssuedAt.Unix(),
		"exp": claims.ExpiresAt.Unix(),
	})
}

// GetUser is the fresh counterpart to Profile: it reads the current record
// for the token's user id and 404s if the account no longer exists.
func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "User not found")
			return
		}

		h.log.Error("user lookup failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// ListAgents serves the agent directory through a short TTL cache plus ETag
// revalidation; the listing changes only on approvals.
func (h *UsersHandler) ListAgents(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(agentsCacheKey); ok {
			if agents, ok := cached.([]user.User); ok {
				RespondJSONWithETag(ctx, http.StatusOK, agents)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	agents, err := h.users.ListAgents(cctx)

	if err != nil {
		h.log.Error("agents list failed", "err", err)
		RespondInternal(ctx, "Could not list agents")
		return
	}

	if h.cache != nil {
		h.cache.Set(agentsCacheKey, agents)
	}

	RespondJSONWithETag(ctx, http.StatusOK, agents)
}
