package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farhan-labs/mobicash/internal/auth"
	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/farhan-labs/mobicash/internal/notifications"
	"github.com/farhan-labs/mobicash/internal/security"
	"github.com/gin-gonic/gin"
)

// Small interfaces over the repos so tests can fake them.

type PendingUsersStore interface {
	Create(ctx context.Context, p user.PendingUser) error
	List(ctx context.Context) ([]user.PendingUser, error)
	Approve(ctx context.Context, pendingID string, policy user.BalancePolicy) (user.User, error)
	Delete(ctx context.Context, pendingID string) error
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type IdentityHandler struct {
	pending  PendingUsersStore
	users    UserReader
	jwt      *auth.Manager
	policy   user.BalancePolicy
	notifier notifications.Notifier
	log      *slog.Logger
}

func NewIdentityHandler(
	pending PendingUsersStore,
	users UserReader,
	jwtManager *auth.Manager,
	policy user.BalancePolicy,
	notifier notifications.Notifier,
	log *slog.Logger,
) *IdentityHandler {
	return &IdentityHandler{
		pending:  pending,
		users:    users,
		jwt:      jwtManager,
		policy:   policy,
		notifier: notifier,
		log:      log,
	}
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Pin   string `json:"pin" binding:"required"`
}

type ApproveRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Register stores a pending account. No token is issued: the account is not
// usable until an administrator approves it.
func (h *IdentityHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPin(req.Pin)

	if err != nil {
		h.log.Error("pin hashing failed", "err", err)
		RespondInternal(ctx, "Could not register")
		return
	}

	p := user.NewPendingFromRegisterRequest(req, hash)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.pending.Create(cctx, p)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			// the wire contract keeps duplicate email as a 400
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
			return
		}

		h.log.Error("pending user create failed", "err", err)
		RespondInternal(ctx, "Could not register")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "Registration received, pending approval",
		"pendingUser": p,
	})
}

// ListPending returns all registrations awaiting approval, storage order.
func (h *IdentityHandler) ListPending(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	pending, err := h.pending.List(cctx)

	if err != nil {
		h.log.Error("pending users list failed", "err", err)
		RespondInternal(ctx, "Could not list pending users")
		return
	}

	ctx.JSON(http.StatusOK, pending)
}

// ApproveUser promotes a pending registration to an approved account with
// its role's initial balance.
func (h *IdentityHandler) ApproveUser(ctx *gin.Context) {
	var req ApproveRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	approved, err := h.pending.Approve(cctx, req.UserID, h.policy)

	if err != nil {
		if errors.Is(err, user.ErrPendingNotFound) {
			RespondNotFound(ctx, "pending_not_found", "Pending user not found")
			return
		}

		h.log.Error("approval failed", "pending_id", req.UserID, "err", err)
		RespondInternal(ctx, "Could not approve user")
		return
	}

	// best effort; approval already committed
	if h.notifier != nil {
		if nerr := h.notifier.SendAccountApproved(ctx.Request.Context(), notifications.SendAccountApprovedInput{
			UserID:  approved.ID,
			Email:   approved.Email,
			Name:    approved.Name,
			Role:    approved.Role,
			Balance: approved.Balance,
		}); nerr != nil {
			h.log.Warn("approval notification failed", "user_id", approved.ID, "err", nerr)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User approved",
		"user":    approved,
	})
}

// DeletePending rejects a registration without promoting it.
func (h *IdentityHandler) DeletePending(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.pending.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrPendingNotFound) {
			RespondNotFound(ctx, "pending_not_found", "Pending user not found")
			return
		}

		h.log.Error("pending user delete failed", "pending_id", id, "err", err)
		RespondInternal(ctx, "Could not delete pending user")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Login checks credentials against the approved set only. An unknown email
// is 404 and a bad pin is 401; the two cases are deliberately distinct.
func (h *IdentityHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "User not found")
			return
		}

		h.log.Error("login lookup failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPin(foundUser.PinHash, req.Pin)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := h.jwt.Issue(foundUser.ID)

	if err != nil {
		h.log.Error("token issue failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	// the User JSON never carries the pin hash
	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  foundUser,
	})
}
