package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Account roles and lifecycle states. An account is born pending and only
// becomes a User through approval; there is no path back.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"

	StatusPending  = "pending"
	StatusApproved = "approved"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PinHash   string    `json:"-"` // never expose the hash in JSON
	Mobile    string    `json:"mobile"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

type PendingUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PinHash   string    `json:"-"`
	Mobile    string    `json:"mobile"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("user not found")

var ErrPendingNotFound = errors.New("pending user not found")

// taken across the union of users and pending_users
var ErrEmailTaken = errors.New("email already in use")

type RegisterRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=120"`
	Email  string `json:"email" binding:"required,email"`
	Pin    string `json:"pin" binding:"required,min=4,max=64"`
	Mobile string `json:"mobile" binding:"required,min=3,max=32"`
	Role   string `json:"role" binding:"required,oneof=user agent"`
}

// A factory to build a PendingUser from the incoming DTO. The pin hash is
// computed by the caller so the domain never holds the plain secret.
func NewPendingFromRegisterRequest(req RegisterRequest, pinHash string) PendingUser {
	return PendingUser{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		PinHash:   pinHash,
		Mobile:    req.Mobile,
		Role:      req.Role,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// NewFromPending carries every identity field over unchanged; only status and
// balance are decided at approval time.
func NewFromPending(p PendingUser, balance int64) User {
	return User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		PinHash:   p.PinHash,
		Mobile:    p.Mobile,
		Role:      p.Role,
		Status:    StatusApproved,
		Balance:   balance,
		CreatedAt: p.CreatedAt,
	}
}

// BalancePolicy maps a role to the balance an account starts with on
// approval. Unknown roles get zero.
type BalancePolicy map[string]int64

func (p BalancePolicy) InitialBalance(role string) int64 {
	if amount, ok := p[role]; ok {
		return amount
	}

	return 0
}
