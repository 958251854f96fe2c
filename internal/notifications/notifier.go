package notifications

import "context"

type SendAccountApprovedInput struct {
	UserID  string
	Email   string
	Name    string
	Role    string
	Balance int64
}

type Notifier interface {
	SendAccountApproved(ctx context.Context, input SendAccountApprovedInput) error
}
