package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier is the only delivery mechanism in this deployment; it stands in
// for an email/SMS provider and keeps the approval flow observable.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendAccountApproved(ctx context.Context, in SendAccountApprovedInput) error {
	n.log.InfoContext(ctx, "account_approved_notification",
		"user_id", in.UserID,
		"email", in.Email,
		"role", in.Role,
		"balance", in.Balance,
	)
	return nil
}
