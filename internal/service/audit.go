package service

import (
	"log/slog"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
)

// AuditObserver logs identity transitions. The secret never reaches it.
func AuditObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth_audit")
	return func(prev, next domainauth.SessionState) {
		switch {
		case !prev.Initialized && next.Initialized:
			if next.Identity != nil {
				logger.Debug("session restored", "username", next.Identity.Username, "role", next.Identity.Role)
			}
		case next.Identity != nil:
			attrs := []any{"username", next.Identity.Username, "role", next.Identity.Role}
			if prev.Identity != nil {
				attrs = append(attrs, "previous_username", prev.Identity.Username)
			}
			logger.Info("signed in", attrs...)
		case prev.Identity != nil:
			logger.Info("signed out", "username", prev.Identity.Username)
		}
	}
}
