package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wabdevconsult/batuta/domain"
)

func TestLogAuditLogger_LogEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  *domain.AuditEvent
		expect []string
	}{
		{
			name:   "login",
			event:  domain.NewAuditEvent(domain.UserLoginEvent, &domain.User{ID: "u1", Email: "a@batuta.fr", Role: domain.RoleAdmin}),
			expect: []string{"EVENT: USER_LOGIN success=true", "user_id=u1", "email=a@batuta.fr", "role=admin"},
		},
		{
			name:   "failure with metadata",
			event:  domain.NewAuditEvent(domain.UserLoginFailureEvent, nil).WithEmail("x@batuta.fr").WithError(errors.New("Login failed")).WithMetadata("source", "console"),
			expect: []string{"EVENT: USER_LOGIN_FAILED success=false", "email=x@batuta.fr", `error="Login failed"`, "source=console"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &LogAuditLogger{logger: log.New(&buf, "", 0)}

			logger.LogEvent(context.Background(), tt.event)

			for _, want := range tt.expect {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
