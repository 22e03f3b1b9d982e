package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/wabdevconsult/batuta/domain"
)

// LogAuditLogger writes audit events as key=value lines on the standard logger
type LogAuditLogger struct {
	logger *log.Logger
}

// NewLogAuditLogger logs through the default standard logger
func NewLogAuditLogger() *LogAuditLogger {
	return &LogAuditLogger{logger: log.Default()}
}

// LogEvent implements domain.AuditLogger
func (l *LogAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	l.logger.Print(formatEvent(event))
}

func formatEvent(e *domain.AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EVENT: %s success=%t", e.EventType, e.Success)
	if e.UserID != "" {
		fmt.Fprintf(&b, " user_id=%s", e.UserID)
	}
	if e.Email != "" {
		fmt.Fprintf(&b, " email=%s", e.Email)
	}
	if e.Role != "" {
		fmt.Fprintf(&b, " role=%s", e.Role)
	}
	if e.ErrorMsg != "" {
		fmt.Fprintf(&b, " error=%q", e.ErrorMsg)
	}

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Metadata[k])
	}
	return b.String()
}

var _ domain.AuditLogger = (*LogAuditLogger)(nil)
