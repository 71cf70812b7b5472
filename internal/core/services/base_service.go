package services

import (
	"context"
	"log/slog"

	"github.com/dranzd/storebunk-accounting/internal/middleware"
	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// DefaultTenant is used when the request context carries no tenant.
	DefaultTenant string
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// TenantID returns the tenant the request acts for.
func (s *BaseService) TenantID(ctx context.Context) string {
	fallback := s.DefaultTenant
	if fallback == "" {
		fallback = requestctx.DefaultTenant
	}
	return requestctx.TenantIDOrDefault(ctx, fallback)
}
