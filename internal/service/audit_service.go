package service

import (
	"context"
	"log/slog"
	"time"

	"go-shop-api/internal/model"
	"go-shop-api/internal/reqctx"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) (model.AuditPage, error)
}

type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log records an action best-effort; a store failure is logged, never
// returned. A nil service records nothing.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Error:      errText,
	}

	// The entry is written even when the request context is already done.
	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit log write failed", "action", action, "error", err)
	}
}

// Record logs action for the caller in ctx, deriving status from err.
func (s *AuditService) Record(ctx context.Context, action string, resource string, err error) {
	status, errText := model.AuditStatusSuccess, ""
	if err != nil {
		status, errText = model.AuditStatusFailure, err.Error()
	}
	s.Log(ctx, action, reqctx.Actor(ctx), status, resource, errText)
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) (model.AuditPage, error) {
	return s.store.Query(ctx, query)
}
