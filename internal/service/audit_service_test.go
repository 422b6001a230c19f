package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-shop-api/internal/model"
	"go-shop-api/internal/reqctx"
)

func TestAuditService_RecordUsesRequestActor(t *testing.T) {
	t.Parallel()

	store := new(MockAuditStore)
	svc := NewAuditService(store)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx := reqctx.WithClientIP(context.Background(), "10.0.0.1")
	ctx = reqctx.WithIdentity(ctx, model.Identity{UserID: 5, Email: "admin@x.com", Roles: []string{"admin"}})

	store.On("Log", mock.Anything, model.AuditEntry{
		Action:     "user.delete",
		OccurredAt: fixed,
		Actor:      model.AuditActor{UserID: 5, Email: "admin@x.com", IP: "10.0.0.1"},
		Status:     model.AuditStatusFailure,
		Resource:   "9",
		Error:      "boom",
	}).Return(nil)

	svc.Record(ctx, "user.delete", "9", errors.New("boom"))
	store.AssertExpectations(t)
}

func TestAuditService_LogSwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	store := new(MockAuditStore)
	store.On("Log", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewAuditService(store)
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), "auth.login", model.AuditActor{}, model.AuditStatusSuccess, "", "")
	})

	var nilSvc *AuditService
	assert.NotPanics(t, func() {
		nilSvc.Record(context.Background(), "auth.login", "", nil)
	})
}

func TestAuditService_LogSurvivesCancelledContext(t *testing.T) {
	t.Parallel()

	store := &memAuditStore{}
	svc := NewAuditService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Record(ctx, "auth.login", "a@x.com", nil)

	page, err := svc.Query(context.Background(), model.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a@x.com", page.Items[0].Resource)
}
