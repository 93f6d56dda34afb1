package service

import (
	"context"
	"fmt"
	"time"

	"storefront-payments/internal/core/ports"
	"storefront-payments/pkg/apperror"
)

// SessionServiceImpl counts storefront sessions seen within a sliding window.
type SessionServiceImpl struct {
	store  ports.SessionStore
	window time.Duration
	now    func() time.Time
}

// NewSessionService creates a new SessionServiceImpl.
func NewSessionService(store ports.SessionStore, window time.Duration) *SessionServiceImpl {
	return &SessionServiceImpl{store: store, window: window, now: time.Now}
}

// Ping marks sessionID as active and returns the current count.
func (s *SessionServiceImpl) Ping(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, apperror.Validation("session_id is required")
	}
	if err := s.store.Touch(ctx, sessionID, s.now()); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("touch session: %w", err))
	}
	return s.Active(ctx)
}

// Active returns how many sessions pinged within the window.
func (s *SessionServiceImpl) Active(ctx context.Context) (int64, error) {
	n, err := s.store.CountSince(ctx, s.now().Add(-s.window))
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("count sessions: %w", err))
	}
	return n, nil
}
