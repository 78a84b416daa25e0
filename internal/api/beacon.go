package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/chatweb/internal/models"
)

// DefaultBeaconTimeout bounds a single detached save
const DefaultBeaconTimeout = 5 * time.Second

// Beacon delivers draft saves that must not block the caller.
// Sends outlive the UI; Drain waits for them at process exit.
type Beacon struct {
	backend Backend
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewBeacon creates a Beacon that saves through backend
func NewBeacon(backend Backend, logger *zap.Logger) *Beacon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Beacon{
		backend: backend,
		logger:  logger,
		timeout: DefaultBeaconTimeout,
	}
}

// Send starts a detached save-session request without a summary.
// The messages are copied before Send returns.
func (b *Beacon) Send(userID models.UserID, messages []models.Message) {
	snapshot := models.CloneMessages(messages)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		id, err := b.backend.SaveSession(ctx, userID, snapshot, false)
		if err != nil {
			b.logger.Warn("draft save failed",
				zap.Stringer("user_id", userID),
				zap.Int("messages", len(snapshot)),
				zap.Error(err))
			return
		}
		b.logger.Debug("draft saved",
			zap.Stringer("user_id", userID),
			zap.Int64("session_id", id))
	}()
}

// Drain waits up to timeout for pending sends; it reports whether all finished
func (b *Beacon) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
