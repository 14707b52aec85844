package grainview

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// watch subscribes to the change feed of sessionID. Must be called after the
// session id has been recorded.
func (v *View) watch(ctx context.Context, sessionID string) {
	if v.feed == nil {
		v.logger.Warn("No session feed configured, remote teardown will go unnoticed")
		return
	}

	stop, err := v.feed.Subscribe(ctx, sessionID, func(ev types.SessionEvent) {
		v.handleSessionEvent(sessionID, ev)
	})
	if err != nil {
		v.logger.Warn("Failed to subscribe to session feed",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	v.mu.Lock()
	if v.sessionID != sessionID || v.disposed {
		// Removed (or disposed) before the handle was stored
		v.mu.Unlock()
		stop()
		return
	}
	v.stopFeed = stop
	v.mu.Unlock()
}

func (v *View) handleSessionEvent(sessionID string, ev types.SessionEvent) {
	if ev.SessionID != "" && ev.SessionID != sessionID {
		return
	}

	var stop func()
	v.mu.Lock()
	if v.sessionID != sessionID {
		v.mu.Unlock()
		return
	}
	switch ev.Kind {
	case types.SessionAdded:
		if v.status == StatusOpened {
			v.mu.Unlock()
			return
		}
		v.status = StatusOpened
	case types.SessionRemoved:
		v.sessionID = ""
		v.status = StatusClosed
		stop = v.stopFeed
		v.stopFeed = nil
	default:
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
	if ev.Kind == types.SessionRemoved {
		v.logger.Info("Session removed", zap.String("session_id", sessionID))
		v.metrics.RecordSessionRemoved()
	}
	v.changes.Notify()
}
