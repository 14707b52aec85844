package grainview

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Open call kinds, used for logs and metrics
const (
	openByGrain = "grain"
	openByToken = "token"
)

// OpenSession starts opening a session for a closed view. It returns at once;
// the remote call settles on its own goroutine and the outcome is visible
// through Status, Error and Subscribe.
//
// Calling it when the view is not closed, or while a token-based view still
// needs the viewer's reveal/incognito choice, returns an error wrapping
// ErrUsage and changes nothing.
func (v *View) OpenSession(ctx context.Context) error {
	v.mu.Lock()
	if v.status != StatusClosed {
		status := v.status
		v.mu.Unlock()
		return v.usageError(fmt.Errorf("%w: OpenSession called but state was %s", ErrUsage, status))
	}

	q := v.snapshotQuery()
	var req *types.TokenRequest
	if v.token != "" {
		if v.policy.showInterstitial(v.revealIdentity, q) {
			v.mu.Unlock()
			return v.usageError(fmt.Errorf("%w: OpenSession called but %w", ErrUsage, ErrInterstitialRequired))
		}
		req = &types.TokenRequest{
			Token:     v.token,
			Incognito: !v.policy.resolve(v.revealIdentity, q),
		}
	}
	v.status = StatusOpening
	v.mu.Unlock()
	v.changes.Notify()

	ctx = context.WithoutCancel(ctx)
	if req == nil {
		v.logger.Debug("Opening grain session", zap.String("grain_id", q.grainID))
		go v.openGrain(ctx, q.grainID)
	} else {
		v.logger.Debug("Opening token session", zap.Bool("incognito", req.Incognito))
		go v.openToken(ctx, *req)
	}
	return nil
}

func (v *View) openGrain(ctx context.Context, grainID string) {
	start := time.Now()
	outcome, err := v.opener.OpenGrain(ctx, grainID)
	v.settle(ctx, openByGrain, start, outcome, err)
}

func (v *View) openToken(ctx context.Context, req types.TokenRequest) {
	start := time.Now()
	outcome, err := v.opener.OpenToken(ctx, req)
	v.settle(ctx, openByToken, start, outcome, err)
}

// settle applies the result of one open call
func (v *View) settle(ctx context.Context, kind string, start time.Time, outcome types.OpenOutcome, err error) {
	result := "error"
	defer func() {
		v.metrics.RecordOpen(kind, result, time.Since(start))
	}()

	if err != nil {
		v.fail(kind, err)
		return
	}

	switch o := outcome.(type) {
	case types.Opened:
		result = "opened"
		v.applyOpened(ctx, o)
	case types.Redirected:
		if kind != openByToken {
			v.fail(kind, fmt.Errorf("unexpected redirect to grain %s", o.GrainID))
			return
		}
		result = "redirected"
		v.redirect(o)
	default:
		v.fail(kind, fmt.Errorf("unexpected open outcome %T", outcome))
	}
}

func (v *View) fail(kind string, err error) {
	v.mu.Lock()
	v.errorMessage = err.Error()
	v.status = StatusError
	v.mu.Unlock()

	v.logger.Warn("Open session failed", zap.String("kind", kind), zap.Error(err))
	v.changes.Notify()
}

// applyOpened records the live session and then starts watching it. The
// status becomes opened together with the session id, so a removal seen by
// the observer can never be overwritten by this transition.
func (v *View) applyOpened(ctx context.Context, o types.Opened) {
	v.mu.Lock()
	if o.GrainID != "" {
		v.grainID = o.GrainID
	}
	if o.Title != "" {
		v.transientTitle = o.Title
	}
	v.sessionID = o.SessionID
	v.errorMessage = ""
	v.status = StatusOpened
	v.mu.Unlock()

	v.logger.Info("Session opened",
		zap.String("grain_id", o.GrainID),
		zap.String("session_id", o.SessionID))
	v.changes.Notify()

	v.watch(ctx, o.SessionID)
}

// redirect hands the view over to the owned-grain route. The view leaves the
// registry and is superseded by whatever view that route sets up; its own
// status is left alone.
func (v *View) redirect(o types.Redirected) {
	v.mu.Lock()
	v.grainID = o.GrainID
	v.mu.Unlock()
	v.changes.Notify()

	if v.registry != nil {
		v.registry.Remove(v.id)
	}

	route := Route{Name: RouteGrain, GrainID: o.GrainID, Link: v.link}
	v.logger.Info("Token redirects to owned grain", zap.String("route", route.URL()))
	v.metrics.RecordRedirect()
	if v.navigator != nil {
		v.navigator.Go(route)
	}
}

func (v *View) usageError(err error) error {
	v.logger.Error("GrainView usage error", zap.Error(err))
	v.metrics.RecordUsageError()
	return err
}
