package shell

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/grainview"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
)

// navigator handles route changes requested by one view and is the
// registry that view removes itself from
type navigator struct {
	shell  *Shell
	userID string
	from   id.ViewID
}

// Go sets up the view for an owned-grain route and opens it. Other routes
// have no server-side view and are only logged.
func (n *navigator) Go(route grainview.Route) {
	logger := n.shell.logger.With(
		zap.String("from_view_id", n.from.String()),
		zap.String("route", route.URL()))

	if route.Name != grainview.RouteGrain {
		n.shell.dropRedirect(n.from)
		logger.Warn("Ignoring navigation to non-grain route")
		return
	}

	ctx := context.Background()
	next, err := n.shell.CreateView(ctx, Request{
		GrainID: route.GrainID,
		Link:    route.Link,
		UserID:  n.userID,
	})
	if err != nil {
		n.shell.dropRedirect(n.from)
		logger.Error("Failed to create view for route", zap.Error(err))
		return
	}
	n.shell.recordRedirect(n.from, next.ID())
	logger.Info("Navigated to owned grain", zap.String("view_id", next.ID().String()))

	if err := next.OpenSession(ctx); err != nil {
		logger.Error("Failed to open redirected view", zap.Error(err))
	}
}

// Remove takes the view out of the registry. The view stays resolvable under
// its own id until Go records where it went.
func (n *navigator) Remove(viewID id.ViewID) bool {
	return n.shell.beginRedirect(viewID)
}
