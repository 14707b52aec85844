package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/grainview"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

// Handlers contains the shell API handlers
type Handlers struct {
	shell  *shell.Shell
	logger *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(sh *shell.Shell, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{shell: sh, logger: logger}
}

// Register mounts the view routes on r
func (h *Handlers) Register(r gin.IRouter) {
	views := r.Group("/api/views")
	views.POST("", h.CreateView)
	views.GET("", h.ListViews)
	views.GET("/:id", h.GetView)
	views.DELETE("/:id", h.CloseView)
	views.POST("/:id/open", h.OpenView)
	views.POST("/:id/reveal", h.SetReveal)
	views.POST("/:id/focus", h.FocusView)
	views.PUT("/:id/title", h.SetTitle)
	views.PUT("/:id/frame-title", h.SetFrameTitle)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Grain Shell",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"views":     h.shell.Registry().Stats(),
		"redirects": h.shell.Redirects(),
	})
}

type createViewRequest struct {
	GrainID string `json:"grain_id"`
	Token   string `json:"token"`
	Path    string `json:"path"`
	Query   string `json:"query"`
	Hash    string `json:"hash"`
}

// CreateView creates and registers a closed view for the requesting viewer
func (h *Handlers) CreateView(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	var req createViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateID(req.GrainID, "grain_id", false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateID(req.Token, "token", false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateDeepLink(req.Path, req.Query, req.Hash); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.shell.CreateView(c.Request.Context(), shell.Request{
		GrainID: req.GrainID,
		Token:   req.Token,
		Link:    grainview.DeepLink{Path: req.Path, Query: req.Query, Hash: req.Hash},
		UserID:  viewer,
	})
	switch {
	case errors.Is(err, shell.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, shell.ErrInvalidToken):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("Failed to create view", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create view"})
		return
	}

	c.JSON(http.StatusCreated, view.Snapshot())
}

// ListViews lists the requesting viewer's views
func (h *Handlers) ListViews(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	views := h.shell.Registry().List()
	snapshots := make([]grainview.Snapshot, 0, len(views))
	for _, view := range views {
		if view.UserID() == viewer {
			snapshots = append(snapshots, view.Snapshot())
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"views": snapshots,
		"stats": h.shell.Registry().Stats(),
	})
}

// GetView returns the current state of one view
func (h *Handlers) GetView(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view.Snapshot())
}

// CloseView removes a view and stops watching its session
func (h *Handlers) CloseView(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	success := h.shell.Close(view.ID())

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"view_id": view.ID(),
	})
}

// OpenView starts opening the view's session. The outcome is observed by
// polling the view.
func (h *Handlers) OpenView(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := view.OpenSession(c.Request.Context()); err != nil {
		if errors.Is(err, grainview.ErrUsage) {
			c.JSON(http.StatusConflict, gin.H{
				"error":        err.Error(),
				"interstitial": errors.Is(err, grainview.ErrInterstitialRequired),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, view.Snapshot())
}

type revealRequest struct {
	Reveal *bool `json:"reveal" binding:"required"`
}

// SetReveal records the viewer's reveal/incognito choice
func (h *Handlers) SetReveal(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view.SetRevealIdentity(*req.Reveal)
	c.JSON(http.StatusOK, view.Snapshot())
}

// FocusView brings a view to the foreground
func (h *Handlers) FocusView(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	success := h.shell.Registry().Focus(view.ID())

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"view_id": view.ID(),
	})
}

type titleRequest struct {
	Title string `json:"title"`
}

// SetTitle renames the grain for the viewer
func (h *Handlers) SetTitle(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title, err := utils.SanitizeTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := view.SetTitle(title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to set title", zap.String("view_id", view.ID().String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set title"})
		return
	}

	c.JSON(http.StatusOK, view.Snapshot())
}

type frameTitleRequest struct {
	// Title is the title reported by the app; null clears it
	Title *string `json:"title"`
}

// SetFrameTitle records or clears the title reported by the embedded app
func (h *Handlers) SetFrameTitle(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	var req frameTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == nil {
		view.ClearFrameTitle()
	} else {
		title, err := utils.SanitizeTitle(*req.Title)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		view.SetFrameTitle(title)
	}

	c.JSON(http.StatusOK, view.Snapshot())
}

// viewer returns the authenticated viewer, "" when logged out
func (h *Handlers) viewer(c *gin.Context) (string, bool) {
	viewer := c.GetHeader(middleware.UserIDHeader)
	if err := utils.ValidateID(viewer, "user_id", false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return viewer, true
}

// lookup resolves the :id parameter to a view owned by the requesting
// viewer. Ids of views superseded by a redirect answer 303 with the id of
// the view that replaced them.
func (h *Handlers) lookup(c *gin.Context) (*grainview.View, bool) {
	viewer, ok := h.viewer(c)
	if !ok {
		return nil, false
	}

	viewID, err := id.ParseViewID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	view, redirected, ok := h.shell.Resolve(viewID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return nil, false
	}
	if view.UserID() != viewer {
		c.JSON(http.StatusForbidden, gin.H{"error": "view belongs to another viewer"})
		return nil, false
	}
	if redirected {
		c.Header("Location", "/api/views/"+view.ID().String())
		c.JSON(http.StatusSeeOther, gin.H{"redirect_to": view.ID()})
		return nil, false
	}
	return view, true
}
