package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
)

// Handler wires the HTTP transport to the nowcast service.
type Handler struct {
	nowcastSvc nowcast.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(nowcastSvc nowcast.Service, logger *slog.Logger) *Handler {
	return &Handler{
		nowcastSvc: nowcastSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Nowcast returns the latest normalized forecast.
func (h *Handler) Nowcast(c *gin.Context) {
	resp, err := h.nowcastSvc.Latest(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, "nowcast_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RainSoon evaluates the rain-soon signal, optionally with query overrides.
func (h *Handler) RainSoon(c *gin.Context) {
	var req nowcast.RainSoonRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.nowcastSvc.RainSoon(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, "rain_soon_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status reports the health of the forecast source.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.nowcastSvc.Status(c.Request.Context()))
}

// Health is the liveness probe; it fails only when no good snapshot exists
// and the last refresh failed.
func (h *Handler) Health(c *gin.Context) {
	status := h.nowcastSvc.Status(c.Request.Context())
	code := http.StatusOK
	if status.SnapshotID == "" && status.LastError != "" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Refresh fetches a new snapshot immediately.
func (h *Handler) Refresh(c *gin.Context) {
	if _, err := h.nowcastSvc.Refresh(c.Request.Context()); err != nil {
		abortWithDomainError(c, "refresh_failed", err)
		return
	}
	resp, err := h.nowcastSvc.Latest(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, "nowcast_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateSettings confirms candidate credentials and coordinates against the provider.
func (h *Handler) ValidateSettings(c *gin.Context) {
	var req nowcast.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.nowcastSvc.ValidateSettings(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, "settings_invalid", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func abortWithDomainError(c *gin.Context, fallback string, err error) {
	abortWithError(c, fromDomainError(fallback, err))
}
