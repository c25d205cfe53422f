package api

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxweather/dashboard/internal/models"
)

//go:embed index.html
var indexPage []byte

// AlertSource is the read-only view of the alert cache the HTTP layer
// consumes. A stale result is still served; the error stands alone only
// when no collection has ever been fetched.
type AlertSource interface {
	Get(ctx context.Context) (*models.AlertCollection, bool, error)
}

type Handler struct {
	alerts AlertSource
}

func NewHandler(alerts AlertSource) *Handler {
	return &Handler{alerts: alerts}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/alerts", h.getAlerts)
	r.GET("/health", h.health)
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (h *Handler) getAlerts(c *gin.Context) {
	coll, stale, err := h.alerts.Get(c.Request.Context())
	if coll == nil {
		slog.Error("alerts unavailable", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "failed to fetch alerts",
		})
		return
	}
	if stale {
		slog.Warn("serving stale alerts", "error", err)
		c.Header("X-Cache", "stale")
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, coll)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
