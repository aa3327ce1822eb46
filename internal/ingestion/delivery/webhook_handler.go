package delivery

import (
	"errors"
	"net/http"

	"timesheetpro-backend/internal/ingestion/usecase"
	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"github.com/gin-gonic/gin"
)

// WebhookHandler terminates Google push callbacks and gives admins control
// over the push channels.
type WebhookHandler struct {
	webhooks usecase.WebhookUsecase
	idle     *usecase.IdleMonitor
}

func NewWebhookHandler(webhooks usecase.WebhookUsecase, idle *usecase.IdleMonitor) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		idle:     idle,
	}
}

// DriveNotification is the unauthenticated receiver Google calls. Always
// answers 200; a non-2xx makes Google retry with backoff and eventually
// kill the channel.
func (h *WebhookHandler) DriveNotification(c *gin.Context) {
	channelID := c.GetHeader("X-Goog-Channel-ID")
	resourceState := c.GetHeader("X-Goog-Resource-State")

	triggered := h.webhooks.HandleDriveNotification(channelID, resourceState)
	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}

func (h *WebhookHandler) RegisterDrive(c *gin.Context) {
	channel, err := h.webhooks.RegisterDrive(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, integrationdomain.ErrNotConfigured):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, integrationdomain.ErrCorruptConfig):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *WebhookHandler) StopDrive(c *gin.Context) {
	if err := h.webhooks.StopDrive(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

func (h *WebhookHandler) Status(c *gin.Context) {
	status, err := h.webhooks.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *WebhookHandler) StartIdle(c *gin.Context) {
	if err := h.idle.Start(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.idle.State()})
}

func (h *WebhookHandler) StopIdle(c *gin.Context) {
	if err := h.idle.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.idle.State()})
}
