package delivery

import (
	"errors"
	"net/http"

	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationdto "timesheetpro-backend/internal/integration/dto"
	"timesheetpro-backend/internal/integration/usecase"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct {
	integrationUsecase usecase.IntegrationUsecase
}

func NewIntegrationHandler(integrationUsecase usecase.IntegrationUsecase) *IntegrationHandler {
	return &IntegrationHandler{
		integrationUsecase: integrationUsecase,
	}
}

func parseKind(c *gin.Context) (integrationdomain.IntegrationType, bool) {
	kind := integrationdomain.IntegrationType(c.Param("type"))
	if kind != integrationdomain.IntegrationEmail && kind != integrationdomain.IntegrationDrive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown integration type"})
		return "", false
	}
	return kind, true
}

func respondConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, integrationdomain.ErrNotConfigured):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, integrationdomain.ErrCorruptConfig):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *IntegrationHandler) ConfigureEmail(c *gin.Context) {
	var req integrationdto.EmailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.integrationUsecase.ConfigureEmail(&req)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *IntegrationHandler) ConfigureDrive(c *gin.Context) {
	var req integrationdto.DriveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.integrationUsecase.ConfigureDrive(&req)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *IntegrationHandler) Status(c *gin.Context) {
	statuses, err := h.integrationUsecase.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"integrations": statuses})
}

func (h *IntegrationHandler) Toggle(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	cfg, err := h.integrationUsecase.Toggle(kind)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Test performs a live connection attempt with the stored credentials.
func (h *IntegrationHandler) Test(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	if err := h.integrationUsecase.Test(c.Request.Context(), kind); err != nil {
		switch {
		case errors.Is(err, integrationdomain.ErrNotConfigured),
			errors.Is(err, integrationdomain.ErrCorruptConfig):
			respondConfigError(c, err)
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "connection ok"})
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	if err := h.integrationUsecase.Disconnect(kind); err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": true})
}

func (h *IntegrationHandler) OAuthURL(c *gin.Context) {
	kind := integrationdomain.IntegrationType(c.DefaultQuery("type", string(integrationdomain.IntegrationEmail)))

	url, err := h.integrationUsecase.OAuthURL(kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// OAuthCallback is hit by Google after consent. State carries the
// integration type the flow was started for.
func (h *IntegrationHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	kind := integrationdomain.IntegrationType(c.Query("state"))

	if err := h.integrationUsecase.HandleOAuthCallback(c.Request.Context(), kind, code); err != nil {
		respondConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account connected"})
}
