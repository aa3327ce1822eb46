package notification

import (
	"net/http"
	"strconv"

	employeedomain "timesheetpro-backend/internal/employee/domain"

	"github.com/gin-gonic/gin"
)

// Handler serves the per-employee notification feed.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) Feed(c *gin.Context) {
	employee := c.MustGet("employee").(*employeedomain.Employee)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, err := h.service.Feed(employee.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": rows})
}
