package delivery

import (
	"net/http"
	"strconv"

	"timesheetpro-backend/internal/ingestion/scheduler"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler exposes the scheduler and the dedup ledger to admins.
type MonitoringHandler struct {
	scheduler *scheduler.Scheduler
	ledger    integrationrepo.ProcessedFileRepository
}

func NewMonitoringHandler(s *scheduler.Scheduler, ledger integrationrepo.ProcessedFileRepository) *MonitoringHandler {
	return &MonitoringHandler{
		scheduler: s,
		ledger:    ledger,
	}
}

// RunNow triggers one integration scan outside its schedule and waits for
// the result.
func (h *MonitoringHandler) RunNow(c *gin.Context) {
	kind := integrationdomain.IntegrationType(c.Param("type"))

	result := h.scheduler.RunNow(c.Request.Context(), kind)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

func (h *MonitoringHandler) SchedulerStatus(c *gin.Context) {
	status, err := h.scheduler.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *MonitoringHandler) RecentProcessed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.ledger.ListRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed_files": records})
}
