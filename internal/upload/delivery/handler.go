package delivery

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	employeedomain "timesheetpro-backend/internal/employee/domain"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	"timesheetpro-backend/internal/upload/repository"
	"timesheetpro-backend/internal/upload/usecase"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 25 << 20 // 25 MB

type UploadHandler struct {
	uploadUsecase usecase.UploadUsecase
}

func NewUploadHandler(uploadUsecase usecase.UploadUsecase) *UploadHandler {
	return &UploadHandler{
		uploadUsecase: uploadUsecase,
	}
}

func currentEmployee(c *gin.Context) *employeedomain.Employee {
	value, ok := c.Get("employee")
	if !ok {
		return nil
	}
	employee, _ := value.(*employeedomain.Employee)
	return employee
}

func isStaff(employee *employeedomain.Employee) bool {
	return employee.Role == employeedomain.RoleAdmin || employee.Role == employeedomain.RoleManager
}

// Upload accepts one multipart file and lands it as a manual upload.
func (h *UploadHandler) Upload(c *gin.Context) {
	actor := currentEmployee(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 25MB limit"})
		return
	}

	employeeID := c.PostForm("employee_id")
	if employeeID == "" {
		employeeID = actor.ID
	}
	if employeeID != actor.ID && !isStaff(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot upload for another employee"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	upload, err := h.uploadUsecase.UploadManual(content, fileHeader.Filename, employeeID, actor.ID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrUnsupportedFormat) || errors.Is(err, usecase.ErrUnknownEmployee) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, upload)
}

func (h *UploadHandler) List(c *gin.Context) {
	actor := currentEmployee(c)

	filter := repository.ListFilter{
		EmployeeID: c.Query("employee_id"),
		Source:     uploaddomain.UploadSource(c.Query("source")),
		Status:     uploaddomain.UploadStatus(c.Query("status")),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	// Non-staff only see their own uploads.
	if !isStaff(actor) && actor.Role != employeedomain.RoleFinance {
		filter.EmployeeID = actor.ID
	}

	uploads, total, err := h.uploadUsecase.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": uploads, "total": total})
}

func (h *UploadHandler) Get(c *gin.Context) {
	actor := currentEmployee(c)

	upload, err := h.uploadUsecase.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if upload.EmployeeID != actor.ID && !isStaff(actor) && actor.Role != employeedomain.RoleFinance {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	c.JSON(http.StatusOK, upload)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	err := h.uploadUsecase.Delete(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *UploadHandler) Stats(c *gin.Context) {
	stats, err := h.uploadUsecase.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
