package delivery

import (
	"errors"
	"net/http"
	"strconv"

	employeedomain "timesheetpro-backend/internal/employee/domain"
	timesheetdomain "timesheetpro-backend/internal/timesheet/domain"
	timesheetdto "timesheetpro-backend/internal/timesheet/dto"
	"timesheetpro-backend/internal/timesheet/repository"
	"timesheetpro-backend/internal/timesheet/usecase"

	"github.com/gin-gonic/gin"
)

type TimesheetHandler struct {
	timesheetUsecase usecase.TimesheetUsecase
}

func NewTimesheetHandler(timesheetUsecase usecase.TimesheetUsecase) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetUsecase: timesheetUsecase,
	}
}

func actor(c *gin.Context) *employeedomain.Employee {
	return c.MustGet("employee").(*employeedomain.Employee)
}

func canManage(employee *employeedomain.Employee) bool {
	return employee.Role == employeedomain.RoleAdmin || employee.Role == employeedomain.RoleManager
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrTimesheetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidPeriod),
		errors.Is(err, usecase.ErrNotEditable),
		errors.Is(err, usecase.ErrNotSubmittable),
		errors.Is(err, usecase.ErrNotDecidable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *TimesheetHandler) Create(c *gin.Context) {
	var req timesheetdto.CreateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp := actor(c)
	if req.EmployeeID == "" {
		req.EmployeeID = emp.ID
	}
	if req.EmployeeID != emp.ID && !canManage(emp) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot create a timesheet for another employee"})
		return
	}

	timesheet, err := h.timesheetUsecase.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, timesheet)
}

func (h *TimesheetHandler) Get(c *gin.Context) {
	timesheet, err := h.timesheetUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	emp := actor(c)
	if timesheet.EmployeeID != emp.ID && !canManage(emp) && emp.Role != employeedomain.RoleFinance {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

func (h *TimesheetHandler) List(c *gin.Context) {
	emp := actor(c)

	filter := repository.ListFilter{
		EmployeeID: c.Query("employee_id"),
		Status:     timesheetdomain.TimesheetStatus(c.Query("status")),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	if !canManage(emp) && emp.Role != employeedomain.RoleFinance {
		filter.EmployeeID = emp.ID
	}

	timesheets, total, err := h.timesheetUsecase.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timesheets": timesheets, "total": total})
}

func (h *TimesheetHandler) Update(c *gin.Context) {
	timesheet, err := h.timesheetUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	emp := actor(c)
	if timesheet.EmployeeID != emp.ID && !canManage(emp) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	var req timesheetdto.UpdateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.timesheetUsecase.Update(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TimesheetHandler) Delete(c *gin.Context) {
	timesheet, err := h.timesheetUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	emp := actor(c)
	if timesheet.EmployeeID != emp.ID && !canManage(emp) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	if err := h.timesheetUsecase.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *TimesheetHandler) Submit(c *gin.Context) {
	timesheet, err := h.timesheetUsecase.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	emp := actor(c)
	if timesheet.EmployeeID != emp.ID && !canManage(emp) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	submitted, err := h.timesheetUsecase.Submit(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submitted)
}

func (h *TimesheetHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

func (h *TimesheetHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *TimesheetHandler) decide(c *gin.Context, approve bool) {
	var req timesheetdto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timesheet, err := h.timesheetUsecase.Decide(c.Param("id"), actor(c).ID, approve, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

func (h *TimesheetHandler) Approvals(c *gin.Context) {
	approvals, err := h.timesheetUsecase.Approvals(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvals": approvals})
}
