package delivery

import (
	"errors"
	"net/http"
	"strconv"

	employeedto "timesheetpro-backend/internal/employee/dto"
	"timesheetpro-backend/internal/employee/usecase"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeUsecase usecase.EmployeeUsecase
}

func NewEmployeeHandler(employeeUsecase usecase.EmployeeUsecase) *EmployeeHandler {
	return &EmployeeHandler{
		employeeUsecase: employeeUsecase,
	}
}

func respondUsecaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmployeeNotFound),
		errors.Is(err, usecase.ErrClientNotFound),
		errors.Is(err, usecase.ErrCalendarNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req employeedto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employeeUsecase.CreateEmployee(&req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employee, err := h.employeeUsecase.GetEmployee(c.Param("id"))
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") == "true"
	employees, err := h.employeeUsecase.ListEmployees(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req employeedto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employeeUsecase.UpdateEmployee(c.Param("id"), &req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	if err := h.employeeUsecase.DeactivateEmployee(c.Param("id")); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

func (h *EmployeeHandler) CreateClient(c *gin.Context) {
	var req employeedto.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.employeeUsecase.CreateClient(&req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *EmployeeHandler) ListClients(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") == "true"
	clients, err := h.employeeUsecase.ListClients(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *EmployeeHandler) UpdateClient(c *gin.Context) {
	var req employeedto.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.employeeUsecase.UpdateClient(c.Param("id"), &req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *EmployeeHandler) DeactivateClient(c *gin.Context) {
	if err := h.employeeUsecase.DeactivateClient(c.Param("id")); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

func (h *EmployeeHandler) CreateCalendar(c *gin.Context) {
	var req employeedto.CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calendar, err := h.employeeUsecase.CreateCalendar(&req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, calendar)
}

func (h *EmployeeHandler) GetCalendar(c *gin.Context) {
	calendar, err := h.employeeUsecase.GetCalendar(c.Param("id"))
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

func (h *EmployeeHandler) ListCalendars(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	calendars, err := h.employeeUsecase.ListCalendars(year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendars": calendars})
}

func (h *EmployeeHandler) DeleteCalendar(c *gin.Context) {
	if err := h.employeeUsecase.DeleteCalendar(c.Param("id")); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *EmployeeHandler) AddHoliday(c *gin.Context) {
	var req employeedto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holiday, err := h.employeeUsecase.AddHoliday(c.Param("id"), &req)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holiday)
}

func (h *EmployeeHandler) RemoveHoliday(c *gin.Context) {
	if err := h.employeeUsecase.RemoveHoliday(c.Param("id"), c.Param("holidayId")); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
