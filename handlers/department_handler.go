package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) ListDepartments(c echo.Context) error {
	departments, err := h.departmentService.ListDepartments()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch departments"})
	}
	return c.JSON(http.StatusOK, departments)
}

func (h *DepartmentHandler) CreateDepartment(c echo.Context) error {
	var dept models.Department
	if err := c.Bind(&dept); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.departmentService.CreateDepartment(&dept); err != nil {
		switch err {
		case services.ErrDepartmentName:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create department"})
		}
	}
	return c.JSON(http.StatusCreated, dept)
}

func (h *DepartmentHandler) UpdateDepartment(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid department ID"})
	}
	var dept models.Department
	if err := c.Bind(&dept); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	dept.ID = id
	if err := h.departmentService.UpdateDepartment(&dept); err != nil {
		switch err {
		case services.ErrDepartmentName:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrDepartmentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update department"})
		}
	}
	return c.JSON(http.StatusOK, dept)
}

func (h *DepartmentHandler) DeleteDepartment(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid department ID"})
	}
	if err := h.departmentService.DeleteDepartment(id); err != nil {
		switch err {
		case services.ErrDepartmentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete department"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "department deleted"})
}
