package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/domain/department"
)

type DepartmentStore interface {
	Create(ctx context.Context, dep department.Department) error
	List(ctx context.Context) ([]department.Department, error)
}

type DepartmentsHandler struct {
	departments DepartmentStore
}

func NewDepartmentsHandler(departments DepartmentStore) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

func (h *DepartmentsHandler) Create(ctx *gin.Context) {
	var req department.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	dep := department.NewFromCreateRequest(req)

	if err := h.departments.Create(ctx.Request.Context(), dep); err != nil {
		slog.Error("department_create_failed", "error", err)
		RespondInternal(ctx, "Could not create department")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"department": dep})
}

func (h *DepartmentsHandler) List(ctx *gin.Context) {
	departments, err := h.departments.List(ctx.Request.Context())

	if err != nil {
		slog.Error("department_list_failed", "error", err)
		RespondInternal(ctx, "Could not load departments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"departments": departments})
}
