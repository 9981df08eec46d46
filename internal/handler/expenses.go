package handler

import (
	"net/http"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExpensesHandler struct{ svc service.ExpenseService }

func NewExpensesHandler(svc service.ExpenseService) *ExpensesHandler {
	return &ExpensesHandler{svc: svc}
}

// Add godoc
// @Summary      Record an expense
// @Description  Attaches to the open shift. Amount zero records a note-only entry.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddExpenseRequest true "Expense"
// @Success      201  {object} dto.ExpenseResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/expenses [post]
func (h *ExpensesHandler) Add(c *gin.Context) {
	var req dto.AddExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        shift_id query string false "Filter by shift UUID"
// @Success      200 {array} dto.ExpenseResponse
// @Router       /v1/expenses [get]
func (h *ExpensesHandler) List(c *gin.Context) {
	if shiftStr := c.Query("shift_id"); shiftStr != "" {
		shiftID, err := uuid.Parse(shiftStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid shift_id"))
			return
		}
		resp, err := h.svc.ListByShift(c.Request.Context(), shiftID)
		if err != nil {
			serviceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete an expense
// @Description  Allowed only while the owning shift is still open.
// @Tags         expenses
// @Security     BearerAuth
// @Param        id path string true "Expense UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/expenses/{id} [delete]
func (h *ExpensesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
