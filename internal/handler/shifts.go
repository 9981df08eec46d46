package handler

import (
	"net/http"
	"strconv"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftsHandler struct {
	svc     service.ShiftService
	reports service.ReportService
}

func NewShiftsHandler(svc service.ShiftService, reports service.ReportService) *ShiftsHandler {
	return &ShiftsHandler{svc: svc, reports: reports}
}

// Open godoc
// @Summary      Open a shift
// @Description  Starts the working session. Only one shift can be open.
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenShiftRequest true "Cashier and starting cash"
// @Success      201  {object} dto.ShiftResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/shifts/open [post]
func (h *ShiftsHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary      Close the open shift
// @Description  A non-empty cart blocks the close unless force is set, which discards the cart.
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CloseShiftRequest false "Force flag"
// @Success      200  {object} dto.ShiftResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/shifts/close [post]
func (h *ShiftsHandler) Close(c *gin.Context) {
	var req dto.CloseShiftRequest
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}
	resp, err := h.svc.Close(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary      Current open shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShiftResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/shifts/current [get]
func (h *ShiftsHandler) Current(c *gin.Context) {
	resp, err := h.svc.Current(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Closed shift history
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page (default 1)"
// @Param        limit query int false "Items per page (default 50)"
// @Success      200   {object} dto.ShiftListResponse
// @Router       /v1/shifts [get]
func (h *ShiftsHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Shift UUID"
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/{id} [get]
func (h *ShiftsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary      End-of-shift report
// @Description  Figures plus a plain-text rendition and a wa.me link.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Shift UUID"
// @Success      200 {object} dto.ShiftReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/{id}/report [get]
func (h *ShiftsHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.reports.ShiftReport(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportPDF godoc
// @Summary      End-of-shift report as PDF
// @Tags         shifts
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Shift UUID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/{id}/report.pdf [get]
func (h *ShiftsHandler) ReportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	path, err := h.reports.ShiftReportPDF(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.FileAttachment(path, "shift-report.pdf")
}
