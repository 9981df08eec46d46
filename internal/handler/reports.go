package handler

import (
	"net/http"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Summary godoc
// @Summary      Sales summary over a day range
// @Description  Totals per payment method and a per-item breakdown. Refunded sales excluded.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "First day YYYY-MM-DD (inclusive)"
// @Param        end   query string false "Last day YYYY-MM-DD (inclusive)"
// @Success      200   {object} dto.SummaryResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/reports/summary [get]
func (h *ReportsHandler) Summary(c *gin.Context) {
	filter := dto.SummaryFilter{
		Start: c.Query("start"),
		End:   c.Query("end"),
	}
	resp, err := h.svc.Summary(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
