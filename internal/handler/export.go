package handler

import (
	"net/http"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct{ svc service.ExportService }

func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export godoc
// @Summary      Export the full dataset
// @Description  Products, sales, shifts, and expenses as one versioned backup bundle.
// @Tags         export
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ExportBundle
// @Router       /v1/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	bundle, err := h.svc.Export(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.JSON(http.StatusOK, bundle)
}

// Import godoc
// @Summary      Import a backup bundle
// @Description  Merges by id; existing local records always win. Returns created/skipped counts per section.
// @Tags         export
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ExportBundle true "Backup bundle"
// @Success      200  {object} dto.ImportResult
// @Failure      400  {object} apierror.APIError
// @Router       /v1/import [post]
func (h *ExportHandler) Import(c *gin.Context) {
	var bundle dto.ExportBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return
	}
	result, err := h.svc.Import(c.Request.Context(), &bundle)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
