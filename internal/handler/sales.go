package handler

import (
	"net/http"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Checkout godoc
// @Summary      Checkout the cart
// @Description  Turns the cart into a sale in one transaction: stock deducted, shift ledger updated, cart cleared.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Payment method"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/checkout [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Refund godoc
// @Summary      Refund a sale
// @Description  Reverses a sale of the open shift: stock restored, ledger reduced, sale flagged. The row stays for audit.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sales/{id}/refund [post]
func (h *SalesHandler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.Refund(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date  query string false "Calendar day YYYY-MM-DD"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Items per page (default 50)"
// @Success      200   {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
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

// Receipt godoc
// @Summary      Sale receipt as PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt.pdf [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	path, err := h.svc.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.FileAttachment(path, "receipt.pdf")
}
