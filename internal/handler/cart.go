package handler

import (
	"net/http"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

// Get godoc
// @Summary      Current cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CartResponse
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Add godoc
// @Summary      Add a product to the cart
// @Description  Adds one unit, or bumps the existing line. Capped by stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddToCartRequest true "Product to add"
// @Success      200  {object} dto.CartResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddToCartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product_id"))
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), productID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeQuantity godoc
// @Summary      Change a line quantity
// @Description  Applies a delta. Zero or below removes the line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Product UUID"
// @Param        body body dto.ChangeQuantityRequest true "Delta"
// @Success      200  {object} dto.CartResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cart/items/{id} [patch]
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.ChangeQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeQuantity(c.Request.Context(), productID, req.Delta)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Remove godoc
// @Summary      Remove a line from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/cart/items/{id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.Remove(c.Request.Context(), productID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      204
// @Router       /v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		serviceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
