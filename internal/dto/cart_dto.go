package dto

import "github.com/shopspring/decimal"

type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type CartLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}
