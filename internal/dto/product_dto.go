package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StockValue is the wire form of a product's stock: a plain number for
// finite stock, or the string "unlimited" for the sentinel. This shape is
// shared with the remote mirror collections and the export file.
type StockValue struct {
	Unlimited bool
	Count     int
}

// FiniteStock builds a finite StockValue.
func FiniteStock(n int) StockValue { return StockValue{Count: n} }

// UnlimitedStock builds the sentinel StockValue.
func UnlimitedStock() StockValue { return StockValue{Unlimited: true} }

func (s StockValue) MarshalJSON() ([]byte, error) {
	if s.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(s.Count)), nil
}

func (s *StockValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = StockValue{}
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if strings.EqualFold(str, "unlimited") {
			*s = StockValue{Unlimited: true}
			return nil
		}
		// Some historical exports carry numeric strings
		n, err := strconv.Atoi(str)
		if err != nil || n < 0 {
			return fmt.Errorf(`stock must be a non-negative number or "unlimited"`)
		}
		*s = StockValue{Count: n}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil || n < 0 {
		return fmt.Errorf(`stock must be a non-negative number or "unlimited"`)
	}
	*s = StockValue{Count: n}
	return nil
}

type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"min=0"`
	Stock StockValue      `json:"stock"`
}

type UpdateProductRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	Stock *StockValue      `json:"stock"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

type ProductFilter struct {
	Name   string `form:"name"`
	Active string `form:"active"` // "", "false", "all"
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     StockValue      `json:"stock"`
	LowStock  bool            `json:"low_stock"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason,omitempty"`
	ReferenceID *string `json:"reference_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
