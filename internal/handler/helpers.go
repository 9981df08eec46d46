package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Djidro/Royalpos/internal/apierror"
	"github.com/Djidro/Royalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// serviceError maps service sentinels onto HTTP statuses and writes the
// response. Unknown errors become a generic 500 so internals stay hidden.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrShiftNotFound),
		errors.Is(err, service.ErrExpenseNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrLineNotInCart):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrShiftAlreadyOpen),
		errors.Is(err, service.ErrCartNotEmpty),
		errors.Is(err, service.ErrAlreadyRefunded),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrNoOpenShift),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrStockUnlimited),
		errors.Is(err, service.ErrRefundOtherShift),
		errors.Is(err, service.ErrExpenseEmpty),
		errors.Is(err, service.ErrExpenseLocked):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}
