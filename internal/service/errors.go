package service

import "errors"

// Sentinel errors surfaced to handlers, which map them onto HTTP statuses.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is inactive")
	ErrStockUnlimited    = errors.New("product has unlimited stock")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrEmptyCart     = errors.New("cart is empty")
	ErrCartNotEmpty  = errors.New("cart still holds items")
	ErrLineNotInCart = errors.New("product is not in the cart")

	ErrShiftAlreadyOpen = errors.New("a shift is already open")
	ErrNoOpenShift      = errors.New("no open shift")
	ErrShiftNotFound    = errors.New("shift not found")

	ErrSaleNotFound     = errors.New("sale not found")
	ErrAlreadyRefunded  = errors.New("sale is already refunded")
	ErrRefundOtherShift = errors.New("sale belongs to a different shift")

	ErrExpenseNotFound = errors.New("expense not found")
	ErrExpenseEmpty    = errors.New("expense needs a name or notes")
	ErrExpenseLocked   = errors.New("expense belongs to a closed shift")

	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
)
