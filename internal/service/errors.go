package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation")      // 400
	ErrUnauthenticated = errors.New("unauthenticated") // 401
	ErrForbidden       = errors.New("forbidden")       // 403
	ErrNotFound        = errors.New("not found")       // 404
	ErrConflict        = errors.New("conflict")        // 409

	ErrEmptyCart         = errors.New("cart is empty")            // 400
	ErrMissingField      = errors.New("missing required field")   // 400
	ErrProductNotFound   = errors.New("product not found")        // 400
	ErrInsufficientStock = errors.New("insufficient stock")       // 400
	ErrOrderPersistence  = errors.New("order persistence failed") // 500
)

type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: product %d has %d, requested %d", ErrInsufficientStock, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func productNotFound(id uint) error {
	return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
}
