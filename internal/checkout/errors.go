package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("sign in to check out")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// OrderCreateFailedError means no order exists remotely; the cart is intact.
type OrderCreateFailedError struct {
	Cause error
}

func (e *OrderCreateFailedError) Error() string {
	return fmt.Sprintf("create order: %v", e.Cause)
}

func (e *OrderCreateFailedError) Unwrap() error {
	return e.Cause
}

// OrderItemsCreateFailedError means the order header was written but its
// items were not. CompensationErr is set when deleting the header also
// failed, leaving an orphaned order behind.
type OrderItemsCreateFailedError struct {
	OrderID         string
	Cause           error
	CompensationErr error
}

func (e *OrderItemsCreateFailedError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("create order items: %v (delete of order %s also failed: %v)", e.Cause, e.OrderID, e.CompensationErr)
	}
	return fmt.Sprintf("create order items: %v", e.Cause)
}

func (e *OrderItemsCreateFailedError) Unwrap() error {
	return e.Cause
}

// Orphaned reports whether the order header was left behind.
func (e *OrderItemsCreateFailedError) Orphaned() bool {
	return e.CompensationErr != nil
}
