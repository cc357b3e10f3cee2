package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart                = errors.New("cart is empty")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")
	ErrConcurrentCheckout       = errors.New("another checkout for this user is in progress")
	ErrBackendUnavailable       = errors.New("backend unavailable")
	ErrUnrepresentableAmount    = errors.New("amount is not representable in whole cents")
	ErrInvalidQuantity          = errors.New("quantity must be at least 1")
	ErrLocationRequired         = errors.New("location is required")
	ErrUnknownProductOrLocation = errors.New("unknown product or location")
	ErrCartLineNotFound         = errors.New("cart line not found")
	ErrPagingUnsupported        = errors.New("order paging not supported by backend")

	ErrOrderNotFound           = errors.New("order not found")
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderStatusConflict     = errors.New("order status changed concurrently")
)

// BackendError wraps a storage failure with the step that failed.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBackendUnavailable, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackendUnavailable }

type WriteStage string

const (
	StageLines     WriteStage = "lines"
	StageClearCart WriteStage = "clear_cart"
)

// PartialOrderWriteError reports an order header that exists without its
// full set of side effects. Only non-transactional backends produce it.
type PartialOrderWriteError struct {
	OrderID int64
	Stage   WriteStage
	Err     error
}

func (e *PartialOrderWriteError) Error() string {
	return fmt.Sprintf("order %d partially written, failed at %s: %v", e.OrderID, e.Stage, e.Err)
}

func (e *PartialOrderWriteError) Unwrap() error { return e.Err }

var domainErrors = []error{
	ErrEmptyCart,
	ErrInvalidPaymentMethod,
	ErrConcurrentCheckout,
	ErrUnrepresentableAmount,
	ErrInvalidQuantity,
	ErrLocationRequired,
	ErrUnknownProductOrLocation,
	ErrCartLineNotFound,
	ErrPagingUnsupported,
	ErrOrderNotFound,
	ErrUnknownStatus,
	ErrInvalidStatusTransition,
	ErrOrderStatusConflict,
}

func isClassified(err error) bool {
	var be *BackendError
	var pe *PartialOrderWriteError
	if errors.As(err, &be) || errors.As(err, &pe) {
		return true
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// backendErr leaves domain errors untouched and wraps everything else,
// including context cancellation, as a BackendError.
func backendErr(op string, err error) error {
	if err == nil || isClassified(err) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}
