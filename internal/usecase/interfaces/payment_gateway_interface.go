package interfaces

import (
	"context"
	"errors"
	"fmt"
)

// IPaymentGateway abstracts the card processor (Stripe, Mercado Pago).
//
// Every mutating call carries an idempotency key derived from booking id and
// attempt number, so a network retry with the same key never double-charges.
// Errors are always *GatewayError, classified Transient or Terminal.
type IPaymentGateway interface {
	Name() string
	Authorize(ctx context.Context, req AuthorizeRequest) (GatewayResult, error)
	Capture(ctx context.Context, req CaptureRequest) (GatewayResult, error)
	Cancel(ctx context.Context, gatewayRef, idempotencyKey string) (GatewayResult, error)
	Refund(ctx context.Context, gatewayRef, idempotencyKey string) (GatewayResult, error)
	GetStatus(ctx context.Context, gatewayRef string) (GatewayResult, error)
	// Lookup finds the authorization created with idempotencyKey. found is false
	// when the processor never saw the request.
	Lookup(ctx context.Context, idempotencyKey string) (result GatewayResult, found bool, err error)
}

type AuthorizeRequest struct {
	BookingID        string
	CustomerID       string
	CustomerEmail    string
	AmountMinor      int64
	Currency         string
	PaymentMethodRef string
	IdempotencyKey   string
	Description      string
}

type CaptureRequest struct {
	GatewayRef     string
	AmountMinor    int64
	IdempotencyKey string
}

// GatewayStatus is the processor-neutral status of an authorization.
type GatewayStatus string

const (
	GatewayStatusPending    GatewayStatus = "pending"
	GatewayStatusAuthorized GatewayStatus = "authorized"
	GatewayStatusCaptured   GatewayStatus = "captured"
	GatewayStatusCanceled   GatewayStatus = "canceled"
	GatewayStatusFailed     GatewayStatus = "failed"
	GatewayStatusRefunded   GatewayStatus = "refunded"
)

type GatewayResult struct {
	GatewayRef  string
	Status      GatewayStatus
	AmountMinor int64
	// FailureCode carries the processor decline code when Status is failed.
	FailureCode string
}

// ErrorKind splits gateway errors into retryable and not retryable.
type ErrorKind string

const (
	ErrorKindTransient ErrorKind = "transient"
	ErrorKindTerminal  ErrorKind = "terminal"
)

var (
	ErrGatewayTransient = errors.New("transient gateway error")
	ErrGatewayTerminal  = errors.New("terminal gateway error")
)

// GatewayError is the classified error every adapter returns.
type GatewayError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s gateway error: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s gateway error: %s: %s", e.Kind, e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrGatewayTransient:
		return e.Kind == ErrorKindTransient
	case ErrGatewayTerminal:
		return e.Kind == ErrorKindTerminal
	}
	return false
}

func NewTransientError(code, msg string, err error) *GatewayError {
	return &GatewayError{Kind: ErrorKindTransient, Code: code, Message: msg, Err: err}
}

func NewTerminalError(code, msg string, err error) *GatewayError {
	return &GatewayError{Kind: ErrorKindTerminal, Code: code, Message: msg, Err: err}
}

// GatewayErrorCode extracts the classified code, or "" for foreign errors.
func GatewayErrorCode(err error) string {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return ""
}
