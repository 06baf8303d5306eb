package entities

// PaymentState is the closed set of payment statuses a Booking moves through.
//
// Only the payment state machine changes it, and only along AllowedTransitions.
// Storage keeps the string value; the stores reject anything outside the set
// when a booking is read.

type PaymentState string

const (
	PaymentStateUnbilled    PaymentState = "unbilled"
	PaymentStateAuthorizing PaymentState = "authorizing"
	PaymentStateAuthorized  PaymentState = "authorized"
	PaymentStateCapturing   PaymentState = "capturing"
	PaymentStateCaptured    PaymentState = "captured"
	PaymentStateFailed      PaymentState = "failed"
	PaymentStateCancelled   PaymentState = "cancelled"
	PaymentStateRefunded    PaymentState = "refunded"
)

// AllowedTransitions maps the current state to the states it may move to.
//
// Failed -> Authorizing is the retry path for transient failures and
// Failed -> Unbilled is the reset after a new payment method is provided.
var AllowedTransitions = map[PaymentState][]PaymentState{
	PaymentStateUnbilled: {
		PaymentStateAuthorizing,
		PaymentStateFailed,
		PaymentStateCancelled,
	},
	PaymentStateAuthorizing: {
		PaymentStateAuthorized,
		PaymentStateFailed,
		PaymentStateCancelled,
	},
	PaymentStateAuthorized: {
		PaymentStateCapturing,
		PaymentStateFailed,
		PaymentStateCancelled,
	},
	PaymentStateCapturing: {
		PaymentStateCaptured,
		PaymentStateFailed,
	},
	PaymentStateCaptured: {
		PaymentStateRefunded,
	},
	PaymentStateFailed: {
		PaymentStateAuthorizing,
		PaymentStateUnbilled,
		PaymentStateCancelled,
	},
	PaymentStateCancelled: {},
	PaymentStateRefunded:  {},
}

// CanTransition reports whether from -> to is an edge of the graph.
func CanTransition(from, to PaymentState) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known states.
func (s PaymentState) IsValid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// InFlight reports whether a gateway call may be outstanding in s. Such
// bookings are reconciled no matter how far off the clean is.
func (s PaymentState) InFlight() bool {
	return s == PaymentStateAuthorizing || s == PaymentStateCapturing
}

// IsTerminal reports whether no further transition is possible.
func (s PaymentState) IsTerminal() bool {
	return s.IsValid() && len(AllowedTransitions[s]) == 0
}

// CustomerStatus is the simplified status shown to customers. Raw gateway
// codes and intermediate states never leak through it.
func (s PaymentState) CustomerStatus() string {
	switch s {
	case PaymentStateUnbilled, PaymentStateAuthorizing:
		return "pending"
	case PaymentStateAuthorized, PaymentStateCapturing, PaymentStateCaptured:
		return "confirmed"
	case PaymentStateFailed:
		return "failed"
	case PaymentStateCancelled:
		return "cancelled"
	case PaymentStateRefunded:
		return "refunded"
	default:
		return "pending"
	}
}
