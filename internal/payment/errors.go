package payment

import "errors"

var (
	// ErrInvalidStateTransition is a programming or integration defect. It
	// is logged at the boundary and never shown to end users.
	ErrInvalidStateTransition = errors.New("invalid payment phase transition")
	ErrInitializationFailed   = errors.New("payment initialization failed")
	// ErrConfirmationRequired guards against accidentally discarding an
	// in-flight payment: abandoning needs an explicit user confirmation.
	ErrConfirmationRequired = errors.New("abandoning the payment requires confirmation")
)
