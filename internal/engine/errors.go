package engine

import "fmt"

// ConfigurationError aborts a run before any fetching happens. It is
// the only error class that moves the engine to StateFailed.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataUnavailableError marks one symbol whose quote series could not
// be built. The run continues without the symbol.
type DataUnavailableError struct {
	Symbol string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no usable data for %s: %v", e.Symbol, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// CorrelationUndefinedError marks a symbol pair whose correlation
// could not be computed (short series or zero variance). The matrix
// keeps the entry undefined and the run continues.
type CorrelationUndefinedError struct {
	SymbolA string
	SymbolB string
}

func (e *CorrelationUndefinedError) Error() string {
	return fmt.Sprintf("correlation undefined for %s/%s", e.SymbolA, e.SymbolB)
}

// NotificationDeliveryError marks a notifier handoff failure. The
// report itself is still produced.
type NotificationDeliveryError struct {
	Err error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("notification delivery failed: %v", e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }
