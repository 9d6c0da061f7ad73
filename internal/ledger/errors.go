package ledger

import "fmt"

// QueryError indicates a failed ledger read. Retryable: the orchestrator
// aborts the cycle and the retry scheduler backs off before the next attempt.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("ledger query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// TransferError indicates a failed or reverted transfer. The action is marked
// FAILED in the cycle report; it is not re-attempted within the same cycle.
type TransferError struct {
	Symbol string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("ledger transfer %s: %v", e.Symbol, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
