package results

// OperationResult carries the outcome of a service operation. Exactly one of
// Success or Failure is set; a Failure is a business outcome, not an error.
type OperationResult struct {
	Success any
	Failure any
}

// Success wraps a success payload.
func Success(payload any) OperationResult {
	return OperationResult{Success: payload}
}

// Failure wraps a business failure payload.
func Failure(payload any) OperationResult {
	return OperationResult{Failure: payload}
}
