package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidTolerance     ErrorCode = 104
	ErrCodeInvalidDateRange     ErrorCode = 105
	ErrCodeInvalidExitPolicy    ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeQueryFailed      ErrorCode = 201
	ErrCodeCacheUnavailable ErrorCode = 202
	ErrCodeInsufficientBars ErrorCode = 203

	// Simulation errors (400-499)
	ErrCodeSimulationStateNil   ErrorCode = 400
	ErrCodeSimulationInitFailed ErrorCode = 401
	ErrCodeSimulationNoSignals  ErrorCode = 402
	ErrCodeLedgerWriteFailed    ErrorCode = 403
	ErrCodeReconciliationFailed ErrorCode = 404

	// Price store errors (500-599)
	ErrCodeFetchFailed     ErrorCode = 500
	ErrCodeParseFailed     ErrorCode = 501
	ErrCodeCacheReadFailed ErrorCode = 502

	// Persistence errors (600-699)
	ErrCodeCSVReadFailed  ErrorCode = 600
	ErrCodeCSVWriteFailed ErrorCode = 601
)
