package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidPriceBounds   ErrorCode = 103
	ErrCodeInvalidSeries        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeSlotRetired    ErrorCode = 201
	ErrCodeWindowMismatch ErrorCode = 202

	// Market/Order errors (300-399)
	ErrCodeOrderSubmitFailed  ErrorCode = 300
	ErrCodeNoOutstandingOrder ErrorCode = 301
	ErrCodeActivationFailed   ErrorCode = 302

	// Forecast errors (400-499)
	ErrCodeForecastUnavailable ErrorCode = 400
	ErrCodeForecastMalformed   ErrorCode = 401

	// Storage errors (500-599)
	ErrCodeStorageInitFailed  ErrorCode = 500
	ErrCodeStorageWriteFailed ErrorCode = 501
	ErrCodeStorageQueryFailed ErrorCode = 502

	// Transport errors (600-699)
	ErrCodeTransportClosed  ErrorCode = 600
	ErrCodeDecodeFailed     ErrorCode = 601
	ErrCodeUnknownEventKind ErrorCode = 602
	ErrCodeConnectFailed    ErrorCode = 603
)
