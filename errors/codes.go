package errors

// ErrorCode identifies the class of an AppError in responses and logs
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1002
	ErrorCode_NOT_FOUND        ErrorCode = 1003

	// Bot sessions
	ErrorCode_SESSION_ALREADY_ACTIVE  ErrorCode = 2000
	ErrorCode_SESSION_JOIN_FAILED     ErrorCode = 2001
	ErrorCode_SESSION_TEARDOWN_FAILED ErrorCode = 2002
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                 "HTTP_OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:         "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:               "NOT_FOUND",
	ErrorCode_SESSION_ALREADY_ACTIVE:  "SESSION_ALREADY_ACTIVE",
	ErrorCode_SESSION_JOIN_FAILED:     "SESSION_JOIN_FAILED",
	ErrorCode_SESSION_TEARDOWN_FAILED: "SESSION_TEARDOWN_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
