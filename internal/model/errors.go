package model

import "errors"

// Sentinel errors for programmatic checking.
var (
	ErrNoProjectRoot   = errors.New("project root not set")
	ErrNotFramework    = errors.New("project is not an HLEB2 application")
	ErrNodeNotFound    = errors.New("no string literal at offset")
	ErrUnsupportedFile = errors.New("not a PHP file")
	ErrParse           = errors.New("parse failed")
)

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone            ErrorCode = ""
	ECNoProjectRoot   ErrorCode = "ERR_NO_ROOT"
	ECNotFramework    ErrorCode = "ERR_NOT_FRAMEWORK"
	ECNodeNotFound    ErrorCode = "ERR_NODE_NOT_FOUND"
	ECUnsupportedFile ErrorCode = "ERR_UNSUPPORTED_FILE"
	ECParse           ErrorCode = "ERR_PARSE"
	ECReadError       ErrorCode = "ERR_READ_FILE"
	ECConfigError     ErrorCode = "ERR_CONFIG"
	ECUnknown         ErrorCode = "ERR_UNKNOWN"
)

// CodeOf maps an error to its code
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ECNone
	case errors.Is(err, ErrNoProjectRoot):
		return ECNoProjectRoot
	case errors.Is(err, ErrNotFramework):
		return ECNotFramework
	case errors.Is(err, ErrNodeNotFound):
		return ECNodeNotFound
	case errors.Is(err, ErrUnsupportedFile):
		return ECUnsupportedFile
	case errors.Is(err, ErrParse):
		return ECParse
	}
	return ECUnknown
}
