package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Aliases used by call sites that predate the module-prefixed codes.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Report Module Error Codes
const (
	ErrCodeReportReadFailed      ErrorCode = "RPT_001"
	ErrCodeReportHeaderInvalid   ErrorCode = "RPT_002"
	ErrCodeReportTruncated       ErrorCode = "RPT_003"
	ErrCodeReportFieldInvalid    ErrorCode = "RPT_004"
	ErrCodeReportIndexOutOfRange ErrorCode = "RPT_005"
	ErrCodeReportDuplicateCell   ErrorCode = "RPT_006"
)

// Plot Module Error Codes
const (
	ErrCodeLabelCountMismatch ErrorCode = "PLT_001"
	ErrCodeFigureInvalid      ErrorCode = "PLT_002"
	ErrCodeEncodeFailed       ErrorCode = "PLT_003"
	ErrCodeFormatUnsupported  ErrorCode = "PLT_004"
	ErrCodePaletteUnknown     ErrorCode = "PLT_005"
	ErrCodeMatrixEmpty        ErrorCode = "PLT_006"
	ErrCodeOutputWriteFailed  ErrorCode = "PLT_007"
	ErrCodeDatasetNotFound    ErrorCode = "PLT_008"
)

// Storage Module Error Codes
const (
	ErrCodeStorageUploadFailed   ErrorCode = "STO_001"
	ErrCodeStorageBucketMissing  ErrorCode = "STO_002"
	ErrCodeStorageObjectNotFound ErrorCode = "STO_003"
	ErrCodeStorageInvalidInput   ErrorCode = "STO_004"
)

// Event Module Error Codes
const (
	ErrCodeEventPublishFailed ErrorCode = "EVT_001"
	ErrCodeEventEncodeFailed  ErrorCode = "EVT_002"
)

// Config Module Error Codes
const (
	ErrCodeConfigInvalid  ErrorCode = "CFG_001"
	ErrCodeConfigNotFound ErrorCode = "CFG_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeFeatureDisabled:    http.StatusForbidden,

	ErrCodeReportReadFailed:      http.StatusBadRequest,
	ErrCodeReportHeaderInvalid:   http.StatusUnprocessableEntity,
	ErrCodeReportTruncated:       http.StatusUnprocessableEntity,
	ErrCodeReportFieldInvalid:    http.StatusUnprocessableEntity,
	ErrCodeReportIndexOutOfRange: http.StatusUnprocessableEntity,
	ErrCodeReportDuplicateCell:   http.StatusUnprocessableEntity,

	ErrCodeLabelCountMismatch: http.StatusUnprocessableEntity,
	ErrCodeFigureInvalid:      http.StatusBadRequest,
	ErrCodeEncodeFailed:       http.StatusInternalServerError,
	ErrCodeFormatUnsupported:  http.StatusBadRequest,
	ErrCodePaletteUnknown:     http.StatusBadRequest,
	ErrCodeMatrixEmpty:        http.StatusUnprocessableEntity,
	ErrCodeOutputWriteFailed:  http.StatusInternalServerError,
	ErrCodeDatasetNotFound:    http.StatusNotFound,

	ErrCodeStorageUploadFailed:   http.StatusBadGateway,
	ErrCodeStorageBucketMissing:  http.StatusInternalServerError,
	ErrCodeStorageObjectNotFound: http.StatusNotFound,
	ErrCodeStorageInvalidInput:   http.StatusBadRequest,

	ErrCodeEventPublishFailed: http.StatusBadGateway,
	ErrCodeEventEncodeFailed:  http.StatusInternalServerError,

	ErrCodeConfigInvalid:  http.StatusInternalServerError,
	ErrCodeConfigNotFound: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",

	ErrCodeReportReadFailed:      "report could not be read",
	ErrCodeReportHeaderInvalid:   "report header is malformed",
	ErrCodeReportTruncated:       "report ended before all rows were read",
	ErrCodeReportFieldInvalid:    "report row contains an invalid field",
	ErrCodeReportIndexOutOfRange: "atom identifier out of range",
	ErrCodeReportDuplicateCell:   "matrix cell assigned twice",

	ErrCodeLabelCountMismatch: "label count does not match matrix size",
	ErrCodeFigureInvalid:      "invalid figure geometry",
	ErrCodeEncodeFailed:       "image encoding failed",
	ErrCodeFormatUnsupported:  "unsupported output format",
	ErrCodePaletteUnknown:     "unknown palette",
	ErrCodeMatrixEmpty:        "matrix is empty",
	ErrCodeOutputWriteFailed:  "output could not be written",
	ErrCodeDatasetNotFound:    "dataset not configured",

	ErrCodeStorageUploadFailed: "artifact upload failed",
	ErrCodeEventPublishFailed:  "event publish failed",
	ErrCodeConfigInvalid:       "invalid configuration",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
