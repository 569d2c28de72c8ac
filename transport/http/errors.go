package http

import (
	"net/http"

	"github.com/layer-3/kana-auth/core"
)

const internalErrorCode = "internal_error"

var statusByCode = map[core.Code]int{
	core.CodeInvalidInput:       http.StatusBadRequest,
	core.CodeInvalidCaptcha:     http.StatusBadRequest,
	core.CodeWeakPassword:       http.StatusBadRequest,
	core.CodeInvalidDisplayName: http.StatusBadRequest,
	core.CodeEmailTaken:         http.StatusConflict,
	core.CodeUserNotFound:       http.StatusUnauthorized,
	core.CodeWrongPassword:      http.StatusUnauthorized,
	core.CodeUnauthorized:       http.StatusUnauthorized,
}

// StatusFor maps an external error code to its HTTP status.
// Unknown codes are internal failures.
func StatusFor(code core.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
