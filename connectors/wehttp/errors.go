package wehttp

import (
	"net/http"

	"github.com/weegigs/wee-contracts-go/we"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusCode maps contract host errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case we.IsDeserializationError(err), we.IsInvalidAddress(err):
		return http.StatusBadRequest
	case we.IsStateMissing(err), we.IsEntryNotFound(err):
		return http.StatusNotFound
	case we.IsRevisionConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
