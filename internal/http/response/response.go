package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"labmatch/internal/common"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes a domain error as a JSON body with the matching HTTP status.
// Unknown errors are masked as a generic 500 so internals never leak.
func Error(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	payload := errorPayload{Code: code, Message: "internal error"}
	var domainErr *common.Error
	if errors.As(err, &domainErr) {
		payload.Message = domainErr.Message
		payload.Fields = domainErr.Fields
	}
	if code == common.CodeInternal {
		payload.Message = "internal error"
		payload.Fields = nil
	}
	JSON(w, statusOf(code), errorBody{Error: payload})
}

func statusOf(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
