package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"labmatch/internal/common"
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewError(common.CodeValidation, "request body is required", nil)
		}
		return common.NewError(common.CodeValidation, "invalid request body", err)
	}
	return nil
}

func idParam(r *http.Request, name string) (common.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := common.ParseUUID(raw)
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{name: "invalid uuid"})
	}
	return id, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}
