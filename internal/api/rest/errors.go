package rest

import (
	"encoding/json"

	"github.com/dtroode/imagestudio/internal/model"
)

// decodeError maps a non-2xx response to an APIError. Only a string detail
// is kept; validation failures send a list of objects instead.
func decodeError(op string, status int, body []byte) *model.APIError {
	apiErr := &model.APIError{Op: op, StatusCode: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return apiErr
	}
	apiErr.Detail = &detail

	return apiErr
}
