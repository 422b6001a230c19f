package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError renders transport-level failures in the same errors[] shape
// GraphQL uses for resolver errors.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apierror.CodeInternal
	message := "Internal server error"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		code = apiErr.Code
		message = apiErr.Message
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	body := model.ErrorResponse(code, message)
	if apiErr != nil && apiErr.Details != "" {
		body.Errors[0].Extensions["details"] = apiErr.Details
	}
	writeJSON(w, status, body)
}
