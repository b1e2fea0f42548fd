package httpapi

import (
	"errors"
	"net/http"

	"alshuail-fund/internal/service"
)

// Response is the common envelope: {success, message?, data?}.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(data any) Response {
	return Response{Success: true, Data: data}
}

func okMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

func fail(message string) Response {
	return Response{Success: false, Message: message}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation errors keep their Arabic message; internal detail stays in the
// logs, not the body.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, fail(ve.Message))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, fail("العضو غير موجود"))
	case errors.Is(err, service.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, fail("الخدمة غير متاحة حالياً، يرجى المحاولة لاحقاً"))
	default:
		writeJSON(w, http.StatusInternalServerError, fail("حدث خطأ غير متوقع"))
	}
}
