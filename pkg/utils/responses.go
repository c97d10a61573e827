package utils

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// Response is the envelope every endpoint answers with.
// Data is always present (null when empty); Count only on list and item responses.
type Response struct {
	Status  bool   `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, code int, status bool, message string, data any, count *int, errors any) {
	response := Response{
		Status:  status,
		Data:    data,
		Message: message,
		Count:   count,
		Errors:  errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// ------------- Success responses -------------

// returns 200 OK without count
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, true, message, data, nil, nil)
}

// ResponseItem returns 200 with count 1, or 0 when there is nothing to return.
func ResponseItem(w http.ResponseWriter, message string, data any) {
	count := 1
	if isNil(data) {
		count = 0
	}
	ResponseJSON(w, http.StatusOK, true, message, data, &count, nil)
}

// ResponseList returns 200 with an explicit count (page size or total).
func ResponseList(w http.ResponseWriter, message string, data any, count int) {
	ResponseJSON(w, http.StatusOK, true, message, data, &count, nil)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	count := 1
	if isNil(data) {
		count = 0
	}
	ResponseJSON(w, http.StatusCreated, true, message, data, &count, nil)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseJSON(w, http.StatusBadRequest, false, message, nil, nil, errors)
}

// ResponseBadRequestData is a 400 that carries data, e.g. remaining OTP attempts.
func ResponseBadRequestData(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusBadRequest, false, message, data, nil, nil)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusUnauthorized, false, message, nil, nil, nil)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusForbidden, false, message, nil, nil, nil)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, false, message, nil, nil, nil)
}

// returns 409 Conflict
func ResponseConflict(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusConflict, false, message, nil, nil, nil)
}

// returns 423 Locked
func ResponseLocked(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusLocked, false, message, nil, nil, nil)
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusTooManyRequests, false, message, data, nil, nil)
}

// returns 503 Service Unavailable
func ResponseServiceUnavailable(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusServiceUnavailable, false, message, nil, nil, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, false, message, nil, nil, nil)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
