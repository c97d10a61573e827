package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestResponseListCarriesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseList(rec, "Vendors retrieved", []string{"a", "b"}, 2)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["status"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "Vendors retrieved", body["message"])
}

func TestResponseItemCountsNilAsZero(t *testing.T) {
	rec := httptest.NewRecorder()
	var missing *struct{}
	ResponseItem(rec, "ok", missing)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Nil(t, body["data"])
}

func TestErrorResponsesOmitCount(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseNotFound(rec, "Vendor not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["status"])
	_, hasCount := body["count"]
	assert.False(t, hasCount)
	_, hasData := body["data"]
	assert.True(t, hasData, "data must always be present")
}

func TestResponseTooManyRequests(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseTooManyRequests(rec, "slow down", map[string]int{"remainingMinutes": 4})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(4), data["remainingMinutes"])
}
