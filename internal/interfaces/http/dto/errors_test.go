package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeQuantityExceeded, http.StatusUnprocessableEntity},
		{ErrCodeVendorNotLinked, http.StatusUnprocessableEntity},
		{ErrCodeNothingOutstanding, http.StatusUnprocessableEntity},
		{ErrCodeNoVendors, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"QUANTITY_EXCEEDED", ErrCodeQuantityExceeded},
		{"VENDOR_NOT_LINKED", ErrCodeVendorNotLinked},
		{"NOTHING_OUTSTANDING", ErrCodeNothingOutstanding},
		{"NO_VENDORS", ErrCodeNoVendors},
		{"NO_ITEMS", ErrCodeBusinessRule},
		// Constructor codes collapse to invalid input
		{"INVALID_VENDOR_NAME", ErrCodeInvalidInput},
		{"INVALID_RECEIVE_NUMBER", ErrCodeInvalidInput},
		// Already normalized codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		// Unknown codes pass through untouched
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNormalizedCodesResolveToNonServerErrors(t *testing.T) {
	// Every domain code the procurement services emit must map to a
	// client-facing status, not a 500.
	domainCodes := []string{
		"NOT_FOUND",
		"ALREADY_EXISTS",
		"INVALID_INPUT",
		"INVALID_STATE",
		"CONCURRENCY_CONFLICT",
		"QUANTITY_EXCEEDED",
		"VENDOR_NOT_LINKED",
		"NOTHING_OUTSTANDING",
		"NO_VENDORS",
		"INVALID_ORDER_NUMBER",
	}

	for _, code := range domainCodes {
		t.Run(code, func(t *testing.T) {
			status := GetHTTPStatus(NormalizeErrorCode(code))
			assert.Less(t, status, http.StatusInternalServerError)
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-test-123"
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", requestID)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "order_id", Message: "must be a valid UUID"},
		{Field: "items", Message: "at least one item is required"},
	}
	resp := NewValidationErrorResponse("Validation failed", "req-456", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)
}

func TestErrorResponseJSONShape(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Order not found", "req-789")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, false, decoded["success"])
	errObj, ok := decoded["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "req-789", errObj["request_id"])
	// Success responses omit the error key entirely
	_, hasData := decoded["data"]
	assert.False(t, hasData)
}
