package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is dto.Response with the payload left raw for typed decoding
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// DoJSON sends body as JSON to handler and records the response
func DoJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the response envelope and, when data is non-nil,
// decodes the payload into it
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse response: %s", w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data), "Failed to parse response data")
	}
	return env
}

// AssertErrorResponse asserts status and API error code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) Envelope {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status code: %s", w.Body.String())
	env := DecodeEnvelope(t, w, nil)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
	return env
}
