package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteJSONSuccess_BasicData(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]string{"key": "value"}
	err := WriteJSONSuccess(&buf, data)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", dataMap["key"])
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONSuccess(&buf, nil))
	assert.NotContains(t, buf.String(), `"data"`)
	assert.Contains(t, buf.String(), `"success": true`)
}

func TestWriteJSONFromError_NilError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONFromError(&buf, nil))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestWriteJSONFromError_GenericError(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONFromError(&buf, fmt.Errorf("something went wrong"))
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeUnknown, env.Error.Code)
	assert.Equal(t, "something went wrong", env.Error.Message)
}

func TestWriteJSONFromError_StructuredError(t *testing.T) {
	var buf bytes.Buffer

	sbErr := sberrors.New(sberrors.ErrConfig, "Config file not found", "Run 'sensorboard init' to create one")
	require.NoError(t, WriteJSONFromError(&buf, sbErr))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigNotFound, env.Error.Code)
	assert.Equal(t, "Config file not found", env.Error.Message)
	assert.Equal(t, "Run 'sensorboard init' to create one", env.Error.Suggestion)
}

func TestWriteJSONFromError_WrappedStructuredError(t *testing.T) {
	var buf bytes.Buffer

	inner := sberrors.New(sberrors.ErrStorage, "Can't open history storage", "Check storage.path")
	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("history: %w", inner)))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeStorageFailed, env.Error.Code)
}

func TestErrorToJSON_NilReturnsNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestErrorToJSON_InternalErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config not found", sberrors.New(sberrors.ErrConfig, "Config file not found", ""), ErrCodeConfigNotFound},
		{"couldn't find", sberrors.New(sberrors.ErrConfig, "Couldn't find sensor foo", ""), ErrCodeConfigNotFound},
		{"config invalid", sberrors.New(sberrors.ErrConfig, "server_url is not a valid URL", ""), ErrCodeConfigInvalid},
		{"fetch", sberrors.New(sberrors.ErrFetch, "Server status unavailable", ""), ErrCodeFetchFailed},
		{"storage", sberrors.New(sberrors.ErrStorage, "Can't read history", ""), ErrCodeStorageFailed},
		{"ui", sberrors.New(sberrors.ErrUI, "Dashboard crashed", ""), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestErrorToJSON_StatusError(t *testing.T) {
	err := fmt.Errorf("status: %w", &telemetry.StatusError{
		URL:        "http://example.test/status",
		StatusCode: 503,
	})

	got := ErrorToJSON(err)

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeServerError, got.Code)
	details, ok := got.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 503, details["status_code"])
	assert.Equal(t, "http://example.test/status", details["url"])
}

func TestErrorToJSON_EmptyResponse(t *testing.T) {
	err := fmt.Errorf("GET /status: %w", telemetry.ErrEmptyResponse)

	got := ErrorToJSON(err)

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeEmptyResponse, got.Code)
}

func TestErrorToJSON_TransportBeforeStructured(t *testing.T) {
	// A fetch error wrapping a server status keeps the more specific code.
	err := sberrors.WrapWithCode(&telemetry.StatusError{URL: "u", StatusCode: 500},
		sberrors.ErrFetch, "Server status unavailable", "")

	got := ErrorToJSON(err)

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeServerError, got.Code)
}

func TestErrorToJSON_UnreachableServerKeepsURL(t *testing.T) {
	err := sberrors.WrapWithCode(&telemetry.RequestError{URL: "http://localhost:8000/status", Err: fmt.Errorf("connection refused")},
		sberrors.ErrFetch, "Couldn't get the status", "")

	got := ErrorToJSON(err)

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeFetchFailed, got.Code)
	details, ok := got.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8000/status", details["url"])
}

func TestMapErrorCode_UnknownCode(t *testing.T) {
	assert.Equal(t, ErrCodeUnknown, mapErrorCode("SOMETHING", "whatever"))
}

func TestJSONError_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(&JSONError{Code: ErrCodeUnknown, Message: "boom"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"suggestion"`)
	assert.NotContains(t, string(data), `"details"`)
}

func TestWriteJSONEnvelope_Formatting(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONSuccess(&buf, map[string]string{"test": "value"}))

	output := buf.String()
	assert.Contains(t, output, "\n  ")
	assert.True(t, output[len(output)-1] == '\n')
}

func TestWriteStructured_YAML(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]int{"requests": 61, "succeeded": 60}
	require.NoError(t, writeStructured(&buf, FormatYAML, data))

	var decoded map[string]int
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, data, decoded)
	assert.NotContains(t, buf.String(), "success")
}

func TestWriteStructured_JSONUsesEnvelope(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeStructured(&buf, FormatJSON, map[string]int{"requests": 1}))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestErrorCodes_AreUnique(t *testing.T) {
	codes := []string{
		ErrCodeConfigNotFound,
		ErrCodeConfigInvalid,
		ErrCodeServerError,
		ErrCodeEmptyResponse,
		ErrCodeFetchFailed,
		ErrCodeStorageFailed,
		ErrCodeUnknown,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate error code: %s", code)
		seen[code] = true
	}
}
