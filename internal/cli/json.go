package cli

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --format json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success" yaml:"success"`
	Data    interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty" yaml:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code" yaml:"code"`
	Message    string      `json:"message" yaml:"message"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeServerError    = "SERVER_ERROR"
	ErrCodeEmptyResponse  = "EMPTY_RESPONSE"
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// writeYAML writes data as a YAML document.
func writeYAML(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured writes data in a machine format. JSON gets the envelope,
// YAML the bare document.
func writeStructured(w io.Writer, format string, data interface{}) error {
	if format == FormatYAML {
		return writeYAML(w, data)
	}
	return WriteJSONSuccess(w, data)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var statusErr *telemetry.StatusError
	if errors.As(err, &statusErr) {
		return &JSONError{
			Code:    ErrCodeServerError,
			Message: statusErr.Error(),
			Details: map[string]interface{}{
				"url":         statusErr.URL,
				"status_code": statusErr.StatusCode,
			},
		}
	}

	if errors.Is(err, telemetry.ErrEmptyResponse) {
		return &JSONError{
			Code:    ErrCodeEmptyResponse,
			Message: err.Error(),
		}
	}

	var sbErr *sberrors.Error
	if errors.As(err, &sbErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(sbErr.Code, sbErr.Message),
			Message:    sbErr.Message,
			Suggestion: sbErr.Suggestion,
		}
		if sbErr.Request != nil {
			jsonErr.Details = map[string]interface{}{"url": sbErr.Request.URL}
		}
		return jsonErr
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case sberrors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case sberrors.ErrFetch:
		return ErrCodeFetchFailed
	case sberrors.ErrStorage:
		return ErrCodeStorageFailed
	}

	return ErrCodeUnknown
}
