package errors

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	if lErr, ok := As(err); ok {
		return formatUserError(lErr)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(lErr *LurlError) string {
	switch lErr.Type {
	case ErrorTypeValidation:
		return formatValidationError(lErr)
	case ErrorTypeTransport:
		return formatTransportError(lErr)
	case ErrorTypeUpstream:
		return formatUpstreamError(lErr)
	case ErrorTypeConfig:
		return formatConfigError(lErr)
	case ErrorTypeDecoding:
		return fmt.Sprintf("Could not decode response: %s", lErr.Error())
	default:
		return lErr.Message
	}
}

func formatValidationError(lErr *LurlError) string {
	msg := lErr.Message
	if field, ok := lErr.Context["field"]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatTransportError(lErr *LurlError) string {
	msg := lErr.Error()
	if fn, ok := lErr.Context["function"]; ok {
		msg = fmt.Sprintf("Invoking %s failed: %s", fn, msg)
	}
	return msg
}

// Upstream messages come straight from the Lambda API and are shown as-is.
func formatUpstreamError(lErr *LurlError) string {
	if status, ok := lErr.Context["status_code"]; ok {
		return fmt.Sprintf("%s (status %v)", lErr.Message, status)
	}
	return lErr.Message
}

func formatConfigError(lErr *LurlError) string {
	msg := lErr.Message

	if configType, ok := lErr.Context["config_type"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", configType, msg)
	}

	return msg
}

// PresentError displays an error to the user through centralized zerolog system
func PresentError(err error) {
	if err == nil {
		return
	}

	if lErr, ok := As(err); ok {
		event := log.Fatal()

		// Add context fields as structured data
		for key, value := range lErr.Context {
			event = event.Interface(key, value)
		}
		if lErr.Cause != nil {
			event = event.AnErr("cause", lErr.Cause)
		}

		event.Str("kind", string(lErr.Type)).Msg(lErr.Message)
	} else {
		log.Fatal().Err(err).Msg("")
	}
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	if lErr, ok := As(err); ok {
		info["type"] = string(lErr.Type)
		info["message"] = lErr.Message
		info["context"] = lErr.Context

		if lErr.Cause != nil {
			info["cause"] = lErr.Cause.Error()
		}
	}

	return info
}
