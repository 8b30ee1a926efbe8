// Package gemini implements generation, embedding and token counting on
// the Google Gemini API.
package gemini

import (
	"errors"
	"net/http"

	"github.com/fwojciec/animgen"
	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// wrapError maps Gemini API failures onto animgen error codes. Rate
// limiting and server errors become EUNAVAILABLE so callers may retry.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var code int
	var msg string
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, msg = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr):
		code, msg = apiErrPtr.Code, apiErrPtr.Message
	default:
		return err
	}

	switch {
	case code == http.StatusTooManyRequests || code >= 500:
		return animgen.Errorf(animgen.EUNAVAILABLE, "gemini unavailable (%d): %s", code, msg)
	case code == http.StatusNotFound:
		return animgen.Errorf(animgen.ENOTFOUND, "gemini: %s", msg)
	case code == http.StatusBadRequest:
		return animgen.Errorf(animgen.EINVALID, "gemini rejected request: %s", msg)
	default:
		return animgen.Errorf(animgen.EINTERNAL, "gemini error (%d): %s", code, msg)
	}
}
