package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Envelope is the JSON body of every account response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

// ErrorEnvelope is the JSON body of every failed account response.
type ErrorEnvelope struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusFor maps an error category to its HTTP status.
func StatusFor(err error) int {
	richErr := toRichError(err)
	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryAuth:
		return router.StatusUnauthorized
	case errors.CategoryAuthz:
		return router.StatusForbidden
	}
	return router.StatusInternalServerError
}

// ErrorResponder writes rich errors as JSON. Internal failures are logged
// with their metadata and answered with a generic message.
type ErrorResponder struct {
	Logger Logger
}

func NewErrorResponder(logger Logger) *ErrorResponder {
	if logger == nil {
		logger = defLogger{}
	}
	return &ErrorResponder{Logger: logger}
}

func (r *ErrorResponder) Handle(c router.Context, err error) error {
	richErr := toRichError(err)
	status := StatusFor(richErr)

	body := ErrorEnvelope{
		Message: richErr.Message,
		Code:    richErr.TextCode,
	}

	if status >= router.StatusInternalServerError {
		r.Logger.Error("%s %s failed: %s details=%s",
			c.Method(), c.Path(), richErr.Error(), print.MaybePrettyJSON(richErr.Metadata))
		body.Message = "An unexpected server error occurred"
	} else if fields, ok := richErr.Metadata["fields"].(map[string]any); ok {
		body.Details = fields
	}

	return c.JSON(status, body)
}

func toRichError(err error) *errors.Error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return asRichError(err, "An unexpected server error occurred")
}
