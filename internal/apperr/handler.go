package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrlmwn/feedgram/internal/logging"
)

// HTTPErrorHandler is the single boundary mapping the error taxonomy to
// responses. Validation and domain errors are surfaced as-is; everything
// else is logged with detail and answered with an opaque 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		validationErr *ValidationError
		domainErr     *DomainError
		echoErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		_ = c.JSON(http.StatusBadRequest, echo.Map{"errors": validationErr.Fields})
	case errors.As(err, &domainErr):
		_ = c.JSON(domainErr.Status, echo.Map{"message": domainErr.Message})
	case errors.As(err, &echoErr):
		// routing-level errors (404, 405) raised by echo itself
		_ = c.JSON(echoErr.Code, echo.Map{"message": echoErr.Message})
	default:
		l := logging.FromContext(c.Request().Context())
		l.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "error", err)
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong"})
	}
}
