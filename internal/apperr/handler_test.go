package apperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	HTTPErrorHandler(err, c)
	return rec
}

func TestHTTPErrorHandlerValidation(t *testing.T) {
	rec := handle(t, Validation(map[string]string{"email": "invalid email address"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"errors":{"email":"invalid email address"}}`, rec.Body.String())
}

func TestHTTPErrorHandlerDomain(t *testing.T) {
	rec := handle(t, NotAllowed("action is stopped by server"))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.JSONEq(t, `{"message":"action is stopped by server"}`, rec.Body.String())
}

func TestHTTPErrorHandlerOpaqueDefault(t *testing.T) {
	rec := handle(t, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"something went wrong"}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHTTPErrorHandlerEchoPassthrough(t *testing.T) {
	rec := handle(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
}
