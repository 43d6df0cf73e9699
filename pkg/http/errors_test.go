package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorResponse(t *testing.T) {
	errBadSymbol := errors.New("malformed symbol")
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "invalid subject",
			err:    fmt.Errorf("run: %w", InvalidSubjectError("symbol", errBadSymbol)),
			status: http.StatusBadRequest,
			body:   `{"status":400,"message":"Bad Request","data":[{"code":"ERR_INVALID_SUBJECT","message":"malformed symbol","field":"symbol"}]}`,
		},
		{
			name:   "rate limited",
			err:    TooManyRequestsError("slow down").WithParam("retry_after_seconds", 3),
			status: http.StatusTooManyRequests,
			body:   `{"status":429,"message":"Too Many Requests","data":[{"code":"ERR_RATE_LIMITED","message":"slow down","params":{"retry_after_seconds":3}}]}`,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   `{"status":500,"message":"Internal Server Error","data":"Something went wrong"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, AppErrorResponse(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestInvalidSubjectErrorUnwraps(t *testing.T) {
	cause := errors.New("symbol required")
	err := InvalidSubjectError("symbol", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "symbol required", err.Error())

	wrapped := TooManyRequestsError("limit").WithParam("k", 1)
	wrapped.Err = errors.New("redis down")
	assert.Equal(t, "limit: redis down", wrapped.Error())
}
