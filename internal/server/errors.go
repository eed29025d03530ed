package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s, auth and rate limit rejections) have
// consistent JSON format
func JSONErrorHandler(devMode bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		// Handle Echo HTTP errors (like 404, 401, 429)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			resp := ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			}
			if devMode {
				resp.Details = map[string]any{"err": fmt.Sprint(he.Message)}
			}
			_ = c.JSON(he.Code, resp)
			return
		}

		// Handle all other errors as internal server error
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}
