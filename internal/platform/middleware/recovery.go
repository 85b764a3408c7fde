package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts a handler panic into a 500. The response carries the
// request id so a caller's error report can be matched to the stack trace in
// the server log.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				rid, _ := c.Get("request_id").(string)

				logger.Error().
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Str("panic", fmt.Sprint(r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"message":    "internal server error",
					"request_id": rid,
				})
			}()
			return next(c)
		}
	}
}
