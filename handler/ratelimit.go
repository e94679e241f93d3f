package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimit returns middleware restricting a route to the given rate. The
// limiter is shared across callers; excess requests get 429.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{
					Error: "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
