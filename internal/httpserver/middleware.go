package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/authstate"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/logging"
)

func Common() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Secure(),
		ecM.CORS(),
	}
}

// RequestLogger binds a request-scoped slog into the context so services and
// the pipeline log with method/path/request id attached.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)

			l := base.With(
				"method", c.Request().Method,
				"path", c.Path(),
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
			}

			req := c.Request().WithContext(logging.IntoContext(c.Request().Context(), l))
			c.SetRequest(req)

			start := time.Now()
			err := next(c)
			dur := time.Since(start)
			status := c.Response().Status

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
				status = c.Response().Status
			}

			switch {
			case err != nil || status >= 500:
				l.Error("request completed", "status", status, "duration_ms", dur.Milliseconds())
			case status >= 400:
				l.Warn("request completed", "status", status, "duration_ms", dur.Milliseconds())
			default:
				l.Info("request completed", "status", status, "duration_ms", dur.Milliseconds())
			}
			return nil
		}
	}
}

// RequireAuth is the route guard for the storefront: it only reads the auth
// state, never touches token storage.
func RequireAuth(auth *authstate.State) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := auth.Current()
			if snap.Loading {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session initializing")
			}
			if snap.User == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			c.Set("user", snap.User)
			return next(c)
		}
	}
}

func RequireAdmin(auth *authstate.State) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := auth.Current()
			if !snap.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *backend.User {
	u, _ := c.Get("user").(*backend.User)
	return u
}
