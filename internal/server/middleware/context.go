package middleware

import (
	"github.com/lumen-atj/lumen/backend/internal/util"
	"github.com/lumen-atj/lumen/backend/pkg/analysis"
	"github.com/lumen-atj/lumen/backend/pkg/loader/web"
	"github.com/lumen-atj/lumen/backend/pkg/logger"
	"github.com/lumen-atj/lumen/backend/pkg/ratelimit"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	HeaderClientIP  = "CF-Connecting-IP"
	HeaderRequestID = "X-Request-ID"
)

// App holds the long-lived services shared by every request.
type App struct {
	Analyzer *analysis.Analyzer
	Limiter  *ratelimit.Limiter
	Loader   *web.PageLoader

	// TrustClientIPHeader keys clients by CF-Connecting-IP. Only enable it
	// behind a proxy that overwrites the header; otherwise callers choose
	// their own quota key.
	TrustClientIPHeader bool
}

type AppContext struct {
	echo.Context
	App *App

	// ClientID keys the rate limiter.
	ClientID  string
	RequestID string
	Log       *logger.Logger
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var clientID string
			if app.TrustClientIPHeader {
				clientID = c.Request().Header.Get(HeaderClientIP)
			}
			if clientID == "" {
				clientID = c.RealIP()
			}
			clientID = util.NormalizeClientID(clientID)

			requestID, err := gonanoid.New()
			if err != nil {
				return err
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			cc := &AppContext{
				Context:   c,
				App:       app,
				ClientID:  clientID,
				RequestID: requestID,
				Log:       logger.With("request_id", requestID, "client", clientID),
			}
			return next(cc)
		}
	}
}
