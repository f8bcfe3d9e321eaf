package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"listky/internal/auth"
	"listky/internal/cache"
	"listky/internal/config"
	"listky/internal/errors"
	"listky/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	cacheClient *cache.Client,
	jwtService *auth.JWTService,
	sessionStore auth.SessionStoreInterface,
	authHandler *handler.AuthHandler,
	listHandler *handler.ListHandler,
	trendingHandler *handler.TrendingHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		status := map[string]string{"status": "ok", "cache": "ok"}
		if !cacheClient.Ping(c.Request().Context()) {
			// cache is fail-safe, so a dead redis degrades rather than fails
			status["cache"] = "unavailable"
		}
		return c.JSON(http.StatusOK, status)
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/claim", authHandler.Claim)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/trending", trendingHandler.Trending)

	// Public profile: a user's public lists. Echo routes static segments like
	// /trending ahead of this, so the param route is safe at /api/:username.
	api.GET("/:username", listHandler.Profile)

	// Public list URL: /{username}/{slug}. Session is optional here so owners
	// can open their private lists at the same URL.
	api.GET("/:username/:slug", listHandler.Get, optionalSession(jwtService, sessionStore))

	// Secured routes (require a live session)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.SessionSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), requireSession(sessionStore))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", authHandler.Me)
	secured.PUT("/me/trending", authHandler.SetTrendingOptIn)
	secured.POST("/me/lists", listHandler.Create)
	secured.GET("/me/lists", listHandler.Mine)
	secured.PUT("/me/lists/:slug", listHandler.Update)
	secured.DELETE("/me/lists/:slug", listHandler.Delete)
}

// requireSession checks the token's JTI against the session store, so logout
// revokes a token before its JWT expiry, and binds the username to the context.
func requireSession(sessionStore auth.SessionStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return sessionError()
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.ID == "" {
				return sessionError()
			}
			username, err := sessionStore.GetSession(c.Request().Context(), claims.ID)
			if err != nil || username != claims.Username {
				return sessionError()
			}
			c.Set("username", claims.Username)
			return next(c)
		}
	}
}

// optionalSession binds the username when a valid session token is present
// and silently continues as anonymous otherwise.
func optionalSession(jwtService *auth.JWTService, sessionStore auth.SessionStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if len(header) > len(prefix) && header[:len(prefix)] == prefix {
				if claims, err := jwtService.ValidateToken(header[len(prefix):]); err == nil && claims.ID != "" {
					if username, err := sessionStore.GetSession(c.Request().Context(), claims.ID); err == nil && username == claims.Username {
						c.Set("username", claims.Username)
					}
				}
			}
			return next(c)
		}
	}
}

func sessionError() error {
	httpErr := errors.MapErrorToHTTP(errors.ErrInvalidSession)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
