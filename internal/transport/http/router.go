package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/hrlmwn/feedgram/internal/handlers"
	authmw "github.com/hrlmwn/feedgram/internal/middleware/auth"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	Guard       *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")

	auth.POST("/register", d.AuthHandler.Register)
	auth.PUT("/verify-email", d.AuthHandler.VerifyEmail)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/refresh-token", d.AuthHandler.RefreshToken)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.POST("/reset-password/:linkToken", d.AuthHandler.ResetPassword)
	auth.GET("/isAuthenticated", d.AuthHandler.IsAuthenticated)

	auth.POST("/logout", d.AuthHandler.Logout, d.Guard.RequireAccessToken)
}
