package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
)

type Deps struct {
	Guard          *authmw.Guard
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	PatientHandler *PatientHandler
	RecordHandler  *RecordHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/registration", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.PUT("/refresh_token", d.AuthHandler.Refresh)
	auth.DELETE("/abort_all_sessions", d.AuthHandler.AbortAllSessions, d.Guard.RequireSuperuser)

	users := e.Group("/users")
	users.GET("/me", d.UserHandler.Me, d.Guard.RequireUser)
	users.GET("", d.UserHandler.List, d.Guard.RequireSuperuser)
	users.PATCH("/set_user_role", d.UserHandler.SetRole, d.Guard.RequireSuperuser)
	users.PATCH("/set_superuser", d.UserHandler.ToggleSuperuser, d.Guard.RequireSuperuser)
	users.PATCH("/change_password", d.UserHandler.ChangePassword, d.Guard.RequireUser)
	users.DELETE("/deactivate", d.UserHandler.Deactivate, d.Guard.RequireUser)

	patients := e.Group("/patients")
	patients.POST("", d.PatientHandler.Create, d.Guard.RequireTherapist)
	patients.GET("", d.PatientHandler.ListMine, d.Guard.RequireTherapist)
	patients.POST("/search", d.PatientHandler.Search, d.Guard.RequireUser)
	patients.GET("/:id", d.PatientHandler.Get, d.Guard.RequireTherapist)
	patients.PATCH("/:id", d.PatientHandler.Update, d.Guard.RequireTherapist)
	patients.DELETE("/:id", d.PatientHandler.Delete, d.Guard.RequireTherapist)
	patients.GET("/:id/records", d.RecordHandler.ListByPatient, d.Guard.RequireTherapist)

	records := e.Group("/records", d.Guard.RequireTherapist)
	records.POST("", d.RecordHandler.Create)
	records.GET("/:id", d.RecordHandler.Get)
	records.PATCH("/:id", d.RecordHandler.Update)
	records.DELETE("/:id", d.RecordHandler.Delete)
}
