package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/controllers"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/middleware"
	"github.com/yigit/rea/internal/pkg/metrics"
)

// Handlers bundles the controllers and middleware the router mounts
type Handlers struct {
	Auth           *controllers.AuthController
	User           *controllers.UserController
	Instrument     *controllers.InstrumentController
	UserInstrument *controllers.UserInstrumentController
	Exercise       *controllers.ExerciseController
	Stats          *controllers.StatsController
	AuthMiddleware *middleware.AuthMiddleware
	LoginLimiter   *middleware.RateLimiter
}

// SetupRouter configures all application routes.
// Collection and detail paths keep their trailing slash.
func SetupRouter(router *gin.Engine, h Handlers) {
	api := router.Group("/api")
	api.Use(h.AuthMiddleware.Authenticate())

	// --- Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.LoginLimiter.Handler(), h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// --- User routes ---
	users := api.Group("/users")
	{
		users.GET("/", h.User.ListUsers)
		users.POST("/", h.Auth.Register) // signup starts a session
		users.GET("/teachers/", h.User.ListTeachers)
		users.GET("/students/", h.User.ListStudents)
		users.GET("/me/", h.User.GetMe)
		users.GET("/:id/", h.User.GetUser)
		users.PUT("/:id/", h.User.UpdateUser)
		users.PATCH("/:id/", h.User.PatchUser)
		users.DELETE("/:id/", h.User.DeleteUser)
		users.GET("/:id/instruments/", h.User.GetUserInstruments)
		users.POST("/:id/instruments/", h.User.AddUserInstrument)
	}

	// --- Instrument routes ---
	instruments := api.Group("/instruments")
	{
		instruments.GET("/", h.Instrument.ListInstruments)
		instruments.POST("/", h.Instrument.CreateInstrument)
		instruments.GET("/:id/", h.Instrument.GetInstrument)
		instruments.PUT("/:id/", h.Instrument.UpdateInstrument)
		instruments.PATCH("/:id/", h.Instrument.PatchInstrument)
		instruments.DELETE("/:id/", h.Instrument.DeleteInstrument)
	}

	// --- User instrument routes ---
	userInstruments := api.Group("/user-instruments")
	{
		userInstruments.GET("/", h.UserInstrument.ListUserInstruments)
		userInstruments.POST("/", h.UserInstrument.CreateUserInstrument)
		userInstruments.GET("/:id/", h.UserInstrument.GetUserInstrument)
		userInstruments.PUT("/:id/", h.UserInstrument.UpdateUserInstrument)
		userInstruments.PATCH("/:id/", h.UserInstrument.PatchUserInstrument)
		userInstruments.DELETE("/:id/", h.UserInstrument.DeleteUserInstrument)
	}

	// --- Exercise routes ---
	exercises := api.Group("/exercises")
	{
		exercises.GET("/", h.Exercise.ListExercises)
		exercises.POST("/", h.Exercise.CreateExercise)
		exercises.GET("/stats/", h.Exercise.GetExerciseStats)
		exercises.GET("/:id/", h.Exercise.GetExercise)
		exercises.PUT("/:id/", h.Exercise.UpdateExercise)
		exercises.PATCH("/:id/", h.Exercise.UpdateExercise)
		exercises.DELETE("/:id/", h.Exercise.DeleteExercise)
	}

	api.GET("/stats/", h.Stats.GetStats)

	// Health check endpoint (public)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
