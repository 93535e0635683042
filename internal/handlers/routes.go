package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
)

// Routes collects what RegisterRoutes mounts. WebSocket and WriteLimiter
// are optional.
type Routes struct {
	Auth         *AuthHandler
	Courses      *CourseHandler
	Profile      *ProfileHandler
	Authn        middleware.Authenticator
	Gate         middleware.Authorizer
	WriteLimiter *middleware.RateLimiter
	WebSocket    gin.HandlerFunc
	Log          *logger.Logger
}

// RegisterRoutes mounts every endpoint on router
func RegisterRoutes(router *gin.Engine, rt Routes) {
	requireAuth := middleware.AuthMiddleware(rt.Authn, rt.Log)
	requireAdmin := middleware.AdminMiddleware(rt.Gate)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", rt.Auth.Register)
		authRoutes.POST("/login", rt.Auth.Login)
		authRoutes.POST("/logout", requireAuth, rt.Auth.Logout)
	}

	// Browsers cannot set headers on the websocket handshake, so only this
	// route also takes ?token=
	if rt.WebSocket != nil {
		router.GET("/ws", middleware.QueryTokenMiddleware(rt.Authn, rt.Log), rt.WebSocket)
	}

	writes := []gin.HandlerFunc{}
	if rt.WriteLimiter != nil {
		writes = append(writes, middleware.RateLimitMiddleware(rt.WriteLimiter))
	}

	// Admin page; the browser authenticates with the login cookie
	page := router.Group("/admin", requireAuth, requireAdmin)
	{
		page.GET("/courses", rt.Courses.CoursesPage)
		page.POST("/courses", append(writes, rt.Courses.SubmitPage)...)
		page.POST("/courses/:id/delete", append(writes, rt.Courses.DeletePage)...)
	}

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(requireAuth)
	{
		api.GET("/me", rt.Auth.GetMe)

		api.GET("/profile", rt.Profile.GetProfile)
		api.PUT("/profile", rt.Profile.UpdateProfile)
		api.DELETE("/profile", rt.Profile.ClearProfile)
		api.POST("/profile/avatar", rt.Profile.UploadAvatar)

		api.GET("/preferences/theme", rt.Profile.GetTheme)
		api.PUT("/preferences/theme", rt.Profile.SetTheme)
	}

	admin := api.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/dashboard", rt.Courses.Dashboard)
		admin.GET("/courses", rt.Courses.ListCourses)
		admin.GET("/courses/:id", rt.Courses.GetCourse)
		admin.POST("/courses", append(writes, rt.Courses.CreateCourse)...)
		admin.PUT("/courses/:id", append(writes, rt.Courses.UpdateCourse)...)
		admin.DELETE("/courses/:id", append(writes, rt.Courses.DeleteCourse)...)
	}
}
