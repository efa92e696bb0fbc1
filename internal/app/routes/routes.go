package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rlopezj/catedra/internal/app/controllers"
	"github.com/rlopezj/catedra/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	fileController *controllers.FileController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.Use(middleware.RequestLogger())

	// --- Public auth routes ---
	auth := router.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.GET("/careers", authController.ListCareers)
	}

	// --- Authenticated account routes ---
	authProtected := router.Group("/auth")
	authProtected.Use(authMiddleware.JWTAuth())
	{
		authProtected.GET("/profile", authController.GetProfile)
		authProtected.POST("/edit_profile", authController.UpdateProfile)
		authProtected.POST("/delete_account", authController.DeleteAccount)
	}

	// --- File management routes (all authenticated) ---
	files := router.Group("/files")
	files.Use(authMiddleware.JWTAuth())
	{
		files.POST("/upload_pdf", fileController.Upload)
		files.GET("/view/:name", fileController.View)
		files.GET("/downloads/:name", fileController.Download)
		files.DELETE("/delete/:name", fileController.Delete)
		files.PUT("/rename", fileController.Rename)
		files.GET("/list_files", fileController.List)
		files.GET("/data_for_upload", fileController.UploadData)
	}
}
