package app

import (
	"aicourse_backend/docs"
	"aicourse_backend/internal/middleware"
	"aicourse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.ActivityMiddleware(repos.user))
	{
		api.POST("/users", c.user.CreateUser)
		api.GET("/users/:id", c.user.GetUser)
		api.DELETE("/users/:id", c.user.DeleteUser)

		api.POST("/courses", c.course.CreateCourse)
		api.GET("/courses", c.course.ListCourses)
		api.GET("/courses/:id", c.course.GetCourse)
		api.PATCH("/courses/:id", c.course.UpdateCourse)
		api.DELETE("/courses/:id", c.course.DeleteCourse)
		api.POST("/courses/:id/regenerate", c.course.RegenerateCourse)

		api.GET("/modules/:id", c.module.GetModule)
		api.PATCH("/modules/:id", c.module.UpdateModule)
		api.GET("/modules/:id/questions", c.module.ListQuestions)

		api.GET("/questions/due", c.question.GetDueQuestions)
		api.GET("/questions/:id", c.question.GetQuestion)
		api.POST("/questions/:id/answer", c.question.SubmitAnswer)
		api.POST("/questions/:id/rate", c.question.RateQuestion)
		api.POST("/questions/:id/learn", c.question.MarkLearned)

		api.POST("/materials", c.material.UploadMaterial)
	}
}
