package app

import (
	"context"
	"seclink_backend/docs"
	"seclink_backend/internal/config"
	"seclink_backend/internal/middleware"
	"seclink_backend/internal/model"
	"seclink_backend/pkg/monitoring"
	"seclink_backend/pkg/security"
	"seclink_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func newRouter(ctx context.Context, cfg *config.Config, c *controllers, auth middleware.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddlewares(ctx, router, cfg)
	registerRoutes(router, c, auth)
	return router
}

func setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func registerRoutes(router *gin.Engine, c *controllers, auth middleware.Authenticator) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(auth))
	{
		registerAccountRoutes(authGroup, c)
		registerSchoolRoutes(authGroup, c)
		registerGradeRoutes(authGroup, c)
		registerNotificationRoutes(authGroup, c)
		registerMaterialRoutes(authGroup, c)
	}
}

func registerPublicRoutes(router *gin.Engine, c *controllers) {
	router.GET("/", c.health.Welcome)
	router.GET("/welcome", c.health.Welcome)

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/signup", c.auth.Signup)
		public.POST("/login", c.auth.Login)
		public.POST("/password-reset-request", c.auth.RequestPasswordReset)
		public.POST("/password-reset-confirm", c.auth.ConfirmPasswordReset)
	}
}

func registerAccountRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/check-session", c.auth.CheckSession)
	api.DELETE("/logout", c.auth.Logout)

	teachers := api.Group("/teachers")
	{
		teachers.GET("", c.account.ListTeachers)
		teachers.GET("/:id", c.account.GetTeacher)
		teachers.PUT("/:id", middleware.RoleMiddleware(model.RoleTeacher), c.account.UpdateTeacher)
		teachers.DELETE("/:id", middleware.RoleMiddleware(model.RoleTeacher), c.account.DeleteTeacher)
	}

	parents := api.Group("/parents")
	{
		parents.GET("", c.account.ListParents)
		parents.GET("/:id", c.account.GetParent)
		parents.PUT("/:id", middleware.RoleMiddleware(model.RoleParent), c.account.UpdateParent)
		parents.DELETE("/:id", middleware.RoleMiddleware(model.RoleParent), c.account.DeleteParent)
	}
}

func registerSchoolRoutes(api *gin.RouterGroup, c *controllers) {
	teacherOnly := middleware.RoleMiddleware(model.RoleTeacher)

	classes := api.Group("/classes")
	{
		classes.GET("", c.class.ListClasses)
		classes.GET("/:id", c.class.GetClass)
		classes.POST("", teacherOnly, c.class.CreateClass)
		classes.PUT("/:id", teacherOnly, c.class.UpdateClass)
		classes.DELETE("/:id", teacherOnly, c.class.DeleteClass)
	}

	subjects := api.Group("/subjects")
	{
		subjects.GET("", c.subject.ListSubjects)
		subjects.GET("/:id", c.subject.GetSubject)
		subjects.POST("", teacherOnly, c.subject.CreateSubject)
		subjects.PUT("/:id", teacherOnly, c.subject.UpdateSubject)
		subjects.DELETE("/:id", teacherOnly, c.subject.DeleteSubject)
	}

	students := api.Group("/students")
	{
		students.GET("", c.student.ListStudents)
		students.GET("/:id", c.student.GetStudent)
		students.POST("", teacherOnly, c.student.CreateStudent)
		students.PUT("/:id", teacherOnly, c.student.UpdateStudent)
		students.DELETE("/:id", teacherOnly, c.student.DeleteStudent)
		students.POST("/:id/subjects", teacherOnly, c.student.EnrollSubject)
		students.POST("/:id/account", teacherOnly, c.student.CreateStudentAccount)
		students.GET("/:id/learning-materials", c.student.ListStudentMaterials)
	}
}

func registerGradeRoutes(api *gin.RouterGroup, c *controllers) {
	grades := api.Group("/students/:id")
	{
		grades.GET("/grades", c.grade.ListGrades)
		grades.POST("/grades", middleware.RoleMiddleware(model.RoleTeacher), c.grade.AddGrade)
		grades.GET("/overall-grade", c.grade.GetOverall)
		grades.POST("/overall-grade", middleware.RoleMiddleware(model.RoleTeacher), c.grade.RecomputeOverall)
	}
}

func registerNotificationRoutes(api *gin.RouterGroup, c *controllers) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", c.notification.ListNotifications)
		notifications.GET("/:id", c.notification.GetNotification)
		notifications.POST("", middleware.RoleMiddleware(model.RoleTeacher), c.notification.SendNotification)
		notifications.DELETE("/:id", middleware.RoleMiddleware(model.RoleTeacher), c.notification.DeleteNotification)
	}
}

func registerMaterialRoutes(api *gin.RouterGroup, c *controllers) {
	materials := api.Group("/learning-materials")
	{
		materials.GET("", c.material.ListMaterials)
		materials.GET("/:id", c.material.GetMaterial)
		materials.GET("/:id/download", c.material.DownloadMaterial)
		materials.POST("/upload", middleware.RoleMiddleware(model.RoleTeacher), c.material.UploadMaterial)
		materials.DELETE("/:id", middleware.RoleMiddleware(model.RoleTeacher), c.material.DeleteMaterial)
	}
}
