package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/handler"
	"github.com/sistemafic/sistemafic-api/internal/middleware"
	"github.com/sistemafic/sistemafic-api/internal/models"
	"github.com/sistemafic/sistemafic-api/internal/service"
	"github.com/sistemafic/sistemafic-api/pkg/config"
	"github.com/sistemafic/sistemafic-api/pkg/logger"
	corsmiddleware "github.com/sistemafic/sistemafic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sistemafic/sistemafic-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Students    *handler.StudentHandler
	Professors  *handler.ProfessorHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Geography   *handler.GeographyHandler
	Metrics     *handler.MetricsHandler
}

// New builds the gin engine with middleware and the full route table.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authenticated := middleware.JWT(auth)
	optional := middleware.OptionalJWT(auth)

	// Route shapes follow the legacy API so clients migrate without changes.
	api.POST("/token", h.Auth.Login)
	api.POST("/token/refresh", h.Auth.Refresh)
	api.POST("/logout", authenticated, h.Auth.Logout)
	api.POST("/registro/aluno", h.Users.Register)

	account := api.Group("/usuario")
	{
		account.POST("/change-password", authenticated, h.Auth.ChangePassword)
		account.POST("/reset-password", h.Auth.ForgotPassword)
		account.POST("/reset-password-confirm/:uid/:token", h.Auth.ResetPassword)
		account.GET("/me", authenticated, h.Users.Me)
	}

	usuarios := api.Group("/usuarios", authenticated)
	{
		usuarios.DELETE("/:id", middleware.RBAC("SELF", string(models.RoleCCA)), h.Users.Delete)
	}

	aluno := api.Group("/aluno/me", authenticated, middleware.RequireRoles(models.RoleAluno))
	{
		aluno.GET("", h.Students.GetProfile)
		aluno.POST("", h.Students.UpsertProfile)
		aluno.PUT("", h.Students.UpsertProfile)
		aluno.PATCH("", h.Students.UpsertProfile)
		aluno.DELETE("", h.Students.DeleteProfile)
	}

	professors := api.Group("/professores", authenticated, middleware.RequireRoles(models.RoleCCA))
	{
		professors.GET("", h.Professors.List)
		professors.GET("/:id", h.Professors.Get)
		professors.POST("", h.Professors.Create)
		professors.PUT("/:id", h.Professors.Update)
		professors.DELETE("/:id", h.Professors.Delete)
	}

	courses := api.Group("/cursos")
	{
		courses.GET("", optional, h.Courses.List)
		courses.GET("/:id", optional, h.Courses.Get)
		courses.POST("", authenticated, middleware.RequireRoles(models.RoleProfessor), h.Courses.Create)
		courses.PUT("/:id", authenticated, middleware.RequireRoles(models.RoleProfessor, models.RoleCCA), h.Courses.Update)
		courses.POST("/:id/cancelar", authenticated, middleware.RequireRoles(models.RoleCCA), h.Courses.Cancel)
		courses.GET("/:id/inscricoes/export", authenticated, middleware.RequireRoles(models.RoleProfessor, models.RoleCCA), h.Courses.ExportRoster)
	}

	enrollments := api.Group("/inscricoes-aluno", authenticated)
	{
		enrollments.POST("", middleware.RequireRoles(models.RoleAluno), h.Enrollments.Request)
		enrollments.GET("", h.Enrollments.List)
		enrollments.GET("/:id", h.Enrollments.Get)
		enrollments.GET("/:id/documentos", h.Enrollments.Documents)
		enrollments.POST("/:id/validar", middleware.RequireRoles(models.RoleCCA), h.Enrollments.Validate)
	}

	geography := api.Group("")
	{
		geography.GET("/estados", h.Geography.ListEstados)
		geography.GET("/estados/:id/municipios", h.Geography.ListMunicipiosByEstado)
		geography.GET("/municipios", h.Geography.ListMunicipios)
	}

	return r
}
