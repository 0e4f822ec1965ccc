package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Metrics    *metrics.Collector
	JWT        *auth.JWTManager
	Auth       *service.AuthService
	Patients   *service.PatientService
	Histories  *service.HistoryService
	Odontogram *service.OdontogramService
	Review     *service.ReviewService
	Exports    *service.ExportService
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		RequestID(),
		Recovery(d.Log),
		Logger(d.Log),
		Metrics(d.Metrics),
		Tracing(),
		CORS(d.Config.CORS),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	rl := d.Config.RateLimit
	api := r.Group("/api/v1", RateLimit(ratelimit.PerSecond(rl.RequestsPerSecond, rl.BurstSize)))

	authH := NewAuthHandler(d.Auth, d.Odontogram)
	patientH := NewPatientHandler(d.Patients, d.Exports)
	historyH := NewHistoryHandler(d.Histories)
	workflowH := NewWorkflowHandler(d.Odontogram, d.Review)

	public := api.Group("/auth", RateLimit(ratelimit.PerMinute(rl.AuthRequestsPerMinute)))
	{
		public.POST("/sign-up", authH.SignUp)
		public.POST("/sign-in", authH.SignIn)
		public.POST("/refresh", authH.Refresh)
	}

	protected := api.Group("", Authenticate(d.JWT))
	protected.POST("/auth/sign-out", authH.SignOut)
	protected.GET("/auth/me", authH.Me)
	protected.GET("/catalog", historyH.Catalog)

	students := protected.Group("", RequireRole(domain.RoleStudent))
	professors := protected.Group("", RequireRole(domain.RoleProfessor))

	protected.GET("/patients", patientH.List)
	protected.GET("/patients/:id", patientH.Get)
	protected.GET("/patients/:id/export", patientH.Export)
	protected.GET("/patients/:id/history/field", historyH.GetField)
	protected.GET("/patients/:id/readiness", workflowH.Readiness)
	professors.GET("/patients/students", patientH.Students)

	students.POST("/patients", patientH.Create)
	students.PUT("/patients/:id/history/field", historyH.UpdateField)
	students.POST("/patients/:id/history/notes", historyH.AddNote)
	students.DELETE("/patients/:id/history/notes/:index", historyH.DeleteNote)
	students.GET("/odontogram/tool", workflowH.GetTool)
	students.PUT("/odontogram/tool", workflowH.SetTool)
	students.POST("/patients/:id/odontogram/teeth/:tooth/surfaces/:surface", workflowH.ToggleSurface)
	students.POST("/patients/:id/odontogram/teeth/:tooth/missing", workflowH.ToggleMissing)
	students.POST("/patients/:id/submit", workflowH.Submit)

	professors.POST("/patients/:id/approve", workflowH.Approve)
	professors.POST("/patients/:id/reject", workflowH.Reject)

	return r
}
