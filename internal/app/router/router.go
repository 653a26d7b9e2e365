// Package router registers every route of the API once at start-up.
package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	authhandler "internship_backend/internal/feature/auth/transport/handler"
	authdto "internship_backend/internal/feature/auth/transport/http/dto"
	collegehandler "internship_backend/internal/feature/college/transport/handler"
	collegedto "internship_backend/internal/feature/college/transport/http/dto"
	companyhandler "internship_backend/internal/feature/company/transport/handler"
	companydto "internship_backend/internal/feature/company/transport/http/dto"
	internshiphandler "internship_backend/internal/feature/internship/transport/handler"
	internshipdto "internship_backend/internal/feature/internship/transport/http/dto"
	studenthandler "internship_backend/internal/feature/student/transport/handler"
	studentdto "internship_backend/internal/feature/student/transport/http/dto"
	platformhandler "internship_backend/internal/platform/http/handler"
	"internship_backend/internal/platform/http/middleware"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/metrics"
	"internship_backend/internal/platform/upload"
	"internship_backend/internal/platform/validation"
	"internship_backend/internal/shared/ratelimiter"
	"internship_backend/internal/shared/role"
)

// Handlers groups the feature handlers.
type Handlers struct {
	Auth       *authhandler.AuthHandler
	Company    *companyhandler.CompanyHandler
	College    *collegehandler.CollegeHandler
	Student    *studenthandler.StudentHandler
	Internship *internshiphandler.InternshipHandler
}

// Deps holds the gates and platform services the routes are built from.
type Deps struct {
	Tokens         jwtmw.TokenParser
	Identities     jwtmw.IdentityResolver
	Files          upload.FileStore
	MaxFileSize    int64
	LoginLimiter   ratelimiter.Limiter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Log            *slog.Logger
	RequestTimeout time.Duration
	CORSOrigins    []string
	HealthChecks   []platformhandler.Check
}

var documents = upload.AnyOf(upload.Images, upload.PDF)

func (d Deps) uploads(fields ...upload.FieldSpec) gin.HandlerFunc {
	return upload.Gate(upload.Config{
		Store:       d.Files,
		MaxFileSize: d.MaxFileSize,
		Fields:      fields,
		Observer:    d.Metrics,
	})
}

func NewRouter(h Handlers, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Log),
		middleware.Recovery(),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.CORSOrigins...),
		middleware.Timeout(d.RequestTimeout),
	)

	// 認証不要
	health := platformhandler.Health(d.HealthChecks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.GET("/metrics", middleware.MetricsHandler(d.Gatherer))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", validation.JSON[authdto.RegisterReq](), h.Auth.Register)
		authGroup.POST("/login",
			middleware.RateLimit("login", d.LoginLimiter, d.Metrics),
			validation.JSON[authdto.LoginReq](),
			h.Auth.Login)
		authGroup.GET("/verify-email", validation.Query[authdto.VerifyEmailQuery](), h.Auth.VerifyEmail)
		authGroup.POST("/resend-verification",
			middleware.RateLimit("resend", d.LoginLimiter, d.Metrics),
			validation.JSON[authdto.ResendVerificationReq](),
			h.Auth.ResendVerification)
		authGroup.POST("/refresh", validation.JSON[authdto.RefreshReq](), h.Auth.Refresh)
		authGroup.POST("/logout", validation.JSON[authdto.RefreshReq](), h.Auth.Logout)
	}

	// 認証必須のルート
	protected := r.Group("/")
	protected.Use(jwtmw.AuthRequired(d.Tokens, d.Identities))
	{
		protected.GET("/auth/me", h.Auth.Me)
		protected.GET("/uploads/:name", platformhandler.Files(d.Files))
		protected.GET("/colleges", h.College.ListColleges)
		protected.GET("/internships", validation.Query[internshipdto.ListInternshipsQuery](), h.Internship.List)
		protected.GET("/internships/:id", h.Internship.Get)
	}

	admin := protected.Group("/")
	admin.Use(jwtmw.RequireRole(role.Admin))
	{
		admin.GET("/college/profile", h.College.GetProfile)
		admin.PUT("/college/profile",
			d.uploads(
				upload.FieldSpec{Name: collegehandler.FieldIDProof, Accept: documents},
				upload.FieldSpec{Name: collegehandler.FieldAuthLetter, Accept: documents},
			),
			validation.Form[collegedto.CollegeProfileForm](),
			h.College.UpdateProfile)
		admin.GET("/college/students", h.College.ListStudents)
	}

	company := protected.Group("/")
	company.Use(jwtmw.RequireRole(role.Company))
	{
		company.GET("/company/profile", h.Company.GetProfile)
		company.POST("/company/profile",
			d.uploads(
				upload.FieldSpec{Name: companyhandler.FieldLogo, Accept: upload.Images},
				upload.FieldSpec{Name: companyhandler.FieldAuthLetter, Accept: documents},
			),
			validation.Form[companydto.CompanyProfileForm](),
			h.Company.SaveProfile)
		company.POST("/internships", validation.JSON[internshipdto.InternshipReq](), h.Internship.Create)
		company.PUT("/internships/:id", validation.JSON[internshipdto.InternshipReq](), h.Internship.Update)
		company.DELETE("/internships/:id", h.Internship.Delete)
		company.GET("/internships/:id/applications", h.Internship.ListApplications)
		company.PATCH("/applications/:id/status",
			validation.JSON[internshipdto.UpdateApplicationStatusReq](),
			h.Internship.UpdateApplicationStatus)
	}

	student := protected.Group("/")
	student.Use(jwtmw.RequireRole(role.Student))
	{
		student.GET("/student/profile", h.Student.GetProfile)
		student.POST("/student/profile",
			d.uploads(
				upload.FieldSpec{Name: studenthandler.FieldPhoto, Accept: upload.Images},
				upload.FieldSpec{Name: studenthandler.FieldSignature, Accept: upload.Images},
				upload.FieldSpec{Name: studenthandler.FieldResume, Accept: upload.PDF},
			),
			validation.Form[studentdto.StudentProfileForm](),
			h.Student.SaveProfile)
		student.POST("/student/link-college", validation.JSON[studentdto.LinkCollegeReq](), h.Student.LinkCollege)
		student.POST("/internships/:id/applications", validation.JSON[internshipdto.ApplyReq](), h.Internship.Apply)
		student.GET("/student/applications", h.Internship.ListMyApplications)
	}

	return r
}
