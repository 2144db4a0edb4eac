package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http/middleware"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
)

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	schoolHandler SchoolHandler,
	reportHandler ReportHandler,
	uploadsDir string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Static file server for attendance photos
	fileServer := http.FileServer(http.Dir(uploadsDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	r.Route("/api", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Get("/schools/dropdown", schoolHandler.Dropdown)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/attendance", func(r chi.Router) {
				// Teachers and principals
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStaff)
					r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/", attendanceHandler.CheckIn)
					r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/checkout", attendanceHandler.CheckOut)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/today", attendanceHandler.GetToday)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/history", attendanceHandler.GetHistory)
				})

				// Principal over teachers
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePrincipal)
					r.Get("/school", attendanceHandler.ListSchool)
					r.Get("/export", attendanceHandler.ExportSchool)
					r.With(middleware.RequirePermission(user.PermissionAttendanceApproveTeacher)).Put("/{id}/approve", attendanceHandler.Approve)
					r.With(middleware.RequirePermission(user.PermissionAttendanceApproveTeacher)).Put("/{id}/reject", attendanceHandler.Reject)
				})

				// Admin over principals
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.With(middleware.RequirePermission(user.PermissionAttendanceStats)).Get("/stats", attendanceHandler.GetStats)
					r.Route("/principals", func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceViewPrincipals))
						r.Get("/", attendanceHandler.ListPrincipals)
						r.Get("/export", attendanceHandler.ExportPrincipals)
						r.With(middleware.RequirePermission(user.PermissionAttendanceApprovePrincipal)).Put("/{id}/approve", attendanceHandler.ApprovePrincipal)
						r.With(middleware.RequirePermission(user.PermissionAttendanceApprovePrincipal)).Put("/{id}/reject", attendanceHandler.RejectPrincipal)
					})
				})
			})

			r.Route("/schools", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(middleware.RequirePermission(user.PermissionSchoolManage))
				r.Get("/", schoolHandler.List)
				r.Post("/", schoolHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", schoolHandler.Get)
					r.Put("/", schoolHandler.Update)
					r.Delete("/", schoolHandler.Delete)
					r.Patch("/boundary", schoolHandler.UpdateBoundary)
					r.With(middleware.RequirePermission(user.PermissionSchoolAlert)).Post("/sms-alert", schoolHandler.SendAlert)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/stats", reportHandler.GetStats)
				r.Get("/district", reportHandler.ExportDistrict)
			})
		})
	})
	return r
}
