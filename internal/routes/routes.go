package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/nurtura-health/nurtura-backend/internal/handlers"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)

	// Public directory routes
	r.Get("/api/psychologists", handlers.ListPsychologists)
	r.Get("/api/psychologists/{id}", handlers.GetPsychologistProfile)
	r.Get("/api/psychologists/{id}/reviews", handlers.GetReviews)
	r.Get("/api/clinics", handlers.ListClinics)
	r.Get("/api/clinics/slug/{slug}", handlers.GetClinicBySlug)

	// Public content routes
	r.Get("/api/activities", handlers.GetActivities)
	r.Get("/api/advice", handlers.GetAdvice)
	r.Get("/api/content", handlers.GetContentItems)

	// Public clinic application intake (rate limited per IP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicSubmissionRateLimit)
		r.Post("/api/clinic-applications", handlers.SubmitClinicApplication)
	})
	r.Get("/api/clinic-applications/document", handlers.ServeClinicApplicationDocument)

	// Clinic invite redemption (token is the credential)
	r.Post("/api/clinic-invites/accept", handlers.AcceptClinicInvite)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/auth/me", handlers.GetMe)
		r.Post("/api/auth/legal", handlers.AcceptLegal)

		// Child profiles and tracking
		r.Post("/api/children", handlers.CreateChild)
		r.Get("/api/children", handlers.GetChildren)
		r.Get("/api/children/{id}", handlers.GetChild)
		r.Put("/api/children/{id}", handlers.UpdateChild)
		r.Delete("/api/children/{id}", handlers.DeleteChild)
		r.Post("/api/children/{id}/progress", handlers.RecordProgress)
		r.Get("/api/children/{id}/progress", handlers.GetProgress)
		r.Post("/api/children/{id}/emotions", handlers.LogEmotion)
		r.Get("/api/children/{id}/emotions", handlers.GetEmotionLogs)

		// Moderation reports (any signed-in user)
		r.Post("/api/reports", handlers.CreateReport)

		// Therapist application (any signed-in user can apply)
		r.Put("/api/therapist/application", handlers.UpsertTherapistApplication)
		r.Get("/api/therapist/application", handlers.GetOwnTherapistApplication)
		r.Post("/api/therapist/application/submit", handlers.SubmitTherapistApplication)
	})

	// Parent routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(models.RoleParent))

		r.Post("/api/psychologists/{id}/reviews", handlers.CreateReview)
	})

	// Therapist routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(models.RoleTherapist))

		r.Post("/api/therapist/credentials", handlers.SubmitCredential)
		r.Get("/api/therapist/credentials", handlers.GetOwnCredentials)
		r.Get("/api/therapist/affiliations", handlers.GetOwnAffiliations)
	})

	// Clinic admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(models.RoleClinicAdmin, models.RoleAdmin))

		r.Put("/api/clinics/{id}", handlers.UpdateClinicProfile)
		r.Get("/api/clinics/{id}/therapists", handlers.GetClinicRoster)
		r.Post("/api/clinics/{id}/therapists", handlers.AddAffiliation)
		r.Delete("/api/clinics/{id}/therapists/{psychologistID}", handlers.RemoveAffiliation)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/api/admin/dashboard", handlers.GetAdminDashboard)
		r.Get("/api/admin/users", handlers.ListUsers)
		r.Put("/api/admin/users/{id}", handlers.UpdateUser)
		r.Get("/api/admin/audit-log", handlers.GetAuditLog)

		r.Get("/api/admin/therapist-applications", handlers.ListTherapistApplications)
		r.Get("/api/admin/therapist-applications/{id}", handlers.GetTherapistApplication)
		r.Put("/api/admin/therapist-applications/{id}/review", handlers.ReviewTherapistApplication)

		r.Get("/api/admin/clinic-applications", handlers.ListClinicApplications)
		r.Get("/api/admin/clinic-applications/{id}", handlers.GetClinicApplication)
		r.Get("/api/admin/clinic-applications/{id}/document-url", handlers.GetClinicApplicationDocumentURL)
		r.Put("/api/admin/clinic-applications/{id}/review", handlers.ReviewClinicApplication)

		r.Get("/api/admin/credentials/pending", handlers.ListPendingCredentials)
		r.Put("/api/admin/credentials/{id}/review", handlers.ReviewCredential)

		r.Get("/api/admin/reports", handlers.ListReports)
		r.Patch("/api/admin/reports/{id}", handlers.UpdateReport)

		r.Put("/api/admin/psychologists/{id}", handlers.UpdatePsychologist)

		// Content management
		r.Post("/api/admin/activities", handlers.CreateActivity)
		r.Put("/api/admin/activities/{id}", handlers.UpdateActivity)
		r.Post("/api/admin/advice", handlers.CreateAdvice)
		r.Post("/api/admin/content", handlers.CreateContentItem)
		r.Post("/api/admin/content/media", handlers.UploadContentMedia)
	})
}
