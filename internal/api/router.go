package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/referral-service/internal/api/handlers"
	"github.com/Cheertaboi/referral-service/internal/api/middleware"
	"github.com/Cheertaboi/referral-service/internal/logging"
)

type Services struct {
	Customers handlers.CustomerService
	Referrals handlers.ReferralService
	Settings  handlers.SettingsService
}

// NewRouter builds the HTTP router for the referral-service
func NewRouter(svc Services, adminSecret string, log logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)

	customerHandler := handlers.NewCustomerHandler(svc.Customers, log)
	referralHandler := handlers.NewReferralHandler(svc.Referrals, log)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings, log)

	// Public referral endpoints
	r.Post("/referrals/validate", referralHandler.Validate)

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(adminSecret))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.List)
			r.Post("/", customerHandler.Create)
			r.Get("/{id}", customerHandler.Get)
			r.Put("/{id}", customerHandler.Update)
			r.Delete("/{id}", customerHandler.Delete)
			r.Get("/{id}/referrals", customerHandler.Referrals)
		})
		r.Get("/referral-transactions", referralHandler.ListTransactions)
		r.Post("/referrals/send-email", referralHandler.SendEmail)
		r.Get("/settings/discounts", settingsHandler.GetDiscounts)
		r.Put("/settings/discounts", settingsHandler.SetDiscounts)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
