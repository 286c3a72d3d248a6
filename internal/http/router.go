// Package http exposes the service over a JSON REST API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

// RouterConfig carries the handlers and middleware wired into the router.
type RouterConfig struct {
	Accounts       *AccountHandler
	Employees      *EmployeeHandler
	ChargingPoints *ChargingPointHandler
	Installations  *InstallationHandler
	Recharges      *RechargeHandler
	Admin          *AdminHandler
	Auth           *Authenticator
	Logger         zerolog.Logger
	UploadDir      string
}

// NewRouter assembles the full route table.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.Accounts.Register)
		r.Post("/login", cfg.Accounts.Login)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireCustomer)
			r.Get("/profile", cfg.Accounts.Profile)
			r.Put("/profile", cfg.Accounts.UpdateProfile)
		})
	})

	r.Route("/employees", func(r chi.Router) {
		r.Post("/register", cfg.Employees.Register)
		r.Post("/login", cfg.Employees.Login)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireEmployee)
			r.Get("/profile", cfg.Employees.Profile)
			r.Put("/profile", cfg.Employees.UpdateProfile)
		})
	})

	r.Route("/charging-points", func(r chi.Router) {
		r.Get("/", cfg.ChargingPoints.List)
		r.Get("/{id}", cfg.ChargingPoints.Get)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireEmployee)
			r.Use(cfg.Auth.RequireCapability(application.CapManageChargingPoints))
			r.Post("/", cfg.ChargingPoints.Create)
			r.Put("/{id}", cfg.ChargingPoints.Update)
			r.Delete("/{id}", cfg.ChargingPoints.Delete)
		})
	})

	r.Route("/installations", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireCustomer)
			r.Post("/", cfg.Installations.Create)
		})
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireEmployee)
			r.Get("/", cfg.Installations.List)
			r.Get("/employees/position/{position}", cfg.Installations.EmployeesByPosition)
			r.With(cfg.Auth.RequireCapability(application.CapViewBalance)).
				Get("/admin/balance", cfg.Installations.Balance)
			r.Get("/{id}", cfg.Installations.Get)
			r.With(cfg.Auth.RequireCapability(application.CapAssignProfessionals)).
				Post("/{id}/professionals", cfg.Installations.AssignProfessionals)
			r.With(cfg.Auth.RequireCapability(application.CapCompleteInstallation)).
				Post("/{id}/complete", cfg.Installations.Complete)
		})
	})

	r.Route("/recharges", func(r chi.Router) {
		r.Use(cfg.Auth.RequireCustomer)
		r.Post("/", cfg.Recharges.Create)
		r.Get("/", cfg.Recharges.List)
		r.Delete("/{id}", cfg.Recharges.Delete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(cfg.Auth.RequireEmployee)
		r.Use(cfg.Auth.RequireCapability(application.CapManageAccounts))
		r.Get("/employees", cfg.Admin.ListEmployees)
		r.Delete("/employees/{id}", cfg.Admin.DeleteEmployee)
		r.Get("/users", cfg.Admin.ListCustomers)
		r.Delete("/users/{id}", cfg.Admin.DeleteCustomer)
	})

	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	return r
}
