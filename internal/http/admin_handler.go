package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

// AdminHandler serves the CEO-only account administration routes.
type AdminHandler struct {
	accounts  *application.AccountService
	employees *application.EmployeeService
	responder responder
}

// NewAdminHandler wires the back-office routes.
func NewAdminHandler(accounts *application.AccountService, employees *application.EmployeeService, logger *zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		accounts:  accounts,
		employees: employees,
		responder: newResponder(logger),
	}
}

// ListEmployees handles GET /admin/employees.
func (h *AdminHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	employees, err := h.employees.ListEmployees(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]employeePayload, 0, len(employees))
	for _, employee := range employees {
		payloads = append(payloads, buildEmployeePayload(employee))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Employees []employeePayload `json:"employees"`
	}{Employees: payloads})
}

// DeleteEmployee handles DELETE /admin/employees/{id}.
func (h *AdminHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	if err := h.employees.DeleteEmployee(ctx, principal, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Funcionário removido com sucesso."})
}

// ListCustomers handles GET /admin/users.
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	customers, err := h.accounts.ListCustomers(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		payloads = append(payloads, buildCustomerPayload(customer))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Users []customerPayload `json:"users"`
	}{Users: payloads})
}

// DeleteCustomer handles DELETE /admin/users/{id}.
func (h *AdminHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	if err := h.accounts.DeleteCustomer(ctx, principal, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Usuário removido com sucesso."})
}
