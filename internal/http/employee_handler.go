package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

type employeePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	ImagemURL *string   `json:"imagemUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildEmployeePayload(employee application.Employee) employeePayload {
	payload := employeePayload{
		ID:        employee.ID,
		Name:      employee.Name,
		CPF:       employee.CPF,
		Email:     employee.Email,
		Position:  string(employee.Position),
		CreatedAt: employee.CreatedAt,
	}
	if employee.ImageURL != "" {
		imageURL := employee.ImageURL
		payload.ImagemURL = &imageURL
	}
	return payload
}

// EmployeeHandler serves employee registration, login, profile and the
// position directory.
type EmployeeHandler struct {
	employees *application.EmployeeService
	uploads   uploader
	responder responder
}

// NewEmployeeHandler wires the employee service into HTTP.
func NewEmployeeHandler(employees *application.EmployeeService, uploadDir string, logger *zerolog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		uploads:   uploader{dir: uploadDir},
		responder: newResponder(logger),
	}
}

// Register handles POST /employees/register.
func (h *EmployeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name            string `json:"name"`
		CPF             string `json:"cpf"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
		Position        string `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	employee, err := h.employees.Register(ctx, application.RegisterEmployeeParams{
		Name:            body.Name,
		CPF:             body.CPF,
		Email:           body.Email,
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
		Position:        body.Position,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, struct {
		Message  string          `json:"message"`
		Employee employeePayload `json:"employee"`
	}{
		Message:  "Funcionário registrado com sucesso.",
		Employee: buildEmployeePayload(employee),
	})
}

// Login handles POST /employees/login with CPF-based credentials.
func (h *EmployeeHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		CPF      string `json:"cpf"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	result, err := h.employees.Login(ctx, application.EmployeeLoginParams{
		CPF:      body.CPF,
		Password: body.Password,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Token    string          `json:"token"`
		Employee employeePayload `json:"employee"`
	}{
		Token:    result.Token,
		Employee: buildEmployeePayload(result.Employee),
	})
}

// Profile handles GET /employees/profile.
func (h *EmployeeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
		return
	}

	employee, err := h.employees.Profile(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Employee employeePayload `json:"employee"`
	}{Employee: buildEmployeePayload(employee)})
}

// UpdateProfile handles PUT /employees/profile.
func (h *EmployeeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
		return
	}

	params := application.UpdateEmployeeProfileParams{Principal: principal}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		imageURL, err := h.uploads.saveAvatar(r, employeeUploads)
		if err != nil {
			h.responder.writeMessage(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		if imageURL != "" {
			params.ImageURL = &imageURL
		}
		params.Name = r.FormValue("name")
		params.Email = r.FormValue("email")
		params.Password = r.FormValue("password")
		params.PasswordConfirm = r.FormValue("passwordConfirm")
		params.Position = r.FormValue("position")
	} else {
		var body struct {
			Name            string `json:"name"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			PasswordConfirm string `json:"passwordConfirm"`
			Position        string `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.badRequestBody(ctx, w)
			return
		}
		params.Name = body.Name
		params.Email = body.Email
		params.Password = body.Password
		params.PasswordConfirm = body.PasswordConfirm
		params.Position = body.Position
	}

	result, err := h.employees.UpdateProfile(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if result.ReplacedImage != "" {
		h.uploads.removeAvatar(result.ReplacedImage)
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Message  string          `json:"message"`
		Employee employeePayload `json:"employee"`
	}{
		Message:  "Perfil atualizado com sucesso.",
		Employee: buildEmployeePayload(result.Employee),
	})
}
