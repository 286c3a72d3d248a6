package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

// customerPayload is the wire representation of a customer. The password
// hash never leaves the application layer.
type customerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImagemURL *string   `json:"imagemUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildCustomerPayload(customer application.Customer) customerPayload {
	payload := customerPayload{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
	}
	if customer.ImageURL != "" {
		imageURL := customer.ImageURL
		payload.ImagemURL = &imageURL
	}
	return payload
}

// AccountHandler serves customer registration, login and profile routes.
type AccountHandler struct {
	accounts  *application.AccountService
	uploads   uploader
	responder responder
}

// NewAccountHandler wires the account service into HTTP.
func NewAccountHandler(accounts *application.AccountService, uploadDir string, logger *zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		uploads:   uploader{dir: uploadDir},
		responder: newResponder(logger),
	}
}

// Register handles POST /auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	customer, err := h.accounts.Register(ctx, application.RegisterCustomerParams{
		Name:            body.Name,
		Email:           body.Email,
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, struct {
		Message string          `json:"message"`
		User    customerPayload `json:"user"`
	}{
		Message: "Usuário registrado com sucesso.",
		User:    buildCustomerPayload(customer),
	})
}

// Login handles POST /auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	result, err := h.accounts.Login(ctx, application.LoginParams{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Token string          `json:"token"`
		User  customerPayload `json:"user"`
	}{
		Token: result.Token,
		User:  buildCustomerPayload(result.Customer),
	})
}

// Profile handles GET /auth/profile.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
		return
	}

	customer, err := h.accounts.Profile(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		User customerPayload `json:"user"`
	}{User: buildCustomerPayload(customer)})
}

// UpdateProfile handles PUT /auth/profile. The request may be JSON or
// multipart form data carrying a new avatar.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
		return
	}

	params := application.UpdateProfileParams{Principal: principal}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		imageURL, err := h.uploads.saveAvatar(r, customerUploads)
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
	} else {
		var body struct {
			Name            string `json:"name"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			PasswordConfirm string `json:"passwordConfirm"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.badRequestBody(ctx, w)
			return
		}
		params.Name = body.Name
		params.Email = body.Email
		params.Password = body.Password
		params.PasswordConfirm = body.PasswordConfirm
	}

	result, err := h.accounts.UpdateProfile(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if result.ReplacedImage != "" {
		h.uploads.removeAvatar(result.ReplacedImage)
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Message string          `json:"message"`
		User    customerPayload `json:"user"`
	}{
		Message: "Perfil atualizado com sucesso.",
		User:    buildCustomerPayload(result.Customer),
	})
}
