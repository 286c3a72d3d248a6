package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

type professionalPayload struct {
	ID            string    `json:"id"`
	SolicitacaoID string    `json:"solicitacaoId"`
	FuncionarioID string    `json:"funcionarioId"`
	Cargo         string    `json:"cargo"`
	CreatedAt     time.Time `json:"createdAt"`
}

type installationPayload struct {
	ID              string                `json:"id"`
	UsuarioID       string                `json:"usuarioId"`
	TipoInstalacao  string                `json:"tipoInstalacao"`
	Endereco        string                `json:"endereco"`
	Cidade          string                `json:"cidade"`
	Estado          string                `json:"estado,omitempty"`
	CEP             string                `json:"cep,omitempty"`
	DistanciaQuadro *float64              `json:"distanciaQuadro"`
	TipoResidencia  string                `json:"tipoResidencia,omitempty"`
	TipoCarregador  string                `json:"tipoCarregador,omitempty"`
	PrecoTotal      float64               `json:"precoTotal"`
	CustoTotal      float64               `json:"custoTotal"`
	Status          string                `json:"status"`
	ResponsavelID   *string               `json:"responsavelId"`
	Latitude        *float64              `json:"latitude"`
	Longitude       *float64              `json:"longitude"`
	Observacoes     string                `json:"observacoes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Professionals   []professionalPayload `json:"professionals,omitempty"`
}

func buildProfessionalPayload(member application.InstallationProfessional) professionalPayload {
	return professionalPayload{
		ID:            member.ID,
		SolicitacaoID: member.SolicitacaoID,
		FuncionarioID: member.FuncionarioID,
		Cargo:         string(member.Cargo),
		CreatedAt:     member.CreatedAt,
	}
}

func buildInstallationPayload(request application.InstallationRequest) installationPayload {
	payload := installationPayload{
		ID:              request.ID,
		UsuarioID:       request.UsuarioID,
		TipoInstalacao:  request.TipoInstalacao,
		Endereco:        request.Endereco,
		Cidade:          request.Cidade,
		Estado:          request.Estado,
		CEP:             request.CEP,
		DistanciaQuadro: request.DistanciaQuadro,
		TipoResidencia:  request.TipoResidencia,
		TipoCarregador:  request.TipoCarregador,
		PrecoTotal:      request.PrecoTotal,
		CustoTotal:      request.CustoTotal,
		Status:          string(request.Status),
		Latitude:        request.Latitude,
		Longitude:       request.Longitude,
		Observacoes:     request.Observacoes,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
	if request.ResponsavelID != "" {
		responsavelID := request.ResponsavelID
		payload.ResponsavelID = &responsavelID
	}
	for _, member := range request.Professionals {
		payload.Professionals = append(payload.Professionals, buildProfessionalPayload(member))
	}
	return payload
}

// InstallationHandler serves the installation workflow routes.
type InstallationHandler struct {
	installations *application.InstallationService
	employees     *application.EmployeeService
	responder     responder
}

// NewInstallationHandler wires the installation workflow into HTTP.
func NewInstallationHandler(installations *application.InstallationService, employees *application.EmployeeService, logger *zerolog.Logger) *InstallationHandler {
	return &InstallationHandler{
		installations: installations,
		employees:     employees,
		responder:     newResponder(logger),
	}
}

// Create handles POST /installations.
func (h *InstallationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body struct {
		TipoInstalacao  string   `json:"tipoInstalacao"`
		Endereco        string   `json:"endereco"`
		Cidade          string   `json:"cidade"`
		Estado          string   `json:"estado"`
		CEP             string   `json:"cep"`
		DistanciaQuadro *float64 `json:"distanciaQuadro"`
		TipoResidencia  string   `json:"tipoResidencia"`
		TipoCarregador  string   `json:"tipoCarregador"`
		PrecoTotal      float64  `json:"precoTotal"`
		Latitude        *float64 `json:"latitude"`
		Longitude       *float64 `json:"longitude"`
		Observacoes     string   `json:"observacoes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	request, err := h.installations.CreateRequest(ctx, application.CreateInstallationParams{
		Principal:       principal,
		TipoInstalacao:  body.TipoInstalacao,
		Endereco:        body.Endereco,
		Cidade:          body.Cidade,
		Estado:          body.Estado,
		CEP:             body.CEP,
		DistanciaQuadro: body.DistanciaQuadro,
		TipoResidencia:  body.TipoResidencia,
		TipoCarregador:  body.TipoCarregador,
		PrecoTotal:      body.PrecoTotal,
		Latitude:        body.Latitude,
		Longitude:       body.Longitude,
		Observacoes:     body.Observacoes,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, struct {
		Message string              `json:"message"`
		Request installationPayload `json:"request"`
	}{
		Message: "Solicitação de instalação criada com sucesso.",
		Request: buildInstallationPayload(request),
	})
}

// List handles GET /installations.
func (h *InstallationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	requests, err := h.installations.ListRequests(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]installationPayload, 0, len(requests))
	for _, request := range requests {
		payloads = append(payloads, buildInstallationPayload(request))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Requests []installationPayload `json:"requests"`
	}{Requests: payloads})
}

// Get handles GET /installations/{id}.
func (h *InstallationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	request, err := h.installations.GetRequest(ctx, principal, chi.URLParam(r, "id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Request installationPayload `json:"request"`
	}{Request: buildInstallationPayload(request)})
}

// AssignProfessionals handles POST /installations/{id}/professionals.
func (h *InstallationHandler) AssignProfessionals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body struct {
		Profissionais []struct {
			FuncionarioID string `json:"funcionarioId"`
			Cargo         string `json:"cargo"`
		} `json:"profissionais"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	assignments := make([]application.ProfessionalAssignment, 0, len(body.Profissionais))
	for _, member := range body.Profissionais {
		assignments = append(assignments, application.ProfessionalAssignment{
			FuncionarioID: member.FuncionarioID,
			Cargo:         member.Cargo,
		})
	}

	assigned, err := h.installations.AssignProfessionals(ctx, application.AssignProfessionalsParams{
		Principal:     principal,
		RequestID:     chi.URLParam(r, "id"),
		Profissionais: assignments,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]professionalPayload, 0, len(assigned))
	for _, member := range assigned {
		payloads = append(payloads, buildProfessionalPayload(member))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Message       string                `json:"message"`
		Professionals []professionalPayload `json:"professionals"`
	}{
		Message:       "Profissionais atribuídos com sucesso.",
		Professionals: payloads,
	})
}

// Complete handles POST /installations/{id}/complete.
func (h *InstallationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body struct {
		Nome         string   `json:"nome"`
		TipoConector string   `json:"tipoConector"`
		Velocidade   string   `json:"velocidade"`
		Potencia     string   `json:"potencia"`
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
		Disponivel   *bool    `json:"disponivel"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.responder.badRequestBody(ctx, w)
			return
		}
	}

	point, err := h.installations.Complete(ctx, application.CompleteInstallationParams{
		Principal:    principal,
		RequestID:    chi.URLParam(r, "id"),
		Nome:         body.Nome,
		TipoConector: body.TipoConector,
		Velocidade:   body.Velocidade,
		Potencia:     body.Potencia,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		Disponivel:   body.Disponivel,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Message string               `json:"message"`
		Ponto   chargingPointPayload `json:"ponto"`
	}{
		Message: "Instalação concluída e ponto de recarga criado com sucesso.",
		Ponto:   buildChargingPointPayload(point),
	})
}

// EmployeesByPosition handles GET /installations/employees/position/{position}.
func (h *InstallationHandler) EmployeesByPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	employees, err := h.employees.ListByPosition(ctx, principal, chi.URLParam(r, "position"))
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

// Balance handles GET /installations/admin/balance.
func (h *InstallationHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	balance, err := h.installations.Balance(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	solicitacoes := make([]installationPayload, 0, len(balance.Solicitacoes))
	for _, request := range balance.Solicitacoes {
		solicitacoes = append(solicitacoes, buildInstallationPayload(request))
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, balancePayload{
		TotalReceitas: balance.TotalReceitas,
		TotalCustos:   balance.TotalCustos,
		Lucro:         balance.Lucro,
		Estatisticas: statusCountsPayload{
			Pendentes:   balance.Estatisticas.Pendentes,
			EmAndamento: balance.Estatisticas.EmAndamento,
			Concluidas:  balance.Estatisticas.Concluidas,
			Total:       balance.Estatisticas.Total,
		},
		Solicitacoes: solicitacoes,
	})
}

type statusCountsPayload struct {
	Pendentes   int `json:"pendentes"`
	EmAndamento int `json:"emAndamento"`
	Concluidas  int `json:"concluidas"`
	Total       int `json:"total"`
}

type balancePayload struct {
	TotalReceitas float64               `json:"totalReceitas"`
	TotalCustos   float64               `json:"totalCustos"`
	Lucro         float64               `json:"lucro"`
	Estatisticas  statusCountsPayload   `json:"estatisticas"`
	Solicitacoes  []installationPayload `json:"solicitacoes"`
}
