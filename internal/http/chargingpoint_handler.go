package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

type chargingPointPayload struct {
	ID            string    `json:"id"`
	Nome          string    `json:"nome"`
	Endereco      string    `json:"endereco"`
	Cidade        string    `json:"cidade"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TipoConector  string    `json:"tipoConector"`
	Velocidade    string    `json:"velocidade"`
	Potencia      string    `json:"potencia"`
	Disponivel    bool      `json:"disponivel"`
	FuncionarioID *string   `json:"funcionarioId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func buildChargingPointPayload(point application.ChargingPoint) chargingPointPayload {
	payload := chargingPointPayload{
		ID:           point.ID,
		Nome:         point.Nome,
		Endereco:     point.Endereco,
		Cidade:       point.Cidade,
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		TipoConector: point.TipoConector,
		Velocidade:   point.Velocidade,
		Potencia:     point.Potencia,
		Disponivel:   point.Disponivel,
		CreatedAt:    point.CreatedAt,
		UpdatedAt:    point.UpdatedAt,
	}
	if point.FuncionarioID != "" {
		funcionarioID := point.FuncionarioID
		payload.FuncionarioID = &funcionarioID
	}
	return payload
}

type chargingPointBody struct {
	Nome         string   `json:"nome"`
	Endereco     string   `json:"endereco"`
	Cidade       string   `json:"cidade"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	TipoConector string   `json:"tipoConector"`
	Velocidade   string   `json:"velocidade"`
	Potencia     string   `json:"potencia"`
	Disponivel   *bool    `json:"disponivel"`
}

func (b chargingPointBody) toInput() application.ChargingPointInput {
	return application.ChargingPointInput{
		Nome:         b.Nome,
		Endereco:     b.Endereco,
		Cidade:       b.Cidade,
		Latitude:     b.Latitude,
		Longitude:    b.Longitude,
		TipoConector: b.TipoConector,
		Velocidade:   b.Velocidade,
		Potencia:     b.Potencia,
		Disponivel:   b.Disponivel,
	}
}

// ChargingPointHandler serves the public charger catalog and its
// employee-only write routes.
type ChargingPointHandler struct {
	points    *application.ChargingPointService
	responder responder
}

// NewChargingPointHandler wires the charging point service into HTTP.
func NewChargingPointHandler(points *application.ChargingPointService, logger *zerolog.Logger) *ChargingPointHandler {
	return &ChargingPointHandler{points: points, responder: newResponder(logger)}
}

// List handles GET /charging-points.
func (h *ChargingPointHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := h.points.List(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]chargingPointPayload, 0, len(points))
	for _, point := range points {
		payloads = append(payloads, buildChargingPointPayload(point))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Pontos []chargingPointPayload `json:"pontos"`
	}{Pontos: payloads})
}

// Get handles GET /charging-points/{id}.
func (h *ChargingPointHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	point, err := h.points.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Ponto chargingPointPayload `json:"ponto"`
	}{Ponto: buildChargingPointPayload(point)})
}

// Create handles POST /charging-points.
func (h *ChargingPointHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body chargingPointBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	point, err := h.points.Create(ctx, application.CreateChargingPointParams{
		Principal: principal,
		Input:     body.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, struct {
		Message string               `json:"message"`
		Ponto   chargingPointPayload `json:"ponto"`
	}{
		Message: "Ponto de recarga cadastrado com sucesso.",
		Ponto:   buildChargingPointPayload(point),
	})
}

// Update handles PUT /charging-points/{id}.
func (h *ChargingPointHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body chargingPointBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	point, err := h.points.Update(ctx, application.UpdateChargingPointParams{
		Principal: principal,
		PointID:   chi.URLParam(r, "id"),
		Input:     body.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Message string               `json:"message"`
		Ponto   chargingPointPayload `json:"ponto"`
	}{
		Message: "Ponto de recarga atualizado com sucesso.",
		Ponto:   buildChargingPointPayload(point),
	})
}

// Delete handles DELETE /charging-points/{id}.
func (h *ChargingPointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	if err := h.points.Delete(ctx, principal, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Ponto de recarga removido com sucesso."})
}
