package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
)

type rechargePayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Local     string    `json:"local"`
	Endereco  string    `json:"endereco"`
	DataHora  time.Time `json:"dataHora"`
	Duracao   int       `json:"duracao"`
	Energia   float64   `json:"energia"`
	Custo     float64   `json:"custo"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildRechargePayload(recharge application.Recharge) rechargePayload {
	return rechargePayload{
		ID:        recharge.ID,
		UserID:    recharge.UserID,
		Local:     recharge.Local,
		Endereco:  recharge.Endereco,
		DataHora:  recharge.DataHora,
		Duracao:   recharge.Duracao,
		Energia:   recharge.Energia,
		Custo:     recharge.Custo,
		CreatedAt: recharge.CreatedAt,
	}
}

// RechargeHandler serves the customer recharge history routes.
type RechargeHandler struct {
	recharges *application.RechargeService
	responder responder
}

// NewRechargeHandler wires the recharge service into HTTP.
func NewRechargeHandler(recharges *application.RechargeService, logger *zerolog.Logger) *RechargeHandler {
	return &RechargeHandler{recharges: recharges, responder: newResponder(logger)}
}

// Create handles POST /recharges.
func (h *RechargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	var body struct {
		Local    string    `json:"local"`
		Endereco string    `json:"endereco"`
		DataHora time.Time `json:"dataHora"`
		Duracao  int       `json:"duracao"`
		Energia  float64   `json:"energia"`
		Custo    float64   `json:"custo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.badRequestBody(ctx, w)
		return
	}

	recharge, err := h.recharges.Create(ctx, application.CreateRechargeParams{
		Principal: principal,
		Local:     body.Local,
		Endereco:  body.Endereco,
		DataHora:  body.DataHora,
		Duracao:   body.Duracao,
		Energia:   body.Energia,
		Custo:     body.Custo,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, struct {
		Message  string          `json:"message"`
		Recharge rechargePayload `json:"recharge"`
	}{
		Message:  "Recarga registrada com sucesso.",
		Recharge: buildRechargePayload(recharge),
	})
}

// List handles GET /recharges with limit, offset and startDate filters.
func (h *RechargeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	params := application.ListRechargesParams{Principal: principal}
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			params.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			params.Offset = offset
		}
	}
	if raw := query.Get("startDate"); raw != "" {
		startDate, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			startDate, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			h.responder.writeMessage(ctx, w, http.StatusBadRequest, "Data inicial inválida.")
			return
		}
		params.StartDate = &startDate
	}

	page, err := h.recharges.List(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payloads := make([]rechargePayload, 0, len(page.Recharges))
	for _, recharge := range page.Recharges {
		payloads = append(payloads, buildRechargePayload(recharge))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, struct {
		Recharges []rechargePayload `json:"recharges"`
		Total     int               `json:"total"`
		Limit     int               `json:"limit"`
		Offset    int               `json:"offset"`
	}{
		Recharges: payloads,
		Total:     page.Total,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
}

// Delete handles DELETE /recharges/{id}.
func (h *RechargeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, _ := PrincipalFromContext(ctx)
	if err := h.recharges.Delete(ctx, principal, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Recarga excluída com sucesso."})
}
