package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/persistence"
)

// defaultRechargeLimit bounds history pages when the caller does not ask for
// a specific size.
const defaultRechargeLimit = 50

// RechargeRepository captures the persistence operations needed by the
// recharge service. All lookups are scoped to the owning customer.
type RechargeRepository interface {
	CreateRecharge(ctx context.Context, recharge Recharge) (Recharge, error)
	GetRecharge(ctx context.Context, id, userID string) (Recharge, error)
	ListRecharges(ctx context.Context, userID string, limit, offset int, startDate *time.Time) ([]Recharge, error)
	CountRecharges(ctx context.Context, userID string, startDate *time.Time) (int, error)
	DeleteRecharge(ctx context.Context, id, userID string) error
}

// RechargeService records and serves a customer's charging history.
type RechargeService struct {
	recharges   RechargeRepository
	idGenerator func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewRechargeService wires dependencies for the recharge service.
func NewRechargeService(recharges RechargeRepository, idGenerator func() string, now func() time.Time, logger *zerolog.Logger) *RechargeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RechargeService{
		recharges:   recharges,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RechargeService) log(ctx context.Context, operation string) *zerolog.Logger {
	return serviceLogger(ctx, s.logger, "RechargeService", operation)
}

// CreateRechargeParams captures one charging session reported by a customer.
type CreateRechargeParams struct {
	Principal Principal
	Local     string
	Endereco  string
	DataHora  time.Time
	Duracao   int
	Energia   float64
	Custo     float64
}

// Create records a charging session for the acting customer.
func (s *RechargeService) Create(ctx context.Context, params CreateRechargeParams) (Recharge, error) {
	if s == nil || s.recharges == nil {
		return Recharge{}, fmt.Errorf("recharge service not configured")
	}
	if params.Principal.Kind != KindCustomer {
		return Recharge{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if sanitizeText(params.Local) == "" {
		vErr.add("local", "Informe o local da recarga.")
	}
	if sanitizeText(params.Endereco) == "" {
		vErr.add("endereco", "Informe o endereço da recarga.")
	}
	if params.DataHora.IsZero() {
		vErr.add("dataHora", "Informe a data e hora da recarga.")
	}
	if vErr.HasErrors() {
		return Recharge{}, vErr
	}

	recharge := Recharge{
		ID:        s.idGenerator(),
		UserID:    params.Principal.ID,
		Local:     sanitizeText(params.Local),
		Endereco:  sanitizeText(params.Endereco),
		DataHora:  params.DataHora,
		Duracao:   params.Duracao,
		Energia:   params.Energia,
		Custo:     params.Custo,
		CreatedAt: s.now(),
	}

	created, err := s.recharges.CreateRecharge(ctx, recharge)
	if err != nil {
		return Recharge{}, err
	}

	s.log(ctx, "Create").Info().
		Str("recharge_id", created.ID).
		Str("user_id", created.UserID).
		Msg("recharge recorded")
	return created, nil
}

// ListRechargesParams selects a page of the acting customer's history.
type ListRechargesParams struct {
	Principal Principal
	Limit     int
	Offset    int
	StartDate *time.Time
}

// RechargeList is one page of a customer's history together with the total
// number of matching sessions.
type RechargeList struct {
	Recharges []Recharge
	Total     int
	Limit     int
	Offset    int
}

// List returns a page of the acting customer's charging history, most
// recently recorded sessions first. The start date filter applies to the
// session time, not the recording time.
func (s *RechargeService) List(ctx context.Context, params ListRechargesParams) (RechargeList, error) {
	if s == nil || s.recharges == nil {
		return RechargeList{}, fmt.Errorf("recharge service not configured")
	}
	if params.Principal.Kind != KindCustomer {
		return RechargeList{}, ErrUnauthorized
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultRechargeLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	recharges, err := s.recharges.ListRecharges(ctx, params.Principal.ID, limit, offset, params.StartDate)
	if err != nil {
		return RechargeList{}, err
	}
	total, err := s.recharges.CountRecharges(ctx, params.Principal.ID, params.StartDate)
	if err != nil {
		return RechargeList{}, err
	}

	return RechargeList{
		Recharges: recharges,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// Delete removes one of the acting customer's recharges. Sessions owned by
// other customers are indistinguishable from missing ones.
func (s *RechargeService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.recharges == nil {
		return fmt.Errorf("recharge service not configured")
	}
	if principal.Kind != KindCustomer {
		return ErrUnauthorized
	}

	if _, err := s.recharges.GetRecharge(ctx, id, principal.ID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.recharges.DeleteRecharge(ctx, id, principal.ID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log(ctx, "Delete").Info().
		Str("recharge_id", id).
		Str("user_id", principal.ID).
		Msg("recharge deleted")
	return nil
}
